package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/repository"
)

// CatalogService is the storefront read surface over products.
type CatalogService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(store repository.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

// ListProducts returns all active products with their variants.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.store.ListActiveProducts(ctx)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list_products", "failed to list products")
	}
	return products, nil
}

// GetProduct returns one product with its variants.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, domain.Internal(err, "catalog.get_product", "failed to load product")
	}
	return product, nil
}
