package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/repository"
	"github.com/bensaadi/parapharma/internal/telemetry"
)

// CartService manages hybrid session/account carts. Cart prices are
// advisory snapshots; checkout reprices every line from the live catalog.
type CartService struct {
	store   repository.Store
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
	locale  string
}

// NewCartService creates a CartService. metrics may be nil.
func NewCartService(store repository.Store, metrics *telemetry.BusinessMetrics, logger *slog.Logger, defaultLocale string) *CartService {
	return &CartService{
		store:   store,
		metrics: metrics,
		logger:  logger,
		locale:  defaultLocale,
	}
}

// GetOrCreateCart returns the cart for the given identity, creating it on
// first use. Exactly one of clientID and sessionID must be set.
func (s *CartService) GetOrCreateCart(ctx context.Context, clientID *int64, sessionID *string) (*domain.Cart, error) {
	const op = "cart.get_or_create"

	switch {
	case clientID != nil && sessionID != nil:
		return nil, domain.Invalid(op, "cart cannot be keyed by both client and session")
	case clientID != nil:
		cart, err := s.store.GetCartByClient(ctx, *clientID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Internal(err, op, "failed to load cart")
		}
	case sessionID != nil:
		cart, err := s.store.GetCartBySession(ctx, *sessionID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Internal(err, op, "failed to load cart")
		}
	default:
		return nil, domain.Invalid(op, "either client or session is required")
	}

	cart, err := s.store.CreateCart(ctx, clientID, sessionID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create cart")
	}
	return cart, nil
}

// GetSummary returns a cart with its items and advisory totals.
func (s *CartService) GetSummary(ctx context.Context, cartID int64) (*domain.CartSummary, error) {
	const op = "cart.get_summary"

	items, err := s.store.GetCartItems(ctx, cartID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load cart items")
	}

	summary := &domain.CartSummary{Items: items}
	summary.Cart.ID = cartID
	for _, item := range items {
		summary.Subtotal += int64(item.Quantity) * item.PriceSnapshot
		summary.ItemCount += int(item.Quantity)
	}
	return summary, nil
}

// AddItem adds a product (or variant) to the cart, merging into an
// existing line and refreshing its price snapshot. Fails when the product
// is unavailable or the cart already holds all remaining stock.
func (s *CartService) AddItem(ctx context.Context, cartID int64, productID int64, variantID *int64, quantity int32) (*domain.CartSummary, error) {
	const op = "cart.add_item"

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		product, err := q.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProductNotFound
			}
			return domain.Internal(err, op, "failed to load product")
		}
		if !product.IsAvailable() {
			return errProductUnavailable(op, product.Name.Resolve(s.locale, s.locale))
		}

		stock, price, err := liveStockAndPrice(product, variantID, op)
		if err != nil {
			return err
		}

		existing, err := q.GetCartItem(ctx, repository.GetCartItemParams{
			CartID:    cartID,
			ProductID: productID,
			VariantID: variantID,
		})
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return domain.Internal(err, op, "failed to load cart item")
		}

		requested := quantity
		if existing != nil {
			requested += existing.Quantity
		}
		if requested > stock {
			return errInsufficientStock(op, product.Name.Resolve(s.locale, s.locale))
		}

		if existing != nil {
			return q.UpdateCartItem(ctx, repository.UpdateCartItemParams{
				ID:            existing.ID,
				Quantity:      requested,
				PriceSnapshot: price,
			})
		}
		_, err = q.AddCartItem(ctx, repository.AddCartItemParams{
			CartID:        cartID,
			ProductID:     productID,
			VariantID:     variantID,
			Quantity:      quantity,
			PriceSnapshot: price,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CartItemsAdded.Inc()
	}
	return s.GetSummary(ctx, cartID)
}

// UpdateQuantity rewrites a line's quantity with the same stock bound as
// AddItem, refreshing the price snapshot. Quantity 0 removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID int64, productID int64, variantID *int64, quantity int32) (*domain.CartSummary, error) {
	const op = "cart.update_quantity"

	if quantity == 0 {
		return s.RemoveItem(ctx, cartID, productID, variantID)
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		item, err := q.GetCartItem(ctx, repository.GetCartItemParams{
			CartID:    cartID,
			ProductID: productID,
			VariantID: variantID,
		})
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCartNotFound
			}
			return domain.Internal(err, op, "failed to load cart item")
		}

		product, err := q.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProductNotFound
			}
			return domain.Internal(err, op, "failed to load product")
		}

		stock, price, err := liveStockAndPrice(product, variantID, op)
		if err != nil {
			return err
		}
		if quantity > stock {
			return errInsufficientStock(op, product.Name.Resolve(s.locale, s.locale))
		}

		return q.UpdateCartItem(ctx, repository.UpdateCartItemParams{
			ID:            item.ID,
			Quantity:      quantity,
			PriceSnapshot: price,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.GetSummary(ctx, cartID)
}

// RemoveItem deletes one line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, cartID int64, productID int64, variantID *int64) (*domain.CartSummary, error) {
	const op = "cart.remove_item"

	item, err := s.store.GetCartItem(ctx, repository.GetCartItemParams{
		CartID:    cartID,
		ProductID: productID,
		VariantID: variantID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.GetSummary(ctx, cartID)
		}
		return nil, domain.Internal(err, op, "failed to load cart item")
	}

	if err := s.store.DeleteCartItem(ctx, item.ID); err != nil {
		return nil, domain.Internal(err, op, "failed to delete cart item")
	}
	return s.GetSummary(ctx, cartID)
}

// Clear removes every line from the cart.
func (s *CartService) Clear(ctx context.Context, cartID int64) error {
	if err := s.store.ClearCart(ctx, cartID); err != nil {
		return domain.Internal(err, "cart.clear", "failed to clear cart")
	}
	return nil
}

// MigrateGuestCart merges a guest session cart into the client's cart on
// login. Same-product lines sum quantities; the guest cart is deleted
// afterwards. Calling it again is a no-op, so a double login is harmless.
func (s *CartService) MigrateGuestCart(ctx context.Context, sessionID string, clientID int64) error {
	const op = "cart.migrate_guest"

	return s.store.ExecTx(ctx, func(q repository.Querier) error {
		guest, err := q.GetCartBySession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil // already migrated or never existed
			}
			return domain.Internal(err, op, "failed to load guest cart")
		}

		target, err := q.GetCartByClient(ctx, clientID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return domain.Internal(err, op, "failed to load client cart")
			}
			target, err = q.CreateCart(ctx, &clientID, nil)
			if err != nil {
				return domain.Internal(err, op, "failed to create client cart")
			}
		}

		items, err := q.GetCartItems(ctx, guest.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to load guest cart items")
		}

		for _, item := range items {
			existing, err := q.GetCartItem(ctx, repository.GetCartItemParams{
				CartID:    target.ID,
				ProductID: item.ProductID,
				VariantID: item.VariantID,
			})
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return domain.Internal(err, op, "failed to load client cart item")
			}

			if existing != nil {
				err = q.UpdateCartItem(ctx, repository.UpdateCartItemParams{
					ID:            existing.ID,
					Quantity:      existing.Quantity + item.Quantity,
					PriceSnapshot: item.PriceSnapshot,
				})
			} else {
				_, err = q.AddCartItem(ctx, repository.AddCartItemParams{
					CartID:        target.ID,
					ProductID:     item.ProductID,
					VariantID:     item.VariantID,
					Quantity:      item.Quantity,
					PriceSnapshot: item.PriceSnapshot,
				})
			}
			if err != nil {
				return domain.Internal(err, op, "failed to merge cart item")
			}
		}

		if err := q.ClearCart(ctx, guest.ID); err != nil {
			return domain.Internal(err, op, "failed to clear guest cart")
		}
		if err := q.DeleteCart(ctx, guest.ID); err != nil {
			return domain.Internal(err, op, "failed to delete guest cart")
		}
		return nil
	})
}

// liveStockAndPrice resolves the purchasable stock bound and the current
// advisory price for a product or one of its variants.
func liveStockAndPrice(product *domain.Product, variantID *int64, op string) (int32, int64, error) {
	if variantID == nil {
		if product.HasVariants() {
			return product.AvailableStock(), product.EffectivePrice(), nil
		}
		return product.Stock, product.Price, nil
	}

	variant := product.Variant(*variantID)
	if variant == nil || variant.ProductID != product.ID {
		return 0, 0, ErrVariantNotFound
	}
	if !variant.IsActive {
		return 0, 0, domain.Conflict(op, "Product variant is not active")
	}
	return variant.Stock, variant.Price, nil
}
