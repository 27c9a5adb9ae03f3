package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/repository"
)

// PromoService manages promo codes and validates them for redemption.
type PromoService struct {
	store  repository.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewPromoService creates a PromoService.
func NewPromoService(store repository.Store, logger *slog.Logger) *PromoService {
	return &PromoService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Validate returns the promo code if the given client may redeem it now,
// or ErrPromoInvalid. Codes are case-insensitive.
func (s *PromoService) Validate(ctx context.Context, code string, clientID *int64) (*domain.PromoCode, error) {
	const op = "promo.validate"

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrPromoInvalid
	}

	promo, err := s.store.GetActivePromoByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPromoInvalid
		}
		return nil, domain.Internal(err, op, "failed to load promo code")
	}
	if !promo.IsValidFor(clientID, s.now()) {
		return nil, ErrPromoInvalid
	}
	return promo, nil
}

// Create registers a new promo code. Personal codes must name a client.
func (s *PromoService) Create(ctx context.Context, arg repository.CreatePromoParams) (*domain.PromoCode, error) {
	const op = "promo.create"

	arg.Code = strings.ToUpper(strings.TrimSpace(arg.Code))
	if arg.Code == "" {
		return nil, domain.Invalid(op, "code is required")
	}
	switch arg.Type {
	case domain.PromoPercent:
		if arg.DiscountValue <= 0 || arg.DiscountValue > 100 {
			return nil, domain.Invalid(op, "percent discount must be between 1 and 100")
		}
	case domain.PromoFixed:
		if arg.DiscountValue <= 0 {
			return nil, domain.Invalid(op, "fixed discount must be greater than 0")
		}
	case domain.PromoFreeShipping:
		arg.DiscountValue = 0
	default:
		return nil, domain.Invalid(op, "unknown promo type")
	}
	switch arg.UsageType {
	case domain.PromoPersonal:
		if arg.ClientID == nil {
			return nil, domain.Invalid(op, "personal codes must name a client")
		}
	case domain.PromoShareable:
		arg.ClientID = nil
	default:
		return nil, domain.Invalid(op, "unknown usage type")
	}

	promo, err := s.store.CreatePromo(ctx, arg)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create promo code")
	}
	return promo, nil
}

// Deactivate retires a promo code. Orders that already redeemed it keep
// their discount.
func (s *PromoService) Deactivate(ctx context.Context, id int64) error {
	if err := s.store.SetPromoActive(ctx, id, false); err != nil {
		return domain.Internal(err, "promo.deactivate", "failed to deactivate promo code")
	}
	return nil
}

// List returns all promo codes, newest first (admin view).
func (s *PromoService) List(ctx context.Context) ([]domain.PromoCode, error) {
	promos, err := s.store.ListPromos(ctx)
	if err != nil {
		return nil, domain.Internal(err, "promo.list", "failed to list promo codes")
	}
	return promos, nil
}
