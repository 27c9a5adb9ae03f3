package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/repository"
)

// InventoryService performs the stock movements of checkout and
// cancellation. Every decrement is a guarded conditional update, so two
// concurrent orders can never drive stock negative regardless of what
// either of them read beforehand.
type InventoryService struct {
	logger *slog.Logger
	locale string
}

// NewInventoryService creates an InventoryService.
func NewInventoryService(logger *slog.Logger, defaultLocale string) *InventoryService {
	return &InventoryService{logger: logger, locale: defaultLocale}
}

// DecrementTx takes quantity units of stock for one order line inside the
// caller's transaction and returns the per-variant debit breakdown to be
// frozen into the line's snapshot.
//
// Three shapes exist: an explicit variant, a simple product, and a product
// whose stock lives across variants. The last is filled greedily in
// ascending variant id after a locked preflight, so partial fills either
// complete whole or fail whole.
func (s *InventoryService) DecrementTx(ctx context.Context, q repository.Querier, product *domain.Product, variantID *int64, quantity int32) ([]domain.VariantDebit, error) {
	const op = "inventory.decrement"

	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	name := product.Name.Resolve(s.locale, s.locale)

	if variantID != nil {
		variant := product.Variant(*variantID)
		if variant == nil {
			return nil, ErrVariantNotFound
		}
		rows, err := q.DecrementVariantStock(ctx, *variantID, quantity)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to decrement variant stock")
		}
		if rows == 0 {
			return nil, errInsufficientStock(op, name)
		}
		return []domain.VariantDebit{{VariantID: *variantID, Quantity: quantity}}, nil
	}

	if !product.HasVariants() {
		rows, err := q.DecrementProductStock(ctx, product.ID, quantity)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to decrement product stock")
		}
		if rows == 0 {
			return nil, errInsufficientStock(op, name)
		}
		return nil, nil
	}

	// No variant chosen on a variant product: fill from the variant pool.
	variants, err := q.GetVariantsForUpdate(ctx, product.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to lock variants")
	}

	var total int32
	for _, v := range variants {
		if v.IsActive {
			total += v.Stock
		}
	}
	if total < quantity {
		return nil, errInsufficientStock(op, name)
	}

	var debits []domain.VariantDebit
	remaining := quantity
	for _, v := range variants {
		if remaining == 0 {
			break
		}
		if !v.IsActive || v.Stock <= 0 {
			continue
		}
		take := v.Stock
		if take > remaining {
			take = remaining
		}
		rows, err := q.DecrementVariantStock(ctx, v.ID, take)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to decrement variant stock")
		}
		if rows == 0 {
			// The rows are locked, so a failed guard here means the
			// snapshot we summed is stale. Abort rather than guess.
			return nil, errInsufficientStock(op, name)
		}
		debits = append(debits, domain.VariantDebit{VariantID: v.ID, Quantity: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, errInsufficientStock(op, name)
	}
	return debits, nil
}

// RestoreTx returns an order line's stock inside the caller's transaction.
// Lines filled across variants replay their recorded debits so every unit
// goes back to the variant it came from.
func (s *InventoryService) RestoreTx(ctx context.Context, q repository.Querier, item domain.OrderItem) error {
	const op = "inventory.restore"

	if len(item.Snapshot.VariantDebits) > 0 {
		for _, debit := range item.Snapshot.VariantDebits {
			if err := q.IncrementVariantStock(ctx, debit.VariantID, debit.Quantity); err != nil {
				return domain.Internal(err, op, "failed to restore variant stock")
			}
		}
		return nil
	}

	if item.VariantID != nil {
		if err := q.IncrementVariantStock(ctx, *item.VariantID, item.Quantity); err != nil {
			return domain.Internal(err, op, "failed to restore variant stock")
		}
		return nil
	}

	if err := q.IncrementProductStock(ctx, item.ProductID, item.Quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Product deleted since the order; nothing to restore into.
			s.logger.Warn("restore target product missing", "product_id", item.ProductID, "order_id", item.OrderID)
			return nil
		}
		return domain.Internal(err, op, "failed to restore product stock")
	}
	return nil
}
