package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bensaadi/parapharma/internal/analytics"
	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/repository"
	"github.com/bensaadi/parapharma/internal/telemetry"
)

// OrderService runs checkout and the order lifecycle. Creation happens in a
// single database transaction: pricing, discounts, stock decrements and the
// order rows all commit together or not at all.
type OrderService struct {
	store     repository.Store
	inventory *InventoryService
	loyalty   *LoyaltyService
	notifier  analytics.Notifier
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
	locale    string
	now       func() time.Time
}

// NewOrderService creates an OrderService. notifier and metrics may be nil.
func NewOrderService(
	store repository.Store,
	inventory *InventoryService,
	loyalty *LoyaltyService,
	notifier analytics.Notifier,
	metrics *telemetry.BusinessMetrics,
	logger *slog.Logger,
	defaultLocale string,
) *OrderService {
	if notifier == nil {
		notifier = analytics.NoopNotifier{}
	}
	return &OrderService{
		store:     store,
		inventory: inventory,
		loyalty:   loyalty,
		notifier:  notifier,
		metrics:   metrics,
		logger:    logger,
		locale:    defaultLocale,
		now:       time.Now,
	}
}

// Create places an order. Every line is repriced from the live catalog
// (cart snapshots are advisory only), the tariff is re-read inside the
// transaction, and stock is taken with guarded decrements. An invalid promo
// code is silently ignored; a loyalty failure aborts the checkout.
func (s *OrderService) Create(ctx context.Context, input domain.CreateOrderInput) (*domain.OrderDetail, error) {
	const op = "order.create"

	if !input.DeliveryType.Valid() {
		return nil, ErrUnknownDeliveryType
	}
	if len(input.Items) == 0 {
		return nil, domain.Invalid(op, "order must contain at least one item")
	}
	if input.LoyaltyPointsUsed < 0 {
		return nil, ErrInvalidPoints
	}
	if input.LoyaltyPointsUsed > 0 && input.ClientID == nil {
		return nil, ErrGuestLoyaltySpend
	}

	var (
		detail           *domain.OrderDetail
		appliedPromoType domain.PromoType
	)
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		wilaya, err := q.GetWilaya(ctx, input.WilayaID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWilayaNotFound
			}
			return domain.Internal(err, op, "failed to load wilaya")
		}
		commune, err := q.GetCommune(ctx, input.CommuneID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCommuneNotFound
			}
			return domain.Internal(err, op, "failed to load commune")
		}
		if commune.WilayaID != wilaya.ID {
			return ErrCommuneMismatch
		}

		tariff, err := q.GetActiveTariff(ctx, input.WilayaID, input.DeliveryType)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoTariff
			}
			return domain.Internal(err, op, "failed to load tariff")
		}
		deliveryPrice := tariff.Price

		// Price every line from the live catalog.
		type pricedLine struct {
			input     domain.OrderLineInput
			product   *domain.Product
			unitPrice int64
		}
		lines := make([]pricedLine, 0, len(input.Items))
		var productsTotal int64
		for _, line := range input.Items {
			if line.Quantity <= 0 {
				return ErrInvalidQuantity
			}
			product, err := q.GetProduct(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrProductNotFound
				}
				return domain.Internal(err, op, "failed to load product")
			}
			if !product.IsAvailable() {
				return errProductUnavailable(op, product.Name.Resolve(s.locale, s.locale))
			}

			var unitPrice int64
			if line.VariantID != nil {
				variant := product.Variant(*line.VariantID)
				if variant == nil {
					return ErrVariantNotFound
				}
				unitPrice = variant.Price
			} else {
				unitPrice = product.EffectivePrice()
			}

			lines = append(lines, pricedLine{input: line, product: product, unitPrice: unitPrice})
			productsTotal += unitPrice * int64(line.Quantity)
		}

		// Promo lookup. An invalid or expired code never blocks checkout.
		var (
			promo         *domain.PromoCode
			promoCodeUsed *string
			promoDiscount int64
			freeShipping  bool
		)
		if code := strings.ToUpper(strings.TrimSpace(input.PromoCode)); code != "" {
			p, err := q.GetActivePromoByCode(ctx, code)
			switch {
			case err == nil && p.IsValidFor(input.ClientID, s.now()):
				promo = p
				promoCodeUsed = &promo.Code
				promoDiscount = promo.Discount(productsTotal)
				freeShipping = promo.FreeShipping()
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				return domain.Internal(err, op, "failed to load promo code")
			default:
				s.logger.Info("ignoring invalid promo code", "code", code)
			}
		}

		// Loyalty spend. Points may not exceed what is left of the product
		// subtotal after the promo, so the discount can never overshoot.
		var loyaltyDiscount int64
		if input.LoyaltyPointsUsed > 0 {
			if input.LoyaltyPointsUsed > productsTotal-promoDiscount {
				return ErrPointsExceedOrder
			}
			loyaltyDiscount, err = s.loyalty.ConvertToDiscountTx(ctx, q, *input.ClientID, input.LoyaltyPointsUsed)
			if err != nil {
				return err
			}
		}

		if freeShipping {
			deliveryPrice = 0
		}
		discountTotal := promoDiscount + loyaltyDiscount
		totalPrice := productsTotal - discountTotal + deliveryPrice

		order, err := q.InsertOrder(ctx, repository.InsertOrderParams{
			ClientID:          input.ClientID,
			FirstName:         input.FirstName,
			LastName:          input.LastName,
			Phone:             input.Phone,
			Address:           input.Address,
			WilayaName:        wilaya.Name.Resolve(s.locale, s.locale),
			CommuneName:       commune.Name.Resolve(s.locale, s.locale),
			DeliveryType:      input.DeliveryType,
			DeliveryPrice:     deliveryPrice,
			ProductsTotal:     productsTotal,
			DiscountTotal:     discountTotal,
			TotalPrice:        totalPrice,
			PromoCode:         promoCodeUsed,
			LoyaltyPointsUsed: input.LoyaltyPointsUsed,
			Status:            domain.OrderPending,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to insert order")
		}

		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			debits, err := s.inventory.DecrementTx(ctx, q, line.product, line.input.VariantID, line.input.Quantity)
			if err != nil {
				return err
			}

			snapshot := domain.ItemSnapshot{
				SchemaVersion:  domain.SnapshotSchemaVersion,
				Name:           line.product.Name,
				Description:    line.product.Description,
				Specifications: line.product.Specifications,
				VariantDebits:  debits,
			}
			if line.input.VariantID != nil {
				if v := line.product.Variant(*line.input.VariantID); v != nil {
					snapshot.SKU = v.SKU
				}
			}

			item, err := q.InsertOrderItem(ctx, repository.InsertOrderItemParams{
				OrderID:   order.ID,
				ProductID: line.input.ProductID,
				VariantID: line.input.VariantID,
				Quantity:  line.input.Quantity,
				UnitPrice: line.unitPrice,
				Snapshot:  snapshot,
			})
			if err != nil {
				return domain.Internal(err, op, "failed to insert order item")
			}
			items = append(items, *item)
		}

		if order.ClientID != nil {
			if err := s.loyalty.AwardPointsTx(ctx, q, *order.ClientID, totalPrice, order.ID); err != nil {
				return err
			}
			// Checkout consumes the cart.
			cart, err := q.GetCartByClient(ctx, *order.ClientID)
			if err == nil {
				if err := q.ClearCart(ctx, cart.ID); err != nil {
					return domain.Internal(err, op, "failed to clear cart")
				}
			} else if !errors.Is(err, repository.ErrNotFound) {
				return domain.Internal(err, op, "failed to load cart")
			}
		}

		detail = &domain.OrderDetail{Order: *order, Items: items}
		if promo != nil {
			appliedPromoType = promo.Type
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		if appliedPromoType != "" {
			s.metrics.PromoApplied.WithLabelValues(string(appliedPromoType)).Inc()
		}
		s.metrics.OrdersCreated.WithLabelValues(string(detail.Order.DeliveryType)).Inc()
		s.metrics.OrderValue.Observe(float64(detail.Order.TotalPrice))
		s.metrics.OrderItemCount.Observe(float64(len(detail.Items)))
	}

	order := detail.Order
	itemCount := len(detail.Items)
	go func(ctx context.Context) {
		if err := s.notifier.NotifyPurchase(ctx, &order, itemCount); err != nil {
			s.logger.Error("purchase notification failed", "order_id", order.ID, "error", err)
		}
	}(context.WithoutCancel(ctx))

	return detail, nil
}

// GetOrder returns an order with its items.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	const op = "order.get"

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, domain.Internal(err, op, "failed to load order")
	}
	items, err := s.store.GetOrderItems(ctx, id)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load order items")
	}
	return &domain.OrderDetail{Order: *order, Items: items}, nil
}

// ListByStatus returns orders in the given status, newest first.
func (s *OrderService) ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if !status.Valid() {
		return nil, domain.Invalid("order.list", "unknown order status")
	}
	orders, err := s.store.ListOrdersByStatus(ctx, status)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	return orders, nil
}

// UpdateStatus moves an order along its lifecycle. The order row is locked
// so concurrent status changes serialize; transitions outside the table are
// rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, next domain.OrderStatus) (*domain.Order, error) {
	const op = "order.update_status"

	if !next.Valid() {
		return nil, domain.Invalid(op, "unknown order status")
	}
	if next == domain.OrderCancelled {
		detail, err := s.Cancel(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return &detail.Order, nil
	}

	var updated *domain.Order
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		order, err := q.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrderNotFound
			}
			return domain.Internal(err, op, "failed to load order")
		}
		if !order.Status.CanTransitionTo(next) {
			return errInvalidTransition(op, order.Status, next)
		}
		if err := q.UpdateOrderStatus(ctx, orderID, next); err != nil {
			return domain.Internal(err, op, "failed to update order status")
		}
		order.Status = next
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel cancels an order and restores the stock it consumed, replaying the
// per-variant debits recorded at checkout.
func (s *OrderService) Cancel(ctx context.Context, orderID int64) (*domain.OrderDetail, error) {
	const op = "order.cancel"

	var detail *domain.OrderDetail
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		order, err := q.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrOrderNotFound
			}
			return domain.Internal(err, op, "failed to load order")
		}
		if !order.Status.CanTransitionTo(domain.OrderCancelled) {
			return errInvalidTransition(op, order.Status, domain.OrderCancelled)
		}

		items, err := q.GetOrderItems(ctx, orderID)
		if err != nil {
			return domain.Internal(err, op, "failed to load order items")
		}
		for _, item := range items {
			if err := s.inventory.RestoreTx(ctx, q, item); err != nil {
				return err
			}
		}

		if err := q.UpdateOrderStatus(ctx, orderID, domain.OrderCancelled); err != nil {
			return domain.Internal(err, op, "failed to update order status")
		}
		order.Status = domain.OrderCancelled
		detail = &domain.OrderDetail{Order: *order, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCancelled.Inc()
	}
	return detail, nil
}
