// Package analytics publishes purchase events to the marketing pixel
// pipeline. Publishing is best-effort: failures are logged and never affect
// the order transaction.
package analytics

import (
	"context"

	"github.com/bensaadi/parapharma/internal/domain"
)

// PurchaseEvent is the payload emitted after an order commits.
type PurchaseEvent struct {
	OrderID       int64  `json:"order_id"`
	ClientID      *int64 `json:"client_id,omitempty"`
	TotalPrice    int64  `json:"total_price"`
	ProductsTotal int64  `json:"products_total"`
	DiscountTotal int64  `json:"discount_total"`
	ItemCount     int    `json:"item_count"`
	WilayaName    string `json:"wilaya_name"`
	DeliveryType  string `json:"delivery_type"`
	CreatedAt     string `json:"created_at"`
}

// Notifier delivers purchase events to the analytics sink.
type Notifier interface {
	NotifyPurchase(ctx context.Context, order *domain.Order, itemCount int) error
}

// NoopNotifier discards events; used in tests and when no broker is
// configured.
type NoopNotifier struct{}

var _ Notifier = NoopNotifier{}

func (NoopNotifier) NotifyPurchase(context.Context, *domain.Order, int) error {
	return nil
}

// NewEvent builds the wire payload for an order.
func NewEvent(order *domain.Order, itemCount int) PurchaseEvent {
	return PurchaseEvent{
		OrderID:       order.ID,
		ClientID:      order.ClientID,
		TotalPrice:    order.TotalPrice,
		ProductsTotal: order.ProductsTotal,
		DiscountTotal: order.DiscountTotal,
		ItemCount:     itemCount,
		WilayaName:    order.WilayaName,
		DeliveryType:  string(order.DeliveryType),
		CreatedAt:     order.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
