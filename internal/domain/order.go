package domain

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the explicit transition table. Delivered is terminal;
// a cancelled order may be reopened to pending.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderConfirmed, OrderDelivered, OrderCancelled},
	OrderProcessing: {OrderConfirmed, OrderCancelled, OrderDelivered},
	OrderConfirmed:  {OrderShipped, OrderCancelled, OrderDelivered},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {OrderPending},
}

// CanTransitionTo reports whether the transition table permits moving from
// s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Order is an immutable historical record of a checkout. Customer and
// geography fields are snapshotted as plain strings so later renames or
// deletions never corrupt history. Status is the only mutable field.
type Order struct {
	ID       int64  `json:"id"`
	ClientID *int64 `json:"client_id,omitempty"`

	// Customer snapshot
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`

	// Geography snapshot (names, not foreign keys)
	WilayaName  string `json:"wilaya_name"`
	CommuneName string `json:"commune_name"`

	DeliveryType  DeliveryType `json:"delivery_type"`
	DeliveryPrice int64        `json:"delivery_price"`

	ProductsTotal int64 `json:"products_total"`
	DiscountTotal int64 `json:"discount_total"`
	TotalPrice    int64 `json:"total_price"`

	PromoCode         *string `json:"promo_code,omitempty"`
	LoyaltyPointsUsed int64   `json:"loyalty_points_used"`

	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SnapshotSchemaVersion tags the metadata snapshot layout so historical
// orders stay deserialisable if the shape changes.
const SnapshotSchemaVersion = 1

// VariantDebit records how much stock was taken from one variant when the
// order line was filled. Cancellation replays these in reverse so a
// greedy multi-variant fill is restored exactly.
type VariantDebit struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int32 `json:"quantity"`
}

// ItemSnapshot is the JSON metadata frozen into an order item at checkout:
// the product's name, description and specifications as they existed at
// order time, plus the per-variant stock debit breakdown.
type ItemSnapshot struct {
	SchemaVersion  int               `json:"schema_version"`
	Name           Translated        `json:"name"`
	Description    Translated        `json:"description,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	SKU            string            `json:"sku,omitempty"`
	VariantDebits  []VariantDebit    `json:"variant_debits,omitempty"`
}

// OrderItem is one line of an order: quantity and unit price at order time
// plus the frozen metadata snapshot.
type OrderItem struct {
	ID        int64        `json:"id"`
	OrderID   int64        `json:"order_id"`
	ProductID int64        `json:"product_id"`
	VariantID *int64       `json:"variant_id,omitempty"`
	Quantity  int32        `json:"quantity"`
	UnitPrice int64        `json:"unit_price"`
	Snapshot  ItemSnapshot `json:"snapshot"`
	CreatedAt time.Time    `json:"created_at"`
}

// OrderDetail aggregates an order with its items.
type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
