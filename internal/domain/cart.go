package domain

import "time"

// Cart is keyed by either a client id (authenticated) or a session id
// (guest), never both. A guest cart is merged into the client cart on login.
type Cart struct {
	ID        int64
	ClientID  *int64
	SessionID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is one line of a cart. PriceSnapshot is the product price
// captured when the line was added or last updated; it is advisory display
// pricing only. Checkout always reprices from the live catalog.
type CartItem struct {
	ID            int64     `json:"id"`
	CartID        int64     `json:"cart_id"`
	ProductID     int64     `json:"product_id"`
	VariantID     *int64    `json:"variant_id,omitempty"`
	Quantity      int32     `json:"quantity"`
	PriceSnapshot int64     `json:"price_snapshot"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CartSummary aggregates a cart with its items and advisory totals.
type CartSummary struct {
	Cart      Cart
	Items     []CartItem
	Subtotal  int64
	ItemCount int
}
