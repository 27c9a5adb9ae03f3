package domain

// OrderLineInput is one requested line of a checkout.
type OrderLineInput struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int32  `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput is the checkout submission. ClientID is nil for guest
// checkouts; loyalty points can only be spent by authenticated clients.
type CreateOrderInput struct {
	ClientID *int64 `json:"client_id,omitempty"`

	Items []OrderLineInput `json:"items" validate:"required,min=1,dive"`

	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`

	WilayaID     int64        `json:"wilaya_id" validate:"required,gt=0"`
	CommuneID    int64        `json:"commune_id" validate:"required,gt=0"`
	DeliveryType DeliveryType `json:"delivery_type" validate:"required"`

	PromoCode         string `json:"promo_code,omitempty"`
	LoyaltyPointsUsed int64  `json:"loyalty_points_used,omitempty" validate:"gte=0"`
}
