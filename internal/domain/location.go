package domain

// DeliveryType distinguishes home delivery from pickup at a delivery desk.
type DeliveryType string

const (
	DeliveryHome DeliveryType = "domicile"
	DeliveryDesk DeliveryType = "bureau"
)

// Valid reports whether dt is a known delivery type.
func (dt DeliveryType) Valid() bool {
	return dt == DeliveryHome || dt == DeliveryDesk
}

// Wilaya is a top-level delivery region. A wilaya is active only while it
// has at least one active tariff; the activation cascade is enforced by
// LocationService.
type Wilaya struct {
	ID       int64
	Code     int32
	Name     Translated
	IsActive bool
}

// Commune is a sub-region of a wilaya.
type Commune struct {
	ID       int64
	WilayaID int64
	Name     Translated
	IsActive bool
}

// DeliveryTariff is the delivery price for a (wilaya, delivery type) pair.
// The pair is unique.
type DeliveryTariff struct {
	ID           int64        `json:"id"`
	WilayaID     int64        `json:"wilaya_id"`
	DeliveryType DeliveryType `json:"delivery_type"`
	Price        int64        `json:"price"`
	IsActive     bool         `json:"is_active"`
}
