package domain

import "time"

// PromoType determines how a promo code discounts an order.
type PromoType string

const (
	PromoPercent      PromoType = "percent"
	PromoFixed        PromoType = "fixed"
	PromoFreeShipping PromoType = "free_shipping"
)

// PromoUsageType scopes who may redeem a code.
type PromoUsageType string

const (
	PromoPersonal  PromoUsageType = "personal"  // bound to one client
	PromoShareable PromoUsageType = "shareable" // anyone
)

// PromoCode is a discount code. Personal codes carry the client they are
// bound to; shareable codes have a nil ClientID.
type PromoCode struct {
	ID            int64          `json:"id"`
	Code          string         `json:"code"`
	Type          PromoType      `json:"type"`
	UsageType     PromoUsageType `json:"usage_type"`
	DiscountValue int64          `json:"discount_value"`
	ClientID      *int64         `json:"client_id,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
}

// IsValidFor reports whether the code can be redeemed by the given client
// at the given time: active, not expired, and either shareable or bound to
// that client.
func (p *PromoCode) IsValidFor(clientID *int64, now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.ExpiresAt != nil && p.ExpiresAt.Before(now) {
		return false
	}
	if p.UsageType == PromoPersonal {
		if p.ClientID == nil || clientID == nil || *p.ClientID != *clientID {
			return false
		}
	}
	return true
}

// Discount computes the monetary discount off the given product subtotal.
// Percent codes take DiscountValue as a percentage; fixed codes never
// discount more than the subtotal. Free-shipping codes do not discount the
// subtotal at all; their effect is zeroing the delivery price.
func (p *PromoCode) Discount(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	switch p.Type {
	case PromoPercent:
		return amount * p.DiscountValue / 100
	case PromoFixed:
		if p.DiscountValue > amount {
			return amount
		}
		return p.DiscountValue
	default:
		return 0
	}
}

// FreeShipping reports whether redeeming the code waives the delivery price.
func (p *PromoCode) FreeShipping() bool {
	return p.Type == PromoFreeShipping
}
