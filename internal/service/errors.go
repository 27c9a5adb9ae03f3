package service

import (
	"github.com/bensaadi/parapharma/internal/domain"
)

// Lookup errors - domain.ENOTFOUND
var (
	ErrProductNotFound = domain.Errorf(domain.ENOTFOUND, "", "Product not found")
	ErrVariantNotFound = domain.Errorf(domain.ENOTFOUND, "", "Product variant not found")
	ErrCartNotFound    = domain.Errorf(domain.ENOTFOUND, "", "Cart not found")
	ErrOrderNotFound   = domain.Errorf(domain.ENOTFOUND, "", "Order not found")
	ErrWilayaNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Wilaya not found")
	ErrCommuneNotFound = domain.Errorf(domain.ENOTFOUND, "", "Commune not found")
	ErrClientNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Client not found")
	ErrTariffNotFound  = domain.Errorf(domain.ENOTFOUND, "", "Delivery tariff not found")
	ErrPromoNotFound   = domain.Errorf(domain.ENOTFOUND, "", "Promo code not found")
)

// Validation errors - domain.EINVALID
var (
	ErrInvalidQuantity     = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
	ErrInvalidPoints       = domain.Errorf(domain.EINVALID, "", "Points must be greater than 0")
	ErrPointsExceedOrder   = domain.Errorf(domain.EINVALID, "", "Requested points exceed the discountable amount")
	ErrGuestLoyaltySpend   = domain.Errorf(domain.EINVALID, "", "Loyalty points require an account")
	ErrUnknownDeliveryType = domain.Errorf(domain.EINVALID, "", "Unknown delivery type")
	ErrCommuneMismatch     = domain.Errorf(domain.EINVALID, "", "Commune does not belong to the selected wilaya")
	ErrPromoInvalid        = domain.Errorf(domain.EINVALID, "", "Promo code is not valid")
)

// Conflict errors - domain.ECONFLICT
var (
	ErrInsufficientPoints = domain.Errorf(domain.ECONFLICT, "", "Insufficient loyalty points")
)

// Configuration errors - domain.ECONFIG
//
// A missing tariff blocks checkout but is an admin misconfiguration, not a
// user input error.
var ErrNoTariff = domain.Errorf(domain.ECONFIG, "", "No active delivery tariff for this destination")

// errProductUnavailable names the offending product so the message is
// actionable for the shopper.
func errProductUnavailable(op, name string) error {
	return domain.Errorf(domain.ECONFLICT, op, "Product %q is not available", name)
}

// errInsufficientStock names the offending product.
func errInsufficientStock(op, name string) error {
	return domain.Errorf(domain.ECONFLICT, op, "Insufficient stock for product %q", name)
}

// errInvalidTransition reports a rejected status change.
func errInvalidTransition(op string, from, to domain.OrderStatus) error {
	return domain.Errorf(domain.ECONFLICT, op, "Cannot transition order from %s to %s", from, to)
}
