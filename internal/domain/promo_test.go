package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPromoDiscount(t *testing.T) {
	percent := &PromoCode{Type: PromoPercent, DiscountValue: 10}
	assert.Equal(t, int64(250), percent.Discount(2500))
	assert.Equal(t, int64(0), percent.Discount(0))
	assert.Equal(t, int64(0), percent.Discount(-100))

	fixed := &PromoCode{Type: PromoFixed, DiscountValue: 500}
	assert.Equal(t, int64(500), fixed.Discount(2500))
	// A fixed discount never exceeds the subtotal.
	assert.Equal(t, int64(300), fixed.Discount(300))

	shipping := &PromoCode{Type: PromoFreeShipping}
	assert.Equal(t, int64(0), shipping.Discount(2500))
	assert.True(t, shipping.FreeShipping())
	assert.False(t, fixed.FreeShipping())
}

func TestPromoIsValidFor(t *testing.T) {
	now := time.Now()
	clientID := int64(7)
	otherID := int64(8)

	shareable := &PromoCode{UsageType: PromoShareable, IsActive: true}
	assert.True(t, shareable.IsValidFor(nil, now))
	assert.True(t, shareable.IsValidFor(&clientID, now))

	inactive := &PromoCode{UsageType: PromoShareable, IsActive: false}
	assert.False(t, inactive.IsValidFor(nil, now))

	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	assert.True(t, (&PromoCode{UsageType: PromoShareable, IsActive: true, ExpiresAt: &future}).IsValidFor(nil, now))
	assert.False(t, (&PromoCode{UsageType: PromoShareable, IsActive: true, ExpiresAt: &past}).IsValidFor(nil, now))

	personal := &PromoCode{UsageType: PromoPersonal, IsActive: true, ClientID: &clientID}
	assert.True(t, personal.IsValidFor(&clientID, now))
	assert.False(t, personal.IsValidFor(&otherID, now))
	assert.False(t, personal.IsValidFor(nil, now))

	// A personal code without an owner is unredeemable.
	orphan := &PromoCode{UsageType: PromoPersonal, IsActive: true}
	assert.False(t, orphan.IsValidFor(&clientID, now))
}
