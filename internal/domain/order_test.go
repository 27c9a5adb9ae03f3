package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderDelivered, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},

		{OrderProcessing, OrderConfirmed, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderDelivered, true},
		{OrderProcessing, OrderShipped, false},
		{OrderProcessing, OrderPending, false},

		{OrderConfirmed, OrderShipped, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderConfirmed, OrderDelivered, true},
		{OrderConfirmed, OrderPending, false},

		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderShipped, OrderPending, false},

		{OrderDelivered, OrderCancelled, false},
		{OrderDelivered, OrderPending, false},
		{OrderDelivered, OrderShipped, false},

		{OrderCancelled, OrderPending, true},
		{OrderCancelled, OrderConfirmed, false},
		{OrderCancelled, OrderDelivered, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatusDeliveredIsTerminal(t *testing.T) {
	for _, next := range []OrderStatus{
		OrderPending, OrderProcessing, OrderConfirmed, OrderShipped, OrderCancelled, OrderDelivered,
	} {
		assert.False(t, OrderDelivered.CanTransitionTo(next), "delivered -> %s", next)
	}
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderPending.Valid())
	assert.True(t, OrderCancelled.Valid())
	assert.False(t, OrderStatus("draft").Valid())
	assert.False(t, OrderStatus("").Valid())
}
