package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusNext(t *testing.T) {
	next, ok := StatusPending.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusPreparing, next)

	next, ok = StatusPreparing.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusReady, next)

	next, ok = StatusReady.Next()
	assert.True(t, ok)
	assert.Equal(t, StatusDelivered, next)

	_, ok = StatusDelivered.Next()
	assert.False(t, ok)

	_, ok = OrderStatus("cancelled").Next()
	assert.False(t, ok)
}

func TestOrderStatusCanTransition(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusPreparing))
	assert.True(t, StatusPreparing.CanTransition(StatusReady))
	assert.True(t, StatusReady.CanTransition(StatusDelivered))

	// No skipping ahead.
	assert.False(t, StatusPending.CanTransition(StatusReady))
	assert.False(t, StatusPending.CanTransition(StatusDelivered))

	// No backward moves.
	assert.False(t, StatusReady.CanTransition(StatusPreparing))
	assert.False(t, StatusDelivered.CanTransition(StatusPending))

	// Nothing after delivered, no self-loops.
	assert.False(t, StatusDelivered.CanTransition(StatusDelivered))
	assert.False(t, StatusPreparing.CanTransition(StatusPreparing))
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusDelivered.Valid())
	assert.False(t, OrderStatus("").Valid())
	assert.False(t, OrderStatus("shipped").Valid())
}

func TestCartItemsScanRoundTrip(t *testing.T) {
	items := CartItems{
		{Product: Product{ID: "1", Name: "Classic Burger", Price: 12.99}, Quantity: 2},
	}

	raw, err := items.Value()
	assert.NoError(t, err)

	var decoded CartItems
	assert.NoError(t, decoded.Scan(raw))
	assert.Len(t, decoded, 1)
	assert.Equal(t, "Classic Burger", decoded[0].Name)
	assert.Equal(t, 2, decoded[0].Quantity)

	var fromNil CartItems
	assert.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)

	assert.Error(t, decoded.Scan(42))
}
