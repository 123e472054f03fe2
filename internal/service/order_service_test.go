package service

import (
	"context"
	"testing"

	"resto-service/internal/broker"
	"resto-service/internal/models"
	"resto-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*OrderService, *store.Memory) {
	t.Helper()
	mem := store.NewMemoryWithFixtures()
	feed := broker.NewLocalFeed()
	t.Cleanup(func() { feed.Close() })
	return NewOrderService(mem, mem, feed, false), mem
}

func TestCheckoutComputesTotalServerSide(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Checkout(ctx, CustomerInfo{Name: "Alice", Phone: "555-0101"},
		[]CheckoutItem{
			{ProductID: "1", Quantity: 2}, // 12.99 each
			{ProductID: "2", Quantity: 1}, // 6.50
		})
	require.NoError(t, err)

	assert.InDelta(t, 32.48, order.Total, 0.001)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.NotEmpty(t, order.ID)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.InDelta(t, 12.99, order.Items[0].Price, 0.001)
}

func TestCheckoutPrependsOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Checkout(ctx, CustomerInfo{Name: "Bob", Phone: "555-0102"},
		[]CheckoutItem{{ProductID: "3", Quantity: 1}})
	require.NoError(t, err)

	orders, err := svc.Orders(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, orders)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestCheckoutRejectsBadCarts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, CustomerInfo{Name: "Carol", Phone: "555-0103"}, nil)
	assert.ErrorIs(t, err, store.ErrRejected)

	_, err = svc.Checkout(ctx, CustomerInfo{Name: "Carol", Phone: "555-0103"},
		[]CheckoutItem{{ProductID: "no-such-product", Quantity: 1}})
	assert.ErrorIs(t, err, store.ErrRejected)

	_, err = svc.Checkout(ctx, CustomerInfo{Name: "Carol", Phone: "555-0103"},
		[]CheckoutItem{{ProductID: "1", Quantity: 0}})
	assert.ErrorIs(t, err, store.ErrRejected)
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	// Fixture order 101 starts pending.
	require.NoError(t, svc.UpdateStatus(ctx, "101", models.StatusPreparing))

	order, err := mem.GetOrder(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, order.Status)

	// Skipping ahead and moving backward are both refused.
	err = svc.UpdateStatus(ctx, "101", models.StatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = svc.UpdateStatus(ctx, "101", models.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = svc.UpdateStatus(ctx, "101", models.OrderStatus("cancelled"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// brokenWrites refuses status writes, simulating an unreachable backend.
type brokenWrites struct {
	*store.Memory
}

func (b *brokenWrites) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	return store.ErrTransient
}

func TestUpdateStatusFallsBackOnLiveFailure(t *testing.T) {
	backend := &brokenWrites{Memory: store.NewMemoryWithFixtures()}
	fallback := store.NewMemoryWithFixtures()
	feed := broker.NewLocalFeed()
	defer feed.Close()

	svc := NewOrderService(backend, fallback, feed, true)
	ctx := context.Background()

	err := svc.UpdateStatus(ctx, "101", models.StatusPreparing)
	assert.ErrorIs(t, err, store.ErrTransient)

	// The transition landed in the local fallback store anyway.
	order, err := fallback.GetOrder(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, order.Status)
}

func TestRoundCents(t *testing.T) {
	assert.InDelta(t, 32.48, roundCents(12.99*2+6.50), 0.0001)
	assert.InDelta(t, 0.30, roundCents(0.1+0.2), 0.0001)
}
