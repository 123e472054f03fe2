package store

import (
	"context"
	"testing"

	"resto-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFixtures(t *testing.T) {
	m := NewMemoryWithFixtures()
	ctx := context.Background()

	products, err := m.ListActiveProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)

	orders, err := m.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "101", orders[0].ID)
	assert.InDelta(t, 32.48, orders[0].Total, 0.001)
}

func TestMemoryCreateOrderPrepends(t *testing.T) {
	m := NewMemoryWithFixtures()
	ctx := context.Background()

	created, err := m.CreateOrder(ctx, &models.Order{
		CustomerName: "Carol",
		Status:       models.StatusPending,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	orders, err := m.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, created.ID, orders[0].ID)
}

func TestMemoryUpdateOrderStatus(t *testing.T) {
	m := NewMemoryWithFixtures()
	ctx := context.Background()

	require.NoError(t, m.UpdateOrderStatus(ctx, "101", models.StatusPreparing))

	order, err := m.GetOrder(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, order.Status)

	err = m.UpdateOrderStatus(ctx, "missing", models.StatusReady)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPartialProductUpdate(t *testing.T) {
	m := NewMemoryWithFixtures()
	ctx := context.Background()

	price := 13.49
	updated, err := m.UpdateProduct(ctx, "1", ProductUpdate{Price: &price})
	require.NoError(t, err)

	assert.InDelta(t, 13.49, updated.Price, 0.001)
	assert.Equal(t, "Classic Burger", updated.Name)

	active := false
	updated, err = m.UpdateProduct(ctx, "1", ProductUpdate{Active: &active})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	activeList, err := m.ListActiveProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, activeList, 3)
}

func TestMemoryDeleteProduct(t *testing.T) {
	m := NewMemoryWithFixtures()
	ctx := context.Background()

	require.NoError(t, m.DeleteProduct(ctx, "2"))

	_, err := m.GetProduct(ctx, "2")
	assert.ErrorIs(t, err, ErrNotFound)

	err = m.DeleteProduct(ctx, "2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProfileEmailUnique(t *testing.T) {
	m := NewMemoryWithFixtures()
	ctx := context.Background()

	created, err := m.CreateProfile(ctx, &models.UserProfile{
		Email: "kitchen@example.com",
		Role:  models.RoleEmployee,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = m.CreateProfile(ctx, &models.UserProfile{
		Email: "kitchen@example.com",
		Role:  models.RoleEmployee,
	})
	assert.ErrorIs(t, err, ErrRejected)

	require.NoError(t, m.DeleteProfile(ctx, created.ID))
	_, err = m.GetProfile(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
