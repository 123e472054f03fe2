package store

import (
	"context"
	"database/sql"
	"fmt"

	"resto-service/internal/models"
)

// CreateOrder inserts a new order and returns the persisted record.
func (s *Postgres) CreateOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	query := `
		INSERT INTO orders (customer_name, customer_phone, address, items, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := s.db.GetContext(ctx, &o.ID, query,
		o.CustomerName, o.CustomerPhone, o.Address, o.Items, o.Total, o.Status, o.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return o, nil
}

// ListOrders returns all orders newest-first by created_at.
func (s *Postgres) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, classify(err)
	}
	return orders, nil
}

// GetOrder retrieves an order by ID
func (s *Postgres) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &order, nil
}

// UpdateOrderStatus writes a new lifecycle status for an order.
func (s *Postgres) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	return nil
}
