package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"resto-service/internal/models"
)

// ListActiveProducts returns products visible to public browsing.
func (s *Postgres) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE active = true ORDER BY name")
	if err != nil {
		return nil, classify(err)
	}
	return products, nil
}

// ListProducts returns the full catalog, inactive items included.
func (s *Postgres) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, "SELECT * FROM products ORDER BY name")
	if err != nil {
		return nil, classify(err)
	}
	return products, nil
}

// GetProduct retrieves a product by ID
func (s *Postgres) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &product, nil
}

// CreateProduct inserts a new product and returns the persisted record.
func (s *Postgres) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (name, description, price, category, active, image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := s.db.GetContext(ctx, &p.ID, query,
		p.Name, p.Description, p.Price, p.Category, p.Active, p.ImageURL)
	if err != nil {
		return nil, classify(err)
	}
	return p, nil
}

// UpdateProduct applies a partial edit. Only non-nil fields are written.
func (s *Postgres) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*models.Product, error) {
	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)

	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Active != nil {
		add("active", *upd.Active)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}

	if len(sets) == 0 {
		return s.GetProduct(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d RETURNING *",
		strings.Join(sets, ", "), len(args))

	var product models.Product
	err := s.db.GetContext(ctx, &product, query, args...)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *Postgres) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return nil
}
