package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"resto-service/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

// Failure taxonomy surfaced by the data layer. Callers branch with errors.Is.
var (
	// ErrNotFound means the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrTransient covers timeouts and network failures. The layer does not
	// auto-retry; refetching is the caller's responsibility.
	ErrTransient = errors.New("transient backend failure")
	// ErrSchemaMissing means the backend is reachable but the expected
	// relation is absent. Reads degrade to empty, never crash.
	ErrSchemaMissing = errors.New("backend schema missing")
	// ErrRejected means the backend refused a write. Always propagated.
	ErrRejected = errors.New("write rejected by backend")
)

// ProductUpdate carries a partial product edit. Nil fields are left as-is.
type ProductUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Active      *bool    `json:"active,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
}

// Repository is the single point of truth for products, orders and staff
// profiles. Two implementations exist: Postgres for live mode and Memory for
// mock mode. The implementation is chosen once at construction, never
// re-checked per call.
type Repository interface {
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateOrder(ctx context.Context, o *models.Order) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error

	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	ListProfiles(ctx context.Context) ([]models.UserProfile, error)
	CreateProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error)
	DeleteProfile(ctx context.Context, id string) error
}

// Postgres is the live-mode repository backed by sqlx.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres connects to the database and verifies the connection.
func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Close closes the database connection
func (s *Postgres) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection, used by integration tests.
func (s *Postgres) DB() *sqlx.DB {
	return s.db
}

// classify maps driver errors onto the failure taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%w: %s", ErrSchemaMissing, pqErr.Message)
		case "23505", "23502", "23514", "23503": // constraint violations
			return fmt.Errorf("%w: %s", ErrRejected, pqErr.Message)
		}
	}
	return err
}
