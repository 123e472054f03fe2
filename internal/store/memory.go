package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resto-service/internal/models"

	"github.com/google/uuid"
)

// Memory is the mock-mode repository: an in-memory fixture dataset that lives
// for the process lifetime. Mutations complete synchronously in place so a
// read in the same tick sees consistent state. It also serves as the local
// fallback target for order-status writes when the live backend fails.
type Memory struct {
	mu       sync.Mutex
	products []models.Product
	orders   []models.Order
	profiles []models.UserProfile
}

// NewMemory builds a mock repository from the given fixture dataset.
func NewMemory(products []models.Product, orders []models.Order, profiles []models.UserProfile) *Memory {
	return &Memory{
		products: append([]models.Product(nil), products...),
		orders:   append([]models.Order(nil), orders...),
		profiles: append([]models.UserProfile(nil), profiles...),
	}
}

// NewMemoryWithFixtures builds a mock repository pre-loaded with the demo
// menu and a couple of sample orders.
func NewMemoryWithFixtures() *Memory {
	return NewMemory(FixtureProducts(), FixtureOrders(), FixtureProfiles())
}

func (m *Memory) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) ListProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Product(nil), m.products...), nil
}

func (m *Memory) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.products {
		if m.products[i].ID == id {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
}

func (m *Memory) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = uuid.New().String()
	m.products = append(m.products, *p)
	return p, nil
}

func (m *Memory) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.products {
		if m.products[i].ID != id {
			continue
		}
		p := &m.products[i]
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		if upd.Price != nil {
			p.Price = *upd.Price
		}
		if upd.Category != nil {
			p.Category = *upd.Category
		}
		if upd.Active != nil {
			p.Active = *upd.Active
		}
		if upd.ImageURL != nil {
			p.ImageURL = *upd.ImageURL
		}
		out := *p
		return &out, nil
	}
	return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
}

func (m *Memory) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: product %s", ErrNotFound, id)
}

// CreateOrder assigns a fresh id and prepends the order so the list stays
// newest-first.
func (m *Memory) CreateOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o.ID = uuid.New().String()
	m.orders = append([]models.Order{*o}, m.orders...)
	return o, nil
}

func (m *Memory) ListOrders(ctx context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Order(nil), m.orders...), nil
}

func (m *Memory) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.orders {
		if m.orders[i].ID == id {
			o := m.orders[i]
			return &o, nil
		}
	}
	return nil, fmt.Errorf("%w: order %s", ErrNotFound, id)
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("%w: order %s", ErrNotFound, id)
}

func (m *Memory) GetProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.profiles {
		if m.profiles[i].ID == id {
			p := m.profiles[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id)
}

func (m *Memory) GetProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.profiles {
		if m.profiles[i].Email == email {
			p := m.profiles[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: profile %s", ErrNotFound, email)
}

func (m *Memory) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.UserProfile(nil), m.profiles...), nil
}

func (m *Memory) CreateProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.profiles {
		if m.profiles[i].Email == p.Email {
			return nil, fmt.Errorf("%w: email already in use", ErrRejected)
		}
	}
	p.ID = uuid.New().String()
	m.profiles = append(m.profiles, *p)
	return p, nil
}

func (m *Memory) DeleteProfile(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.profiles {
		if m.profiles[i].ID == id {
			m.profiles = append(m.profiles[:i], m.profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: profile %s", ErrNotFound, id)
}

// FixtureProducts is the demo menu served in mock mode.
func FixtureProducts() []models.Product {
	return []models.Product{
		{
			ID:          "1",
			Name:        "Classic Burger",
			Description: "Juicy beef patty with cheddar, lettuce, tomato, and house sauce.",
			Price:       12.99,
			Category:    "Burgers",
			Active:      true,
			ImageURL:    "https://picsum.photos/400/300?random=1",
		},
		{
			ID:          "2",
			Name:        "Truffle Fries",
			Description: "Crispy fries tossed with truffle oil and parmesan.",
			Price:       6.50,
			Category:    "Sides",
			Active:      true,
			ImageURL:    "https://picsum.photos/400/300?random=2",
		},
		{
			ID:          "3",
			Name:        "Margherita Pizza",
			Description: "San Marzano tomato sauce, fresh mozzarella, basil.",
			Price:       15.00,
			Category:    "Pizza",
			Active:      true,
			ImageURL:    "https://picsum.photos/400/300?random=3",
		},
		{
			ID:          "4",
			Name:        "Caesar Salad",
			Description: "Romaine hearts, croutons, parmesan, caesar dressing.",
			Price:       9.00,
			Category:    "Salads",
			Active:      true,
			ImageURL:    "https://picsum.photos/400/300?random=4",
		},
	}
}

// FixtureOrders returns two sample orders so the staff board is not empty in
// mock mode.
func FixtureOrders() []models.Order {
	products := FixtureProducts()
	return []models.Order{
		{
			ID:            "101",
			CustomerName:  "Alice Johnson",
			CustomerPhone: "555-0101",
			Address:       "123 Main St, Apt 4B",
			Items: models.CartItems{
				{Product: products[0], Quantity: 2},
				{Product: products[1], Quantity: 1},
			},
			Total:     32.48,
			Status:    models.StatusPending,
			CreatedAt: time.Now().Add(-5 * time.Minute),
		},
		{
			ID:            "102",
			CustomerName:  "Bob Smith",
			CustomerPhone: "555-0102",
			Address:       "456 Oak Ave",
			Items: models.CartItems{
				{Product: products[2], Quantity: 1},
			},
			Total:     15.00,
			Status:    models.StatusPreparing,
			CreatedAt: time.Now().Add(-25 * time.Minute),
		},
	}
}

// FixtureProfiles seeds a demo admin account for mock mode.
func FixtureProfiles() []models.UserProfile {
	return []models.UserProfile{
		{ID: "mock-admin", Email: "admin@example.com", Role: models.RoleAdmin},
	}
}
