package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Role identifies a staff account's privilege level. Public visitors have no
// profile record and therefore no role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// OrderStatus is the order lifecycle state. Transitions are strictly linear:
// pending -> preparing -> ready -> delivered.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
)

// Next returns the single allowed follow-up status. ok is false when the
// status is terminal or unknown.
func (s OrderStatus) Next() (next OrderStatus, ok bool) {
	switch s {
	case StatusPending:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusReady, true
	case StatusReady:
		return StatusDelivered, true
	default:
		return "", false
	}
}

// CanTransition reports whether moving from s to target is allowed. No
// skipping, no backward moves, nothing after delivered.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	next, ok := s.Next()
	return ok && next == target
}

// Valid reports whether s is one of the four lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered:
		return true
	}
	return false
}

// Product represents a catalog item
type Product struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
	Category    string  `db:"category" json:"category"`
	Active      bool    `db:"active" json:"active"`
	ImageURL    string  `db:"image_url" json:"image_url,omitempty"`
}

// CartItem is a product snapshot plus a quantity, taken at checkout time.
// Quantity is always positive; an item at zero is removed from the cart.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// CartItems is stored on orders as a serialized JSON list.
type CartItems []CartItem

// Value implements driver.Valuer for the items column.
func (ci CartItems) Value() (driver.Value, error) {
	return json.Marshal(ci)
}

// Scan implements sql.Scanner for the items column.
func (ci *CartItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, ci)
	case string:
		return json.Unmarshal([]byte(v), ci)
	case nil:
		*ci = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into CartItems", src)
	}
}

// Order represents a customer order. Created once at checkout, mutated only
// by status transitions.
type Order struct {
	ID            string      `db:"id" json:"id"`
	CustomerName  string      `db:"customer_name" json:"customer_name"`
	CustomerPhone string      `db:"customer_phone" json:"customer_phone"`
	Address       string      `db:"address" json:"address,omitempty"`
	Items         CartItems   `db:"items" json:"items"`
	Total         float64     `db:"total" json:"total"`
	Status        OrderStatus `db:"status" json:"status"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// UserProfile is a staff account. Role is sourced from the profiles table;
// a session with no profile row defaults to employee.
type UserProfile struct {
	ID           string `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	Role         Role   `db:"role" json:"role"`
	PasswordHash string `db:"password_hash" json:"-"`
}
