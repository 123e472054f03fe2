package models

import "time"

// Change types for order feed events
const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

// OrderChangeEvent is a row-level change notification for the orders
// collection. Delete events carry only the order id.
type OrderChangeEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	Order     *Order    `json:"order,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionChange is a session lifecycle notification (sign-in, sign-out,
// token refresh) independent of any table.
type SessionChange struct {
	Token     string    `json:"token,omitempty"`
	SignedOut bool      `json:"signed_out"`
	Timestamp time.Time `json:"timestamp"`
}
