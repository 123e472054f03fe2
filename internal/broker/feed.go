package broker

import (
	"context"

	"resto-service/internal/models"
)

// Handler processes one order change event.
type Handler func(ctx context.Context, ev models.OrderChangeEvent) error

// Feed is the push channel carrying row-level order changes. Events for a
// subscription are delivered in the order they were published; no reordering
// or coalescing. KafkaFeed backs live mode, LocalFeed backs mock mode.
type Feed interface {
	Publish(ctx context.Context, ev models.OrderChangeEvent) error
	// Subscribe starts delivering events to handler until the returned
	// cancel function is called. Cancel is safe to call more than once.
	Subscribe(ctx context.Context, handler Handler) (cancel func(), err error)
	Close() error
}
