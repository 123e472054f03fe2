package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"resto-service/internal/broker"
	"resto-service/internal/models"
	"resto-service/internal/service"
	"resto-service/internal/util"

	"go.uber.org/zap"
)

// ErrUnknownOrder means the board has no entry with the given id.
var ErrUnknownOrder = errors.New("order not on board")

// Board is the staff-facing order list: the authoritative in-memory copy of
// current orders, newest-first. It is loaded once, then kept in sync by
// reducing change events from the feed, while staff actions are applied
// optimistically before backend confirmation.
type Board struct {
	mu         sync.Mutex
	orders     []models.Order
	closed     bool
	cancelFeed func()
	closeOnce  sync.Once

	svc    *service.OrderService
	logger *zap.Logger
}

func NewBoard(svc *service.OrderService) *Board {
	return &Board{
		svc:    svc,
		logger: util.GetLogger(),
	}
}

// Load replaces the board with the full current list. A load finishing after
// Close is discarded rather than mutating torn-down state.
func (b *Board) Load(ctx context.Context) error {
	orders, err := b.svc.Orders(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.orders = orders
	return nil
}

// Watch subscribes the board to the change feed until Close.
func (b *Board) Watch(ctx context.Context, feed broker.Feed) error {
	cancel, err := feed.Subscribe(ctx, b.Apply)
	if err != nil {
		return fmt.Errorf("failed to subscribe board to feed: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		cancel()
		return nil
	}
	b.cancelFeed = cancel
	return nil
}

// Apply reduces one change event into the list. Events are applied in
// arrival order, last write wins, and redundant events are no-ops:
//   - insert prepends; an id already present is replaced in place
//   - update replaces the matching entry; an unknown id is ignored (it
//     arrived before the initial load and the next full reload picks it up)
//   - delete removes the matching entry if present
func (b *Board) Apply(ctx context.Context, ev models.OrderChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	switch ev.Type {
	case models.ChangeInsert:
		if ev.Order == nil {
			return fmt.Errorf("insert event %s without payload", ev.EventID)
		}
		if i := b.index(ev.Order.ID); i >= 0 {
			b.orders[i] = *ev.Order
			return nil
		}
		b.orders = append([]models.Order{*ev.Order}, b.orders...)
		util.BoardEventsApplied.WithLabelValues("insert").Inc()

	case models.ChangeUpdate:
		i := b.index(ev.OrderID)
		if i < 0 {
			return nil
		}
		if ev.Order != nil {
			b.orders[i] = *ev.Order
		}
		util.BoardEventsApplied.WithLabelValues("update").Inc()

	case models.ChangeDelete:
		if i := b.index(ev.OrderID); i >= 0 {
			b.orders = append(b.orders[:i], b.orders[i+1:]...)
			util.BoardEventsApplied.WithLabelValues("delete").Inc()
		}

	default:
		b.logger.Warn("Ignoring change event with unknown type",
			zap.String("type", ev.Type),
			zap.String("event_id", ev.EventID))
	}
	return nil
}

// Advance applies a staff-initiated transition: optimistically on the board
// first, then as a write through the service. target may be empty to mean
// "the next status". The feed will echo the backend's own confirmation of
// the same change, which Apply absorbs idempotently.
func (b *Board) Advance(ctx context.Context, id string, target models.OrderStatus) (models.OrderStatus, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return "", ErrUnknownOrder
	}

	i := b.index(id)
	if i < 0 {
		b.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrUnknownOrder, id)
	}

	current := b.orders[i].Status
	if target == "" {
		next, ok := current.Next()
		if !ok {
			b.mu.Unlock()
			return "", fmt.Errorf("%w: %s is terminal", service.ErrInvalidTransition, current)
		}
		target = next
	} else if !current.CanTransition(target) {
		b.mu.Unlock()
		return "", fmt.Errorf("%w: %s -> %s", service.ErrInvalidTransition, current, target)
	}

	b.orders[i].Status = target
	b.mu.Unlock()

	// The optimistic copy is kept even when the write fails: status changes
	// prioritize responsiveness, and the feed corrects the board if the
	// backend settles elsewhere.
	if err := b.svc.UpdateStatus(ctx, id, target); err != nil {
		b.logger.Warn("Status write failed after optimistic apply",
			zap.String("order_id", id),
			zap.String("status", string(target)),
			zap.Error(err))
	}
	return target, nil
}

// Orders returns a copy of the board, newest-first.
func (b *Board) Orders() []models.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Order(nil), b.orders...)
}

// Close tears the board down exactly once: the feed subscription is
// cancelled and late results are discarded.
func (b *Board) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		cancel := b.cancelFeed
		b.mu.Unlock()
		if cancel != nil {
			cancel()
		}
	})
}

// index returns the position of the order with the given id, or -1. Callers
// hold the lock.
func (b *Board) index(id string) int {
	for i := range b.orders {
		if b.orders[i].ID == id {
			return i
		}
	}
	return -1
}
