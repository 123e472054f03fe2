package broker

import (
	"context"
	"fmt"
	"sync"

	"resto-service/internal/models"
	"resto-service/internal/util"

	"go.uber.org/zap"
)

// LocalFeed is the mock-mode change feed: in-process channel fanout. Each
// subscriber gets its own buffered channel drained by its own goroutine, so
// delivery order per subscriber matches publish order.
type LocalFeed struct {
	mu     sync.Mutex
	subs   map[int]chan models.OrderChangeEvent
	nextID int
	closed bool
	logger *zap.Logger
}

const localBuffer = 64

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{
		subs:   make(map[int]chan models.OrderChangeEvent),
		logger: util.GetLogger(),
	}
}

// Publish fans the event out to every live subscriber. A subscriber that has
// fallen localBuffer events behind loses this event rather than blocking the
// publisher.
func (f *LocalFeed) Publish(ctx context.Context, ev models.OrderChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("local feed closed")
	}

	for id, ch := range f.subs {
		select {
		case ch <- ev:
		default:
			f.logger.Warn("Dropping change event for slow subscriber",
				zap.Int("subscriber", id),
				zap.String("order_id", ev.OrderID))
		}
	}
	return nil
}

// Subscribe registers a handler. The returned cancel removes the
// subscription; events already buffered are discarded.
func (f *LocalFeed) Subscribe(ctx context.Context, handler Handler) (func(), error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, fmt.Errorf("local feed closed")
	}

	id := f.nextID
	f.nextID++
	ch := make(chan models.OrderChangeEvent, localBuffer)
	f.subs[id] = ch
	f.mu.Unlock()

	subCtx, cancelCtx := context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-subCtx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := handler(subCtx, ev); err != nil {
					f.logger.Warn("Change event handler failed",
						zap.String("order_id", ev.OrderID),
						zap.Error(err))
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelCtx()
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
	return cancel, nil
}

// Close shuts the feed down; further publishes and subscribes fail.
func (f *LocalFeed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	for id, ch := range f.subs {
		close(ch)
		delete(f.subs, id)
	}
	return nil
}
