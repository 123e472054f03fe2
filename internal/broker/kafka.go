package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"resto-service/internal/models"
	"resto-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaFeed is the live-mode change feed: one topic of order change events,
// keyed by order id so changes to the same order stay ordered.
type KafkaFeed struct {
	writer  *kafka.Writer
	brokers []string
	topic   string
	groupID string
	logger  *zap.Logger
}

// NewKafkaFeed creates the producer side; consumers are created per
// subscription so each gets its own offset.
func NewKafkaFeed(brokers []string, topic, groupID string) *KafkaFeed {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &KafkaFeed{
		writer:  writer,
		brokers: brokers,
		topic:   topic,
		groupID: groupID,
		logger:  util.GetLogger(),
	}
}

// Publish writes a change event to the topic.
func (f *KafkaFeed) Publish(ctx context.Context, ev models.OrderChangeEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte("order-" + ev.OrderID),
		Value: raw,
		Time:  ev.Timestamp,
	}

	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write change event: %w", err)
	}

	f.logger.Debug("Published change event",
		zap.String("type", ev.Type),
		zap.String("order_id", ev.OrderID))
	return nil
}

// Subscribe consumes the topic and hands each event to handler in arrival
// order. The returned cancel stops the consumer loop and closes the reader.
func (f *KafkaFeed) Subscribe(ctx context.Context, handler Handler) (func(), error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        f.brokers,
		Topic:          f.topic,
		GroupID:        f.groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	subCtx, cancelCtx := context.WithCancel(ctx)

	go func() {
		for {
			msg, err := reader.FetchMessage(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				f.logger.Warn("Error fetching change event", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			var ev models.OrderChangeEvent
			if err := json.Unmarshal(msg.Value, &ev); err != nil {
				f.logger.Warn("Skipping malformed change event", zap.Error(err))
			} else if err := handler(subCtx, ev); err != nil {
				f.logger.Warn("Change event handler failed",
					zap.String("order_id", ev.OrderID),
					zap.Error(err))
			}

			if err := reader.CommitMessages(subCtx, msg); err != nil && subCtx.Err() == nil {
				f.logger.Warn("Error committing change event", zap.Error(err))
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelCtx()
			if err := reader.Close(); err != nil {
				f.logger.Warn("Error closing feed reader", zap.Error(err))
			}
		})
	}
	return cancel, nil
}

// Close closes the producer side.
func (f *KafkaFeed) Close() error {
	return f.writer.Close()
}
