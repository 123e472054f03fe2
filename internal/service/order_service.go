package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"resto-service/internal/broker"
	"resto-service/internal/models"
	"resto-service/internal/store"
	"resto-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidTransition means a status change does not follow the linear
// lifecycle pending -> preparing -> ready -> delivered.
var ErrInvalidTransition = errors.New("invalid status transition")

// OrderService handles checkout and order lifecycle writes.
type OrderService struct {
	repo     store.Repository
	fallback store.Repository
	feed     broker.Feed
	live     bool
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrderService creates an order service. fallback is the in-memory store
// that absorbs status writes when the live backend refuses them; in mock
// mode repo and fallback are the same store.
func NewOrderService(repo store.Repository, fallback store.Repository, feed broker.Feed, live bool) *OrderService {
	return &OrderService{
		repo:     repo,
		fallback: fallback,
		feed:     feed,
		live:     live,
		logger:   util.GetLogger(),
		now:      time.Now,
	}
}

// CustomerInfo is the contact block collected at checkout.
type CustomerInfo struct {
	Name    string `json:"customer_name" binding:"required"`
	Phone   string `json:"customer_phone" binding:"required"`
	Address string `json:"address"`
}

// CheckoutItem references a catalog product by id. Prices are never taken
// from the client.
type CheckoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// Checkout creates a new order: items are snapshotted from the catalog, the
// total is recomputed server-side from price x quantity, status starts at
// pending. Persist failures propagate so the checkout UI knows submission
// failed.
func (s *OrderService) Checkout(ctx context.Context, cust CustomerInfo, items []CheckoutItem) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Checkout")
	defer span.End()

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty cart", store.ErrRejected)
	}

	cart := make(models.CartItems, 0, len(items))
	var total float64
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be positive", store.ErrRejected)
		}
		product, err := s.repo.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown product %s", store.ErrRejected, item.ProductID)
			}
			return nil, err
		}
		cart = append(cart, models.CartItem{Product: *product, Quantity: item.Quantity})
		total += product.Price * float64(item.Quantity)
	}

	order := &models.Order{
		CustomerName:  cust.Name,
		CustomerPhone: cust.Phone,
		Address:       cust.Address,
		Items:         cart,
		Total:         roundCents(total),
		Status:        models.StatusPending,
		CreatedAt:     s.now(),
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("persist").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", created.ID),
		zap.Float64("total", created.Total))

	s.publish(ctx, models.ChangeInsert, created.ID, created)
	return created, nil
}

// Orders returns the order list newest-first. A live read failure degrades
// to an empty list rather than fixture data, so staff never mistake demo
// orders for real ones.
func (s *OrderService) Orders(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Orders")
	defer span.End()

	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		s.logger.Error("Order list fetch failed", zap.Error(err))
		return []models.Order{}, nil
	}
	return orders, nil
}

// UpdateStatus validates the transition against the linear machine, writes
// it, and publishes the change. On a live write failure the transition is
// still applied to the fallback store; the error is returned so the caller
// can log it, but the board keeps its optimistic copy regardless.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	current, err := s.repo.GetOrder(ctx, id)
	if err == nil && !current.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	if err := s.repo.UpdateOrderStatus(ctx, id, status); err != nil {
		if s.live {
			if fbErr := s.fallback.UpdateOrderStatus(ctx, id, status); fbErr != nil && !errors.Is(fbErr, store.ErrNotFound) {
				s.logger.Warn("Fallback status write failed", zap.Error(fbErr))
			}
		}
		s.logger.Error("Status write failed, transition kept locally",
			zap.String("order_id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return err
	}

	util.OrdersStatusAdvanced.WithLabelValues(string(status)).Inc()

	if current != nil {
		updated := *current
		updated.Status = status
		s.publish(ctx, models.ChangeUpdate, id, &updated)
	} else {
		s.publish(ctx, models.ChangeUpdate, id, nil)
	}
	return nil
}

// publish emits a change event; feed trouble is logged, never propagated.
func (s *OrderService) publish(ctx context.Context, changeType, orderID string, order *models.Order) {
	ev := models.OrderChangeEvent{
		EventID:   uuid.New().String(),
		Type:      changeType,
		OrderID:   orderID,
		Order:     order,
		Timestamp: s.now(),
	}
	if err := s.feed.Publish(ctx, ev); err != nil {
		s.logger.Error("Failed to publish change event",
			zap.String("type", changeType),
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}

// roundCents keeps totals at exact cent precision after float summation.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
