// Package order converts the current cart into a placed order, lists
// order history and drives the one client-side status transition
// (CREATED -> CANCELLED). Orders are immutable snapshots; the server
// owns every other transition.
package order

import (
	"context"
	"strconv"
	"sync"

	"github.com/shopfront/storefront-go/core"
	"github.com/shopfront/storefront-go/transport"
)

// CartState is the slice of the cart service the order flow needs:
// the checkout precondition reads the mirror, and a successful
// checkout consumes it.
type CartState interface {
	Current() *core.Cart
	Reset()
}

// Service places and manages orders for the current session.
type Service struct {
	pipeline *transport.Pipeline
	cart     CartState
	logger   core.Logger

	// statuses remembers the last observed status per order so a
	// cancel against a known-terminal order fails locally instead of
	// wasting a round trip.
	mu       sync.RWMutex
	statuses map[int64]core.OrderStatus
}

// New creates the order service.
func New(pipeline *transport.Pipeline, cart CartState, logger core.Logger) *Service {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Service{
		pipeline: pipeline,
		cart:     cart,
		logger:   logger,
		statuses: make(map[int64]core.OrderStatus),
	}
}

// Checkout snapshots the server-side cart into a new CREATED order.
// An empty local cart is rejected before any request is sent. On
// success the local cart mirror is consumed: checkout is atomic from
// the client's perspective even though server atomicity is outside
// this component's control.
func (s *Service) Checkout(ctx context.Context) (*core.Order, error) {
	if s.cart.Current().IsEmpty() {
		return nil, &core.APIError{
			Op:      "order.Checkout",
			Kind:    core.KindValidation,
			Message: "cannot checkout an empty cart",
			Err:     core.ErrEmptyCart,
		}
	}

	var o core.Order
	if err := s.pipeline.Post(ctx, "/orders", nil, &o); err != nil {
		return nil, err
	}

	s.cart.Reset()
	s.observe(o)

	s.logger.Info("Order placed", map[string]interface{}{
		"operation":    "order_checkout",
		"order_id":     o.ID,
		"total_amount": o.TotalAmount,
		"status":       o.Status.String(),
	})
	return &o, nil
}

// List returns the order history in the server's ordering.
func (s *Service) List(ctx context.Context) ([]core.Order, error) {
	var orders []core.Order
	if err := s.pipeline.Get(ctx, "/orders", &orders); err != nil {
		return nil, err
	}

	for _, o := range orders {
		s.observe(o)
	}
	return orders, nil
}

// Get fetches a single order by ID.
func (s *Service) Get(ctx context.Context, orderID int64) (*core.Order, error) {
	var o core.Order
	if err := s.pipeline.Get(ctx, orderPath(orderID), &o); err != nil {
		return nil, err
	}
	s.observe(o)
	return &o, nil
}

// Cancel transitions a CREATED order to CANCELLED. Cancelling an order
// the client already knows to be CONFIRMED or CANCELLED fails locally
// as a validation failure; otherwise the server has the final verdict.
func (s *Service) Cancel(ctx context.Context, orderID int64) (*core.Order, error) {
	if status, ok := s.lastStatus(orderID); ok && status.IsTerminal() {
		return nil, &core.APIError{
			Op:      "order.Cancel",
			Kind:    core.KindValidation,
			Message: "order " + strconv.FormatInt(orderID, 10) + " is already " + status.String(),
			Err:     core.ErrOrderTerminal,
		}
	}

	var o core.Order
	if err := s.pipeline.Post(ctx, orderPath(orderID)+"/cancel", nil, &o); err != nil {
		return nil, err
	}
	s.observe(o)

	s.logger.Info("Order cancelled", map[string]interface{}{
		"operation": "order_cancel",
		"order_id":  o.ID,
		"status":    o.Status.String(),
	})
	return &o, nil
}

func (s *Service) observe(o core.Order) {
	s.mu.Lock()
	s.statuses[o.ID] = o.Status
	s.mu.Unlock()
}

func (s *Service) lastStatus(orderID int64) (core.OrderStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.statuses[orderID]
	return status, ok
}

func orderPath(orderID int64) string {
	return "/orders/" + strconv.FormatInt(orderID, 10)
}
