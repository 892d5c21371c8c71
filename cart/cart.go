// Package cart mutates and mirrors the single authoritative cart the
// server holds for the current session. Every mutation is a round trip
// whose response replaces the local mirror wholesale: the client never
// merges partial updates (last-response-wins). Two mutations issued
// without awaiting each other may race server-side; callers needing
// strict ordering must sequence their calls.
package cart

import (
	"context"
	"strconv"
	"sync"

	"github.com/shopfront/storefront-go/core"
	"github.com/shopfront/storefront-go/transport"
)

// Quantity bounds accepted per cart line.
const (
	MinQuantity = 1
	MaxQuantity = 10
)

// ProductLookup resolves a product from the last loaded catalog
// snapshot. The catalog service implements it.
type ProductLookup interface {
	FindByID(productID int64) (core.Product, bool)
}

// AddToCartRequest is the payload for adding a line to the cart. Name
// and price come from the catalog snapshot; the server recomputes the
// subtotal and its response is authoritative.
type AddToCartRequest struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Service keeps the local cart mirror consistent with the server copy
// under sequential user actions.
type Service struct {
	pipeline *transport.Pipeline
	products ProductLookup
	logger   core.Logger

	mu     sync.RWMutex
	mirror *core.Cart
}

// New creates the cart service.
func New(pipeline *transport.Pipeline, products ProductLookup, logger core.Logger) *Service {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Service{pipeline: pipeline, products: products, logger: logger}
}

// Load fetches the authoritative cart and replaces the mirror.
func (s *Service) Load(ctx context.Context) (*core.Cart, error) {
	var c core.Cart
	if err := s.pipeline.Get(ctx, "/cart", &c); err != nil {
		return nil, err
	}
	return s.replace(&c), nil
}

// AddItem adds quantity units of a product. The quantity bound is
// checked locally so an out-of-range value never costs a round trip,
// and the product must exist in the catalog snapshot to supply name
// and price.
func (s *Service) AddItem(ctx context.Context, productID int64, quantity int) (*core.Cart, error) {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return nil, &core.APIError{
			Op:      "cart.AddItem",
			Kind:    core.KindValidation,
			Message: "quantity " + strconv.Itoa(quantity) + " out of range [1,10]",
			Err:     core.ErrInvalidQuantity,
		}
	}

	product, ok := s.products.FindByID(productID)
	if !ok {
		return nil, &core.APIError{
			Op:      "cart.AddItem",
			Kind:    core.KindNotFound,
			Message: "product " + strconv.FormatInt(productID, 10) + " not in catalog snapshot",
			Err:     core.ErrProductNotFound,
		}
	}

	req := AddToCartRequest{
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    quantity,
	}

	var c core.Cart
	if err := s.pipeline.Post(ctx, "/cart/items", req, &c); err != nil {
		return nil, err
	}

	s.logger.Info("Item added to cart", map[string]interface{}{
		"operation":  "cart_add",
		"product_id": productID,
		"quantity":   quantity,
		"cart_items": len(c.Items),
	})
	return s.replace(&c), nil
}

// RemoveItem deletes a line from the cart. Removing an absent item
// succeeds: the server answers with the unchanged cart.
func (s *Service) RemoveItem(ctx context.Context, productID int64) (*core.Cart, error) {
	var c core.Cart
	path := "/cart/items/" + strconv.FormatInt(productID, 10)
	if err := s.pipeline.Delete(ctx, path, &c); err != nil {
		return nil, err
	}

	s.logger.Info("Item removed from cart", map[string]interface{}{
		"operation":  "cart_remove",
		"product_id": productID,
		"cart_items": len(c.Items),
	})
	return s.replace(&c), nil
}

// Clear empties the cart on the server and mirrors the terminal
// {items: []} state locally.
func (s *Service) Clear(ctx context.Context) (*core.Cart, error) {
	var c core.Cart
	if err := s.pipeline.Delete(ctx, "/cart", &c); err != nil {
		return nil, err
	}

	s.logger.Info("Cart cleared", map[string]interface{}{
		"operation": "cart_clear",
	})
	return s.replace(&c), nil
}

// Current returns a copy of the local mirror, or nil when no cart has
// been loaded this session.
func (s *Service) Current() *core.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCart(s.mirror)
}

// Reset drops the local mirror. Called when the session ends and after
// a successful checkout consumes the cart.
func (s *Service) Reset() {
	s.mu.Lock()
	s.mirror = nil
	s.mu.Unlock()
}

// replace installs the server response as the new mirror and returns a
// caller-owned copy.
func (s *Service) replace(c *core.Cart) *core.Cart {
	if c.Items == nil {
		c.Items = []core.CartItem{}
	}
	s.mu.Lock()
	s.mirror = c
	s.mu.Unlock()
	return cloneCart(c)
}

func cloneCart(c *core.Cart) *core.Cart {
	if c == nil {
		return nil
	}
	out := &core.Cart{Items: make([]core.CartItem, len(c.Items))}
	copy(out.Items, c.Items)
	return out
}
