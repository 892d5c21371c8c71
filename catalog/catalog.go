// Package catalog loads and searches products. It is read-only: the
// server owns product data, and the only client-side state is the last
// loaded snapshot, kept for cart lookups and the empty-keyword search
// short-circuit.
package catalog

import (
	"context"
	"strconv"
	"sync"

	"github.com/shopfront/storefront-go/core"
	"github.com/shopfront/storefront-go/transport"
)

// Service fetches products and keeps the latest snapshot.
type Service struct {
	pipeline *transport.Pipeline
	logger   core.Logger

	mu       sync.RWMutex
	snapshot []core.Product
}

// New creates the catalog service.
func New(pipeline *transport.Pipeline, logger core.Logger) *Service {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Service{pipeline: pipeline, logger: logger}
}

// List fetches the full product list and replaces the snapshot.
func (s *Service) List(ctx context.Context) ([]core.Product, error) {
	var products []core.Product
	if err := s.pipeline.Get(ctx, "/products", &products); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.snapshot = products
	s.mu.Unlock()

	s.logger.Debug("Catalog loaded", map[string]interface{}{
		"operation": "catalog_list",
		"count":     len(products),
	})
	return products, nil
}

// Search asks the server to match keyword against the catalog. An
// empty keyword returns the last loaded snapshot without a round trip,
// to avoid a degenerate server query.
func (s *Service) Search(ctx context.Context, keyword string) ([]core.Product, error) {
	if keyword == "" {
		return s.Snapshot(), nil
	}

	var products []core.Product
	err := s.pipeline.GetQuery(ctx, "/products/search", map[string]string{"keyword": keyword}, &products)
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Get fetches a single product by ID from the server.
func (s *Service) Get(ctx context.Context, productID int64) (*core.Product, error) {
	var product core.Product
	if err := s.pipeline.Get(ctx, productPath(productID), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ByCategory fetches the products in a category.
func (s *Service) ByCategory(ctx context.Context, category string) ([]core.Product, error) {
	var products []core.Product
	if err := s.pipeline.Get(ctx, "/products/category/"+category, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CheckStock queries the inventory level for a product.
func (s *Service) CheckStock(ctx context.Context, productID int64) (*core.StockLevel, error) {
	var stock core.StockLevel
	if err := s.pipeline.Get(ctx, inventoryPath(productID), &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// Snapshot returns a copy of the last loaded product list.
func (s *Service) Snapshot() []core.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Product, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// FindByID looks a product up in the snapshot without a round trip.
func (s *Service) FindByID(productID int64) (core.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.snapshot {
		if p.ID == productID {
			return p, true
		}
	}
	return core.Product{}, false
}

func productPath(productID int64) string {
	return "/products/" + strconv.FormatInt(productID, 10)
}

func inventoryPath(productID int64) string {
	return "/inventory/" + strconv.FormatInt(productID, 10)
}
