// Package storefront is a session-authenticated client for an
// e-commerce backend. It authenticates a user, browses the product
// catalog, maintains a cart mirrored from the server, and converts a
// populated cart into a placed order.
//
// The Client wires the layers together: configuration -> logger ->
// token store -> session manager -> request pipeline -> services.
// Import the subpackages directly for finer-grained assembly:
//   - github.com/shopfront/storefront-go/core - types, errors, config
//   - github.com/shopfront/storefront-go/transport - HTTP + pipeline
//   - github.com/shopfront/storefront-go/session - token and identity
package storefront

import (
	"context"
	"fmt"

	"github.com/shopfront/storefront-go/cart"
	"github.com/shopfront/storefront-go/catalog"
	"github.com/shopfront/storefront-go/core"
	"github.com/shopfront/storefront-go/order"
	"github.com/shopfront/storefront-go/session"
	"github.com/shopfront/storefront-go/transport"
)

// Re-export core types so simple consumers only import this package.
type (
	Config = core.Config
	Option = core.Option
	Logger = core.Logger

	User        = core.User
	Product     = core.Product
	Cart        = core.Cart
	CartItem    = core.CartItem
	Order       = core.Order
	OrderStatus = core.OrderStatus
)

// Re-export configuration options.
var (
	WithBaseURL          = core.WithBaseURL
	WithTimeout          = core.WithTimeout
	WithUserAgent        = core.WithUserAgent
	WithRedisURL         = core.WithRedisURL
	WithTokenFile        = core.WithTokenFile
	WithStorageKey       = core.WithStorageKey
	WithLogLevel         = core.WithLogLevel
	WithLogFormat        = core.WithLogFormat
	WithTracing          = core.WithTracing
	WithInstrumentedHTTP = core.WithInstrumentedHTTP
	WithConfigFile       = core.WithConfigFile
)

// Re-export error predicates for callers deciding how to react.
var (
	IsAuthFailure = core.IsAuthFailure
	IsValidation  = core.IsValidation
	IsNotFound    = core.IsNotFound
	IsRetryable   = core.IsRetryable
)

// Client bundles the storefront services for one backend and one
// session.
type Client struct {
	Session *session.Manager
	Auth    *session.Auth
	Catalog *catalog.Service
	Cart    *cart.Service
	Orders  *order.Service

	config *core.Config
	store  session.TokenStore
	logger core.Logger
}

// New assembles a client from configuration options.
func New(opts ...Option) (*Client, error) {
	cfg, err := core.NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	logger := core.NewLogger(cfg.Logging)

	store, err := newTokenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("token store: %w", err)
	}

	manager := session.NewManager(store, logger)

	base := transport.NewHTTP(cfg, logger)
	pipeline := transport.NewPipeline(base, manager, logger)
	pipeline.SetAuthFailureHandler(manager)

	auth := session.NewAuth(pipeline, manager, logger)
	catalogSvc := catalog.New(pipeline, logger)
	cartSvc := cart.New(pipeline, catalogSvc, logger)
	orderSvc := order.New(pipeline, cartSvc, logger)

	// The session owns the cart: ending the session, voluntarily or
	// not, drops the local mirror.
	manager.OnInvalidate(cartSvc.Reset)

	logger.Info("Storefront client initialized", map[string]interface{}{
		"operation": "client_init",
		"base_url":  cfg.BaseURL,
		"storage":   storageKind(cfg),
	})

	return &Client{
		Session: manager,
		Auth:    auth,
		Catalog: catalogSvc,
		Cart:    cartSvc,
		Orders:  orderSvc,
		config:  cfg,
		store:   store,
		logger:  logger,
	}, nil
}

// Restore attempts to resume a persisted session at process start.
// It reports whether an authenticated session is now active and never
// returns an error: a rejected or unreadable token simply leaves the
// client unauthenticated.
func (c *Client) Restore(ctx context.Context) bool {
	return c.Session.Restore(ctx, c.Auth.Profile)
}

// Close releases the token store's backend resources.
func (c *Client) Close() error {
	return c.store.Close()
}

func newTokenStore(cfg *core.Config) (session.TokenStore, error) {
	switch {
	case cfg.Storage.RedisURL != "":
		return session.NewRedisTokenStore(cfg.Storage.RedisURL, cfg.Storage.Key)
	case cfg.Storage.TokenFile != "":
		return session.NewFileTokenStore(cfg.Storage.TokenFile)
	default:
		return session.NewMemoryTokenStore(), nil
	}
}

func storageKind(cfg *core.Config) string {
	switch {
	case cfg.Storage.RedisURL != "":
		return "redis"
	case cfg.Storage.TokenFile != "":
		return "file"
	default:
		return "memory"
	}
}
