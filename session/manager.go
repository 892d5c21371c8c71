package session

import (
	"context"
	"sync"

	"github.com/shopfront/storefront-go/core"
)

// Manager owns the token and the current user identity. All reads and
// writes go through an RWMutex so an invalidation triggered from the
// response interceptor is atomic with respect to concurrent
// CurrentToken reads: readers observe either the old or the new state,
// never a partial one.
type Manager struct {
	mu    sync.RWMutex
	token string
	user  *core.User

	store  TokenStore
	logger core.Logger

	// hooks run after the session ends, in registration order. The
	// cart mirror registers its teardown here: the session owns the
	// cart's lifecycle.
	hooks []func()
}

// NewManager creates a manager persisting tokens into store.
func NewManager(store TokenStore, logger core.Logger) *Manager {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &Manager{store: store, logger: logger}
}

// OnInvalidate registers a hook to run whenever the session ends,
// whether by explicit logout or by server-side rejection.
func (m *Manager) OnInvalidate(hook func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// Establish installs a fresh session after successful login or
// register: token and user in memory, token durably persisted. A
// persistence failure does not reject the session; it only means the
// session will not survive a restart.
func (m *Manager) Establish(ctx context.Context, token string, user *core.User) {
	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()

	if err := m.store.Save(ctx, token); err != nil {
		m.logger.Warn("Failed to persist session token", map[string]interface{}{
			"operation": "session_persist",
			"error":     err.Error(),
		})
		return
	}

	m.logger.Info("Session established", map[string]interface{}{
		"operation": "session_establish",
		"user_id":   userID(user),
	})
}

// Restore picks up a persisted token at process start and validates it
// by fetching the profile through the authenticated pipeline. On any
// failure the persisted token is cleared and the manager stays
// unauthenticated; no error reaches the caller beyond that result.
func (m *Manager) Restore(ctx context.Context, fetchProfile func(ctx context.Context) (*core.User, error)) bool {
	token, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("Failed to read persisted token", map[string]interface{}{
			"operation": "session_restore",
			"error":     err.Error(),
		})
		return false
	}
	if token == "" {
		return false
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	user, err := fetchProfile(ctx)
	if err != nil {
		m.logger.Info("Persisted token rejected, clearing", map[string]interface{}{
			"operation": "session_restore",
			"error":     err.Error(),
		})
		// The pipeline already invalidates on a 401; clearing again
		// here covers transport failures and keeps Restore total.
		m.Invalidate(ctx)
		return false
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()

	m.logger.Info("Session restored", map[string]interface{}{
		"operation": "session_restore",
		"user_id":   userID(user),
	})
	return true
}

// Invalidate ends the session: in-memory state and the persisted token
// are cleared, then the invalidation hooks run. Calling it while
// already unauthenticated is a no-op.
func (m *Manager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	if m.token == "" && m.user == nil {
		m.mu.Unlock()
		return
	}
	m.token = ""
	m.user = nil
	hooks := make([]func(), len(m.hooks))
	copy(hooks, m.hooks)
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("Failed to clear persisted token", map[string]interface{}{
			"operation": "session_invalidate",
			"error":     err.Error(),
		})
	}

	for _, hook := range hooks {
		hook()
	}

	m.logger.Info("Session invalidated", map[string]interface{}{
		"operation": "session_invalidate",
	})
}

// OnAuthFailure implements the pipeline's incoming interceptor hook.
func (m *Manager) OnAuthFailure(ctx context.Context) {
	m.Invalidate(ctx)
}

// CurrentToken returns the bearer credential, or "" when the session
// is unauthenticated. Never blocks on I/O.
func (m *Manager) CurrentToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// CurrentUser returns a copy of the authenticated user's profile, or
// nil when unauthenticated.
func (m *Manager) CurrentUser() *core.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Authenticated reports whether a token is currently held.
func (m *Manager) Authenticated() bool {
	return m.CurrentToken() != ""
}

func userID(user *core.User) interface{} {
	if user == nil {
		return nil
	}
	return user.ID
}
