// Package session owns the authentication token and the current user
// identity. The Manager keeps both in memory behind a lock and mirrors
// the token into a TokenStore so a session survives process restarts
// until explicit logout or server-side rejection.
package session

import (
	"context"
	"sync"
)

// TokenStore persists the opaque session token under a fixed key.
// Implementations must treat an absent token as ("", nil), not as an
// error, and Clear must be idempotent.
type TokenStore interface {
	// Load returns the persisted token, or "" when none is stored.
	Load(ctx context.Context) (string, error)
	// Save durably stores the token, replacing any previous value.
	Save(ctx context.Context, token string) error
	// Clear erases the persisted token.
	Clear(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

// MemoryTokenStore keeps the token in process memory only. It is the
// default backend when no durable storage is configured, and the
// natural choice for tests.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryTokenStore creates an empty in-memory store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (m *MemoryTokenStore) Load(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryTokenStore) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

func (m *MemoryTokenStore) Close() error {
	return nil
}
