package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisTokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewRedisTokenStore("redis://"+mr.Addr(), "storefront:auth:token")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func TestRedisTokenStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	t.Run("LoadAbsent", func(t *testing.T) {
		token, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "T1"))

		token, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "T1", token)

		got, err := mr.Get("storefront:auth:token")
		require.NoError(t, err)
		assert.Equal(t, "T1", got)

		ttl := mr.TTL("storefront:auth:token")
		assert.Zero(t, ttl, "tokens persist without expiry")
	})

	t.Run("ClearIdempotent", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		require.NoError(t, store.Clear(ctx))

		token, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
	})
}

func TestNewRedisTokenStoreInvalidURL(t *testing.T) {
	_, err := NewRedisTokenStore("not-a-url", "k")
	assert.Error(t, err)
}

func TestNewRedisTokenStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisTokenStore("redis://"+addr, "k")
	assert.Error(t, err)
}
