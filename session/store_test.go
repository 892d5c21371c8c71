package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTokenStore()

	token, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "fresh store holds no token")

	require.NoError(t, store.Save(ctx, "T1"))
	token, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1", token)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx), "clear is idempotent")

	token, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestFileTokenStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "auth", "token")

	store, err := NewFileTokenStore(path)
	require.NoError(t, err)

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

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "token file must be owner-only")
	})

	t.Run("SurvivesReopen", func(t *testing.T) {
		reopened, err := NewFileTokenStore(path)
		require.NoError(t, err)

		token, err := reopened.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "T1", token)
	})

	t.Run("ClearIdempotent", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		require.NoError(t, store.Clear(ctx))

		token, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("EmptyPath", func(t *testing.T) {
		_, err := NewFileTokenStore("")
		assert.Error(t, err)
	})
}
