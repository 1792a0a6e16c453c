package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companygraph/pkg/platform/sentinel"
)

func TestInMemoryStore_GetSet(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(10)

	_, err := store.Get(ctx, "by_id:12345678")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.Set(ctx, "by_id:12345678", []byte(`[{}]`), time.Minute))
	body, err := store.Get(ctx, "by_id:12345678")
	require.NoError(t, err)
	assert.Equal(t, `[{}]`, string(body))
}

func TestInMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewInMemoryStore(10)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	now = now.Add(59 * time.Second)
	_, err := store.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestInMemoryStore_Capacity(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewInMemoryStore(2)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Hour))

	t.Run("full store drops new entries", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "c", []byte("3"), time.Hour))
		_, err := store.Get(ctx, "c")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("existing keys can be refreshed when full", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "b", []byte("22"), time.Hour))
		body, err := store.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "22", string(body))
	})

	t.Run("expired entries make room", func(t *testing.T) {
		now = now.Add(2 * time.Second)
		require.NoError(t, store.Set(ctx, "c", []byte("3"), time.Hour))
		body, err := store.Get(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, "3", string(body))
	})
}
