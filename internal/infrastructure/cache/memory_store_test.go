package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetAndGet(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v"), value)
}

func TestMemoryStore_MissAfterExpiry(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 20*time.Millisecond))

	time.Sleep(30 * time.Millisecond)

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "expired entry must be a miss")

	// The expired entry was evicted on read, not just hidden.
	_, stillThere := store.entries.Load("k")
	assert.False(t, stillThere)
}

func TestMemoryStore_SetReplacesValueAndResetsExpiry(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("old"), 20*time.Millisecond))
	require.NoError(t, store.Set(ctx, "k", []byte("new"), time.Minute))

	time.Sleep(30 * time.Millisecond)

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found, "expiry must be reset by the second Set")
	assert.Equal(t, []byte("new"), value)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", n%5)
			_ = store.Set(ctx, key, []byte("v"), time.Minute)
			_, _, _ = store.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	hits, misses := store.Stats()
	assert.Equal(t, int64(20), hits+misses)
}

func TestNewStore_Factory(t *testing.T) {
	t.Run("defaults to memory", func(t *testing.T) {
		store, err := NewStore(FactoryConfig{}, nil)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		_, err := NewStore(FactoryConfig{Backend: "memcached"}, nil)
		assert.Error(t, err)
	})
}
