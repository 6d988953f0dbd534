package kvstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communitylabs/authcore/pkg/kvstore"
)

func TestMemoryStore_SetGet(t *testing.T) {
	t.Parallel()

	store := kvstore.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	t.Run("returns stored value before expiry", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, store.Set(ctx, "k1", []byte("v1"), time.Minute))

		val, err := store.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), val)
	})

	t.Run("missing key returns ErrNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	})

	t.Run("expired entry is treated as absent", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, store.Set(ctx, "k2", []byte("v2"), 10*time.Millisecond))
		time.Sleep(30 * time.Millisecond)

		_, err := store.Get(ctx, "k2")
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	})

	t.Run("set overwrites existing entry", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, store.Set(ctx, "k3", []byte("old"), time.Minute))
		require.NoError(t, store.Set(ctx, "k3", []byte("new"), time.Minute))

		val, err := store.Get(ctx, "k3")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), val)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, store.Set(ctx, "k4", []byte("abc"), time.Minute))

		val, err := store.Get(ctx, "k4")
		require.NoError(t, err)
		val[0] = 'X'

		again, err := store.Get(ctx, "k4")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})
}

func TestMemoryStore_GetDel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("consumes entry exactly once", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore(0)
		t.Cleanup(func() { _ = store.Close() })

		require.NoError(t, store.Set(ctx, "one", []byte("shot"), time.Minute))

		val, err := store.GetDel(ctx, "one")
		require.NoError(t, err)
		assert.Equal(t, []byte("shot"), val)

		_, err = store.GetDel(ctx, "one")
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	})

	t.Run("exactly one concurrent caller wins", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore(0)
		t.Cleanup(func() { _ = store.Close() })

		require.NoError(t, store.Set(ctx, "race", []byte("x"), time.Minute))

		const callers = 32
		var wins int64
		var mu sync.Mutex
		var wg sync.WaitGroup
		wg.Add(callers)
		for range callers {
			go func() {
				defer wg.Done()
				if _, err := store.GetDel(ctx, "race"); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.EqualValues(t, 1, wins)
	})

	t.Run("expired entry is absent", func(t *testing.T) {
		t.Parallel()

		store := kvstore.NewMemoryStore(0)
		t.Cleanup(func() { _ = store.Close() })

		require.NoError(t, store.Set(ctx, "stale", []byte("x"), 10*time.Millisecond))
		time.Sleep(30 * time.Millisecond)

		_, err := store.GetDel(ctx, "stale")
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	})
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	store := kvstore.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestMemoryStore_Sweep(t *testing.T) {
	t.Parallel()

	store := kvstore.NewMemoryStore(20 * time.Millisecond)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "gone", []byte("x"), 5*time.Millisecond))
	require.NoError(t, store.Set(ctx, "kept", []byte("y"), time.Hour))

	assert.Eventually(t, func() bool {
		return store.Len() == 1
	}, time.Second, 10*time.Millisecond, "sweep should purge the expired entry")

	val, err := store.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), val)
}
