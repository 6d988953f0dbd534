package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communitylabs/authcore/pkg/kvstore"
)

func newTestStore(t *testing.T) kvstore.Store {
	t.Helper()
	store := kvstore.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRefreshService_Rotation(t *testing.T) {
	t.Parallel()

	svc := NewRefreshService(newTestStore(t))
	ctx := context.Background()

	t.Run("exactly one successful validate per token", func(t *testing.T) {
		t.Parallel()

		token, err := svc.Create(ctx, 42)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		userID, err := svc.Validate(ctx, token)
		require.NoError(t, err)
		assert.EqualValues(t, 42, userID)

		// Replay inside the TTL window still fails: validate consumed the entry.
		_, err = svc.Validate(ctx, token)
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Validate(ctx, "never-issued")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Validate(ctx, "")
		assert.ErrorIs(t, err, ErrTokenNotFound)
	})

	t.Run("tokens are unique per issuance", func(t *testing.T) {
		t.Parallel()

		a, err := svc.Create(ctx, 1)
		require.NoError(t, err)
		b, err := svc.Create(ctx, 1)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestRefreshService_Expiry(t *testing.T) {
	t.Parallel()

	svc := NewRefreshService(newTestStore(t), WithRefreshTTL(10*time.Millisecond))
	ctx := context.Background()

	token, err := svc.Create(ctx, 7)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRefreshService_Revoke(t *testing.T) {
	t.Parallel()

	svc := NewRefreshService(newTestStore(t))
	ctx := context.Background()

	token, err := svc.Create(ctx, 9)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, token))

	_, err = svc.Validate(ctx, token)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// Revoking again, or revoking nothing, is fine.
	assert.NoError(t, svc.Revoke(ctx, token))
	assert.NoError(t, svc.Revoke(ctx, ""))
}

func TestRefreshService_RevokeAllForUser(t *testing.T) {
	t.Parallel()

	svc := NewRefreshService(newTestStore(t))
	ctx := context.Background()

	token, err := svc.Create(ctx, 5)
	require.NoError(t, err)

	// Documented no-op: issued tokens survive the call.
	svc.RevokeAllForUser(ctx, 5)

	userID, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	assert.EqualValues(t, 5, userID)
}
