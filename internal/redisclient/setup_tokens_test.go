package redisclient

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenStore(t *testing.T, ttl time.Duration) (*SetupTokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSetupTokenStore(client, ttl), mr
}

func TestSetupToken_IssueValidateConsume(t *testing.T) {
	store, _ := newTestTokenStore(t, time.Hour)
	ctx := context.Background()

	expires, err := store.Issue(ctx, "tok-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	// validation does not consume
	require.NoError(t, store.Validate(ctx, "tok-1"))
	require.NoError(t, store.Validate(ctx, "tok-1"))

	require.NoError(t, store.Consume(ctx, "tok-1"))

	// a consumed token is reported as used, not missing
	assert.ErrorIs(t, store.Validate(ctx, "tok-1"), ErrTokenUsed)
	assert.ErrorIs(t, store.Consume(ctx, "tok-1"), ErrTokenUsed)
}

func TestSetupToken_UnknownToken(t *testing.T) {
	store, _ := newTestTokenStore(t, time.Hour)
	ctx := context.Background()

	assert.ErrorIs(t, store.Validate(ctx, "never-issued"), ErrTokenNotFound)
	assert.ErrorIs(t, store.Consume(ctx, "never-issued"), ErrTokenNotFound)
}

func TestSetupToken_Expiry(t *testing.T) {
	store, mr := newTestTokenStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Issue(ctx, "tok-exp")
	require.NoError(t, err)
	require.NoError(t, store.Validate(ctx, "tok-exp"))

	mr.FastForward(2 * time.Hour)

	assert.ErrorIs(t, store.Validate(ctx, "tok-exp"), ErrTokenNotFound)
	assert.ErrorIs(t, store.Consume(ctx, "tok-exp"), ErrTokenNotFound)
}

func TestSetupToken_RawValueNeverStored(t *testing.T) {
	store, mr := newTestTokenStore(t, time.Hour)

	_, err := store.Issue(context.Background(), "super-secret-token")
	require.NoError(t, err)

	for _, key := range mr.Keys() {
		assert.NotContains(t, key, "super-secret-token")
	}
}

func TestSetupToken_Clear(t *testing.T) {
	store, _ := newTestTokenStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Issue(ctx, "tok-a")
	require.NoError(t, err)
	_, err = store.Issue(ctx, "tok-b")
	require.NoError(t, err)
	require.NoError(t, store.Consume(ctx, "tok-b"))

	// used tokens are swept too
	removed, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	assert.ErrorIs(t, store.Validate(ctx, "tok-a"), ErrTokenNotFound)
	assert.ErrorIs(t, store.Validate(ctx, "tok-b"), ErrTokenNotFound)

	removed, err = store.Clear(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSetupToken_CountValid(t *testing.T) {
	store, _ := newTestTokenStore(t, time.Hour)
	ctx := context.Background()

	n, err := store.CountValid(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.Issue(ctx, "tok-a")
	require.NoError(t, err)
	_, err = store.Issue(ctx, "tok-b")
	require.NoError(t, err)

	n, err = store.CountValid(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// consumed tokens no longer count
	require.NoError(t, store.Consume(ctx, "tok-a"))

	n, err = store.CountValid(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
