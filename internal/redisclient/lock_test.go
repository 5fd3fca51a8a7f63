package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (Locker, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisSlotLocker(client, 5*time.Second), mr, client
}

func TestWithSlotLock_RunsAndReleases(t *testing.T) {
	locker, mr, _ := newTestLocker(t)
	ctx := context.Background()
	slotID := uuid.New()

	ran := false
	err := locker.WithSlotLock(ctx, slotID, func(ctx context.Context) error {
		ran = true
		// the lock key is held while the callback runs
		assert.True(t, mr.Exists("lock:slot:"+slotID.String()))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	// released afterwards
	assert.False(t, mr.Exists("lock:slot:"+slotID.String()))
}

func TestWithSlotLock_Contention(t *testing.T) {
	locker, _, _ := newTestLocker(t)
	ctx := context.Background()
	slotID := uuid.New()

	err := locker.WithSlotLock(ctx, slotID, func(ctx context.Context) error {
		// a second acquisition of the same slot fails while we hold it
		inner := locker.WithSlotLock(ctx, slotID, func(ctx context.Context) error {
			t.Fatal("nested callback must not run")
			return nil
		})
		assert.ErrorIs(t, inner, ErrLockNotAcquired)
		return nil
	})
	require.NoError(t, err)
}

func TestWithSlotLock_DistinctSlotsDoNotContend(t *testing.T) {
	locker, _, _ := newTestLocker(t)
	ctx := context.Background()

	err := locker.WithSlotLock(ctx, uuid.New(), func(ctx context.Context) error {
		return locker.WithSlotLock(ctx, uuid.New(), func(ctx context.Context) error {
			return nil
		})
	})
	assert.NoError(t, err)
}

func TestWithSlotLock_PropagatesCallbackError(t *testing.T) {
	locker, mr, _ := newTestLocker(t)
	slotID := uuid.New()
	boom := errors.New("boom")

	err := locker.WithSlotLock(context.Background(), slotID, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// released even on failure
	assert.False(t, mr.Exists("lock:slot:"+slotID.String()))
}

func TestWithSlotLock_DoesNotDeleteForeignLock(t *testing.T) {
	locker, mr, client := newTestLocker(t)
	ctx := context.Background()
	slotID := uuid.New()
	key := "lock:slot:" + slotID.String()

	err := locker.WithSlotLock(ctx, slotID, func(ctx context.Context) error {
		// simulate expiry plus re-acquisition by another worker
		mr.FastForward(10 * time.Second)
		require.NoError(t, client.Set(ctx, key, "other-holder", time.Minute).Err())
		return nil
	})
	require.NoError(t, err)

	// the other worker's lock survives our release
	val, err := client.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "other-holder", val)
}
