package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalKeyLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("SecondAcquireTimesOut", func(t *testing.T) {
		locker := NewLocalKeyLocker()

		release, err := locker.Acquire(ctx, "LOC:BOG", time.Second)
		require.NoError(t, err)

		_, err = locker.Acquire(ctx, "LOC:BOG", 20*time.Millisecond)
		assert.ErrorIs(t, err, ErrKeyLockTimeout)

		release()
		release, err = locker.Acquire(ctx, "LOC:BOG", time.Second)
		require.NoError(t, err)
		release()
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		locker := NewLocalKeyLocker()

		releaseA, err := locker.Acquire(ctx, "LOC:BOG", time.Second)
		require.NoError(t, err)
		defer releaseA()

		releaseB, err := locker.Acquire(ctx, "LOC:MDE", 20*time.Millisecond)
		require.NoError(t, err)
		releaseB()
	})

	t.Run("ContextCancellationUnblocks", func(t *testing.T) {
		locker := NewLocalKeyLocker()

		release, err := locker.Acquire(ctx, "LOC:BOG", time.Second)
		require.NoError(t, err)
		defer release()

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = locker.Acquire(cancelCtx, "LOC:BOG", time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRedisKeyLocker(t *testing.T) {
	ctx := context.Background()

	newLocker := func(t *testing.T) (*RedisKeyLocker, *miniredis.Miniredis) {
		t.Helper()
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		locker := NewRedisKeyLocker(client)
		locker.RetryBackoff = 5 * time.Millisecond
		return locker, mr
	}

	t.Run("MutualExclusionPerKey", func(t *testing.T) {
		locker, _ := newLocker(t)

		release, err := locker.Acquire(ctx, "LOC:BOG", time.Second)
		require.NoError(t, err)

		_, err = locker.Acquire(ctx, "LOC:BOG", 30*time.Millisecond)
		assert.ErrorIs(t, err, ErrKeyLockTimeout)

		release()
		release, err = locker.Acquire(ctx, "LOC:BOG", time.Second)
		require.NoError(t, err)
		release()
	})

	t.Run("ReleaseOnlyRemovesOwnToken", func(t *testing.T) {
		locker, mr := newLocker(t)

		release, err := locker.Acquire(ctx, "LOC:BOG", time.Second)
		require.NoError(t, err)

		// a competing holder overwrote the lock after expiry
		mr.FastForward(time.Minute)
		require.NoError(t, mr.Set("freight:ratelock:LOC:BOG", "someone-else"))

		release()
		value, err := mr.Get("freight:ratelock:LOC:BOG")
		require.NoError(t, err)
		assert.Equal(t, "someone-else", value)
	})

	t.Run("WaitsForReleaseWithinBound", func(t *testing.T) {
		locker, _ := newLocker(t)

		release, err := locker.Acquire(ctx, "LOC:BOG", time.Second)
		require.NoError(t, err)

		go func() {
			time.Sleep(30 * time.Millisecond)
			release()
		}()

		release2, err := locker.Acquire(ctx, "LOC:BOG", time.Second)
		require.NoError(t, err)
		release2()
	})
}
