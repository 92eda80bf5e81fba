package businessflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrKeyLockTimeout signals that a pricing-key lock could not be acquired
// within the bounded wait. The catalog flow surfaces it as
// ErrConcurrentRateConflict.
var ErrKeyLockTimeout = errors.New("pricing key lock wait timed out")

// KeyLocker serializes administrative writers per pricing key. Acquire
// returns a release func on success; it must fail within roughly wait rather
// than queue indefinitely so callers can fail fast and retry.
type KeyLocker interface {
	Acquire(ctx context.Context, key string, wait time.Duration) (release func(), err error)
}

// LocalKeyLocker serializes writers within one process using a semaphore per
// pricing key. Keys are independent; there is no cross-key blocking.
type LocalKeyLocker struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

// NewLocalKeyLocker creates an in-process key locker
func NewLocalKeyLocker() *LocalKeyLocker {
	return &LocalKeyLocker{sems: make(map[string]chan struct{})}
}

func (l *LocalKeyLocker) sem(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.sems[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.sems[key] = sem
	}
	return sem
}

// Acquire takes the per-key semaphore, waiting at most wait
func (l *LocalKeyLocker) Acquire(ctx context.Context, key string, wait time.Duration) (func(), error) {
	sem := l.sem(key)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrKeyLockTimeout
	}
}

// RedisKeyLocker serializes writers across processes with a Redis SetNX lock
// per pricing key. The lock value is a random token so only the holder can
// release it.
type RedisKeyLocker struct {
	Client       *redis.Client
	TTL          time.Duration
	RetryBackoff time.Duration
	Prefix       string
}

// NewRedisKeyLocker creates a Redis-backed key locker
func NewRedisKeyLocker(client *redis.Client) *RedisKeyLocker {
	return &RedisKeyLocker{
		Client:       client,
		TTL:          30 * time.Second,
		RetryBackoff: 50 * time.Millisecond,
		Prefix:       "freight:ratelock:",
	}
}

// Acquire polls SetNX until the lock is held or wait elapses
func (l *RedisKeyLocker) Acquire(ctx context.Context, key string, wait time.Duration) (func(), error) {
	if l.Client == nil {
		return nil, errors.New("redis key locker: client not configured")
	}

	ttl := l.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	retry := l.RetryBackoff
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}

	lockKey := l.Prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.Client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(context.Background(), lockKey, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrKeyLockTimeout
		}

		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *RedisKeyLocker) release(ctx context.Context, lockKey, token string) {
	const script = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`
	if err := l.Client.Eval(ctx, script, []string{lockKey}, token).Err(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unknown command") {
			_ = l.Client.Del(ctx, lockKey).Err()
		}
	}
}
