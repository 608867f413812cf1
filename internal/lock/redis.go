package lock

import (
	"WhatsGrapp/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockAcquire is returned when the lock is still held by someone else
// after the wait timeout.
var ErrLockAcquire = errors.New("failed to acquire distributed lock")

const (
	DefaultLockTTL  = 30 * time.Second
	DefaultLockWait = 15 * time.Second
	pollInterval    = 50 * time.Millisecond
)

var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

var refreshScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// Redis serializes work per key across service instances with SET NX PX.
// A held lock is refreshed every third of its TTL until released, so a slow
// message never loses the lock halfway.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	log    *slog.Logger
}

func NewRedis(client *redis.Client, prefix string, log *slog.Logger) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		ttl:    DefaultLockTTL,
		wait:   DefaultLockWait,
		log:    log.With(sl.Module("lock.redis")),
	}
}

// SetTiming overrides the lock expiry and the maximum time Lock waits.
func (r *Redis) SetTiming(ttl, wait time.Duration) {
	if ttl > 0 {
		r.ttl = ttl
	}
	if wait > 0 {
		r.wait = wait
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := r.prefix + "lock:" + key
	val := uuid.NewString()

	deadline := time.NewTimer(r.wait)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, lockKey, val, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return r.hold(lockKey, val), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrLockAcquire
		case <-ticker.C:
		}
	}
}

// hold keeps the lock alive and returns the release func. Release is idempotent.
func (r *Redis) hold(lockKey, val string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		interval := max(r.ttl/3, 10*time.Millisecond)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				kept, err := refreshScript.Run(ctx, r.client, []string{lockKey}, val, r.ttl.Milliseconds()).Int()
				cancel()
				if err != nil {
					r.log.Warn("refreshing lock", slog.String("key", lockKey), sl.Err(err))
					continue
				}
				if kept == 0 {
					r.log.Warn("lock lost before release", slog.String("key", lockKey))
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			// The caller's context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := unlockScript.Run(ctx, r.client, []string{lockKey}, val).Err(); err != nil {
				r.log.Warn("releasing lock", slog.String("key", lockKey), sl.Err(err))
			}
		})
	}
}
