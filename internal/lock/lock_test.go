package lock

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SerializesPerKey(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "+6511112222")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Zero(t, l.size(), "keys are dropped after release")
}

func TestLocal_IndependentKeys(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
	unlockB()
}

func TestLocal_ContextCancel(t *testing.T) {
	l := NewLocal()
	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Zero(t, l.size())
}

func newRedisLocker(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client, "whatsgrapp:", slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestRedis_LockUnlock(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "+6511112222")
	require.NoError(t, err)
	assert.True(t, mr.Exists("whatsgrapp:lock:+6511112222"))

	unlock()
	assert.False(t, mr.Exists("whatsgrapp:lock:+6511112222"))
}

func TestRedis_WaitTimeout(t *testing.T) {
	l, _ := newRedisLocker(t)
	l.SetTiming(time.Minute, 100*time.Millisecond)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(ctx, "a")
	assert.ErrorIs(t, err, ErrLockAcquire)
}

func TestRedis_UnlockKeepsForeignLock(t *testing.T) {
	l, mr := newRedisLocker(t)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "a")
	require.NoError(t, err)

	// Lock expired and was taken by another instance
	require.NoError(t, mr.Set("whatsgrapp:lock:a", "other-owner"))
	unlock()

	value, err := mr.Get("whatsgrapp:lock:a")
	require.NoError(t, err)
	assert.Equal(t, "other-owner", value)
}

func TestRedis_WaitsForRelease(t *testing.T) {
	l, _ := newRedisLocker(t)
	l.SetTiming(time.Minute, 2*time.Second)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	go func() {
		time.Sleep(100 * time.Millisecond)
		unlock()
	}()

	unlock2, err := l.Lock(ctx, "a")
	require.NoError(t, err)
	unlock2()
}

func TestRedis_RefreshesHeldLock(t *testing.T) {
	l, mr := newRedisLocker(t)
	l.SetTiming(300*time.Millisecond, time.Second)
	key := "whatsgrapp:lock:+6511112222"

	unlock, err := l.Lock(context.Background(), "+6511112222")
	require.NoError(t, err)

	// Most of the TTL has passed while the message is still being processed
	mr.FastForward(250 * time.Millisecond)
	require.True(t, mr.Exists(key))
	require.Eventually(t, func() bool {
		return mr.TTL(key) > 200*time.Millisecond
	}, 2*time.Second, 10*time.Millisecond, "held lock is extended")

	unlock()
	unlock()
	assert.False(t, mr.Exists(key))
}

func TestRedis_StopsRefreshAfterRelease(t *testing.T) {
	l, mr := newRedisLocker(t)
	l.SetTiming(150*time.Millisecond, time.Second)
	key := "whatsgrapp:lock:a"

	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlock()

	// Another instance takes the key; the released holder must not touch it
	require.NoError(t, mr.Set(key, "other-owner"))
	mr.SetTTL(key, time.Second)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, time.Second, mr.TTL(key))
}
