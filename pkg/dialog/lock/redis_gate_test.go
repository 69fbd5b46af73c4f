package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRedisGate_SerialisesAcrossInstances(t *testing.T) {
	_, rdb := newTestRedis(t)
	// Two gates on one redis behave like two API instances
	gates := []*RedisGate{NewRedisGate(rdb, time.Minute, nil), NewRedisGate(rdb, time.Minute, nil)}
	for _, g := range gates {
		g.poll = 5 * time.Millisecond
	}

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(g *RedisGate) {
			defer wg.Done()
			release, err := g.Acquire(context.Background(), "CA123")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&inFlight, 1)
			for {
				m := atomic.LoadInt32(&maxInFlight)
				if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}(gates[i%2])
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight)
}

func TestRedisGate_AcquireHonoursContext(t *testing.T) {
	_, rdb := newTestRedis(t)
	g := NewRedisGate(rdb, time.Minute, nil)
	g.poll = 5 * time.Millisecond

	release, err := g.Acquire(context.Background(), "s1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = g.Acquire(ctx, "s1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRedisGate_ReleaseOnlyDeletesOwnLock(t *testing.T) {
	mr, rdb := newTestRedis(t)
	g := NewRedisGate(rdb, time.Minute, nil)

	release, err := g.Acquire(context.Background(), "s1")
	require.NoError(t, err)

	// The lock expired and another holder took the key
	mr.Set("session-lock:s1", "other-holder")
	release()

	got, err := mr.Get("session-lock:s1")
	require.NoError(t, err)
	assert.Equal(t, "other-holder", got)
}

func TestRedisGate_ReleaseFreesKeyAndLockExpires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	g := NewRedisGate(rdb, 30*time.Second, nil)

	release, err := g.Acquire(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL("session-lock:s1"))

	release()
	assert.False(t, mr.Exists("session-lock:s1"))

	_, err = g.Acquire(context.Background(), "s2")
	require.NoError(t, err)
	mr.FastForward(31 * time.Second)
	assert.False(t, mr.Exists("session-lock:s2"))
}
