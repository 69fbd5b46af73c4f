package lock

import (
	"context"
	"time"

	"school-assist-be/pkg/dialog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if this holder still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGate serialises turns across API instances sharing one redis
type RedisGate struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	poll   time.Duration
	logger dialog.Logger
}

// NewRedisGate builds a gate whose locks expire after ttl if a holder dies mid-turn
func NewRedisGate(rdb *redis.Client, ttl time.Duration, logger dialog.Logger) *RedisGate {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if logger == nil {
		logger = dialog.NopLogger()
	}
	return &RedisGate{
		rdb:    rdb,
		prefix: "session-lock:",
		ttl:    ttl,
		poll:   50 * time.Millisecond,
		logger: logger,
	}
}

func (g *RedisGate) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := g.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(g.poll)
	defer ticker.Stop()

	for {
		ok, err := g.rdb.SetNX(ctx, lockKey, token, g.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// Release on a fresh context so a cancelled turn still frees the key
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, g.rdb, []string{lockKey}, token).Err(); err != nil {
			// The key still expires after ttl
			g.logger.Warn("LOCK", "Failed to release session lock", map[string]interface{}{
				"session_id": key,
				"error":      err.Error(),
			})
		}
	}, nil
}
