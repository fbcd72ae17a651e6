package cache

import (
	"context"
	"time"

	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still belongs to owner.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCheckoutLock is a SETNX lock with a TTL so a crashed checkout never
// blocks the session for longer than ttl. The value is the owner id.
type RedisCheckoutLock struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCheckoutLock(rdb *redis.Client, ttl time.Duration) *RedisCheckoutLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisCheckoutLock{rdb: rdb, ttl: ttl}
}

func lockKey(scope, key string) string { return "lock:" + scope + ":" + key }

func (s *RedisCheckoutLock) TTL() time.Duration { return s.ttl }

func (s *RedisCheckoutLock) TryLock(ctx context.Context, scope, key, owner string) (bool, error) {
	return s.rdb.SetNX(ctx, lockKey(scope, key), owner, s.ttl).Result()
}

// Unlock is a no-op when the lock expired and was taken by someone else.
func (s *RedisCheckoutLock) Unlock(ctx context.Context, scope, key, owner string) error {
	return releaseScript.Run(ctx, s.rdb, []string{lockKey(scope, key)}, owner).Err()
}

var _ usecase.CheckoutLock = (*RedisCheckoutLock)(nil)
