package cache

import (
	"context"
	"errors"
	"time"

	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisStatusCache keeps the last known payment status per order for the
// staff endpoints.
type RedisStatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStatusCache(rdb *redis.Client, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{rdb: rdb, ttl: ttl}
}

func statusKey(orderUUID string) string { return "order:status:" + orderUUID }

func (r *RedisStatusCache) SetStatus(ctx context.Context, orderUUID string, status string) error {
	return r.rdb.Set(ctx, statusKey(orderUUID), status, r.ttl).Err()
}

func (r *RedisStatusCache) GetStatus(ctx context.Context, orderUUID string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, statusKey(orderUUID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.OrderStatusCache = (*RedisStatusCache)(nil)
