package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/usecase"
	"github.com/redis/go-redis/v9"
)

type RedisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCartStore refreshes the cart TTL on every save; zero keeps carts
// until the session is purged.
func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{rdb: rdb, ttl: ttl}
}

func cartKey(token string) string { return "cart:" + token }

func (s *RedisCartStore) Load(ctx context.Context, token string) (*domain.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &domain.Cart{}, nil
	}
	if err != nil {
		return nil, err
	}
	var c domain.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, &domain.DecodeError{What: "stored cart", Err: err}
	}
	return &c, nil
}

func (s *RedisCartStore) Save(ctx context.Context, token string, c *domain.Cart) error {
	if c == nil || c.IsEmpty() {
		return s.Delete(ctx, token)
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKey(token), b, s.ttl).Err()
}

func (s *RedisCartStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, cartKey(token)).Err()
}

var _ usecase.CartStore = (*RedisCartStore)(nil)
