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

// RedisSessionStore keeps a session until its own expiry.
type RedisSessionStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, now: time.Now}
}

func sessionKey(token string) string { return "session:" + token }

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, &domain.DecodeError{What: "stored session", Err: err}
	}
	return &sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess domain.Session) error {
	ttl := sess.TTL(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, sess.Token)
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKey(sess.Token), b, ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}

var _ usecase.SessionStore = (*RedisSessionStore)(nil)
