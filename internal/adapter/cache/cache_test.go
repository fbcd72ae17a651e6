package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestSessionStore_RoundTripWithExpiryTTL(t *testing.T) {
	mr, rdb := newRedis(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewRedisSessionStore(rdb)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	miss, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, miss)

	sess := domain.Session{Token: "tok", TableID: "T7", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, time.Hour, mr.TTL("session:tok"))

	got, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "T7", got.TableID)
	assert.True(t, got.ExpiresAt.Equal(sess.ExpiresAt))

	require.NoError(t, store.Delete(ctx, "tok"))
	assert.False(t, mr.Exists("session:tok"))
}

func TestSessionStore_SavingExpiredSessionDeletes(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewRedisSessionStore(rdb)
	ctx := context.Background()

	require.NoError(t, mr.Set("session:old", "{}"))
	require.NoError(t, store.Save(ctx, domain.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}))
	assert.False(t, mr.Exists("session:old"))
}

func TestCartStore(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewRedisCartStore(rdb, 2*time.Hour)
	ctx := context.Background()

	empty, err := store.Load(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	c := &domain.Cart{}
	require.NoError(t, c.AddItem(domain.CartLine{MenuID: 1, Name: "Latte", UnitPrice: decimal.NewFromInt(30000), Quantity: 2}))
	require.NoError(t, store.Save(ctx, "tok", c))
	assert.Equal(t, 2*time.Hour, mr.TTL("cart:tok"))

	got, err := store.Load(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Subtotal().Equal(decimal.NewFromInt(60000)))

	// saving an empty cart clears the key
	require.NoError(t, store.Save(ctx, "tok", &domain.Cart{}))
	assert.False(t, mr.Exists("cart:tok"))
}

func TestCartStore_CorruptValue(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewRedisCartStore(rdb, 0)
	require.NoError(t, mr.Set("cart:tok", "not-json"))

	_, err := store.Load(context.Background(), "tok")
	var de *domain.DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestCheckoutLock(t *testing.T) {
	mr, rdb := newRedis(t)
	lock := NewRedisCheckoutLock(rdb, 30*time.Second)
	ctx := context.Background()
	assert.Equal(t, 30*time.Second, lock.TTL())

	ok, err := lock.TryLock(ctx, "checkout", "tok", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	v, _ := mr.Get("lock:checkout:tok")
	assert.Equal(t, "a", v)

	ok, err = lock.TryLock(ctx, "checkout", "tok", "b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Unlock(ctx, "checkout", "tok", "a"))
	ok, err = lock.TryLock(ctx, "checkout", "tok", "c")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(31 * time.Second)
	ok, err = lock.TryLock(ctx, "checkout", "tok", "d")
	require.NoError(t, err)
	assert.True(t, ok, "lock expires after ttl")
}

func TestCheckoutLock_StaleOwnerCannotRelease(t *testing.T) {
	mr, rdb := newRedis(t)
	lock := NewRedisCheckoutLock(rdb, 30*time.Second)
	ctx := context.Background()

	ok, err := lock.TryLock(ctx, "checkout", "tok", "a")
	require.NoError(t, err)
	require.True(t, ok)

	// a's lock lapses and b takes over while a is still running
	mr.FastForward(31 * time.Second)
	ok, err = lock.TryLock(ctx, "checkout", "tok", "b")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, lock.Unlock(ctx, "checkout", "tok", "a"))
	ok, err = lock.TryLock(ctx, "checkout", "tok", "c")
	require.NoError(t, err)
	assert.False(t, ok, "b still holds the lock")

	require.NoError(t, lock.Unlock(ctx, "checkout", "tok", "b"))
	assert.False(t, mr.Exists("lock:checkout:tok"))
}

func TestStatusCache(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewRedisStatusCache(rdb, 10*time.Minute)
	ctx := context.Background()

	_, ok, err := c.GetStatus(ctx, "o-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetStatus(ctx, "o-1", "Paid"))
	assert.Equal(t, 10*time.Minute, mr.TTL("order:status:o-1"))

	st, ok, err := c.GetStatus(ctx, "o-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Paid", st)
}
