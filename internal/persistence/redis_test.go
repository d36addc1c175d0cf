package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStorage(client, ttl), mr
}

func TestRedisStorage_GetMissing(t *testing.T) {
	s, _ := setupTestRedis(t, time.Hour)

	_, ok, err := s.Get(context.Background(), "storefront:s1:cart")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStorage_SetThenGet(t *testing.T) {
	s, mr := setupTestRedis(t, 24*time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "storefront:s1:cart", `[{"id":"p1","quantity":1}]`))

	v, ok, err := s.Get(ctx, "storefront:s1:cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"p1","quantity":1}]`, v)

	assert.True(t, mr.Exists("storefront:s1:cart"))
	assert.Equal(t, 24*time.Hour, mr.TTL("storefront:s1:cart"))
}

func TestRedisStorage_ZeroTTLNeverExpires(t *testing.T) {
	s, mr := setupTestRedis(t, 0)

	require.NoError(t, s.Set(context.Background(), "k", "v"))

	assert.Equal(t, time.Duration(0), mr.TTL("k"))
}

func TestRedisStorage_SlotExpires(t *testing.T) {
	s, mr := setupTestRedis(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStorage_ConnectionError(t *testing.T) {
	s, mr := setupTestRedis(t, time.Hour)
	mr.Close()

	_, _, err := s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Set(context.Background(), "k", "v"))
	assert.Error(t, s.Ping(context.Background()))
}

func TestRedisStorage_BridgeRoundTrip(t *testing.T) {
	s, _ := setupTestRedis(t, time.Hour)
	ctx := context.Background()
	b := cartBridge(s)

	items := []domain.LineItem{{ID: "p1", Name: "Silk", Price: "₹12,500", Image: "i", Quantity: 2}}
	b.Save(ctx, items)

	assert.Equal(t, items, b.Load(ctx))
}

func TestRedisStorage_BridgeUnavailableKeepsWorking(t *testing.T) {
	s, mr := setupTestRedis(t, time.Hour)
	mr.Close()
	b := cartBridge(s)

	assert.NotPanics(t, func() { b.Save(context.Background(), []domain.LineItem{{ID: "p1", Quantity: 1}}) })
	assert.Empty(t, b.Load(context.Background()))
}
