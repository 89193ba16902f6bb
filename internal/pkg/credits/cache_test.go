package credits_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/CreditFox/internal/pkg/credits"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "cache:6379" // docker-compose service
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 2})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Skipping test that requires Redis at %s: %v", addr, err)
	}
	t.Cleanup(func() {
		if err := client.FlushDB(context.Background()).Err(); err != nil {
			t.Logf("Failed to flush Redis DB: %v", err)
		}
		if err := client.Close(); err != nil {
			t.Logf("Failed to close Redis client: %v", err)
		}
	})
	return client
}

func TestRedisBalanceCache(t *testing.T) {
	client := newTestRedis(t)
	cache := credits.NewRedisBalanceCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "user_1", 42, 1))
	v, ok, err := cache.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	ttl, err := client.TTL(ctx, "credits:balance:user_1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, cache.Delete(ctx, "user_1"))
	_, ok, err = cache.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisBalanceCache_KeepsNewestVersion(t *testing.T) {
	client := newTestRedis(t)
	cache := credits.NewRedisBalanceCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user_1", 150, 2))
	// A reader that loaded the row before the award finishes late.
	require.NoError(t, cache.Set(ctx, "user_1", 100, 1))
	require.NoError(t, cache.Set(ctx, "user_1", 90, 2))

	v, ok, err := cache.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(150), v)

	require.NoError(t, cache.Set(ctx, "user_1", 10, 3))
	v, _, err = cache.Get(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)
}

func TestRedisBalanceCache_MalformedEntry(t *testing.T) {
	client := newTestRedis(t)
	cache := credits.NewRedisBalanceCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "credits:balance:user_1", "42", time.Minute).Err())
	_, ok, err := cache.Get(ctx, "user_1")
	assert.Error(t, err)
	assert.False(t, ok)
}
