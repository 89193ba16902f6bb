package credits

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const balanceCacheKeyPrefix = "credits:balance:"

// BalanceCache is a write-through cache in front of the ledger's balance reads.
// Set must ignore a version older than or equal to the one already cached.
type BalanceCache interface {
	Get(ctx context.Context, subjectID string) (int64, bool, error)
	Set(ctx context.Context, subjectID string, credits, version int64) error
	Delete(ctx context.Context, subjectID string) error
}

// setIfNewer stores "credits|version" unless the cached entry already carries
// the same or a higher version. Returns 1 when the value was written.
var setIfNewer = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur then
	local sep = string.find(cur, "|", 1, true)
	local version = sep and tonumber(string.sub(cur, sep + 1))
	if version and version >= tonumber(ARGV[2]) then
		return 0
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1] .. "|" .. ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[1] .. "|" .. ARGV[2])
end
return 1
`)

// RedisBalanceCache stores balances as "credits|version" strings with a TTL.
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBalanceCache(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return &RedisBalanceCache{client: client, ttl: ttl}
}

func (c *RedisBalanceCache) Get(ctx context.Context, subjectID string) (int64, bool, error) {
	raw, err := c.client.Get(ctx, balanceCacheKey(subjectID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	credits, _, err := parseCacheEntry(raw)
	if err != nil {
		return 0, false, err
	}
	return credits, true, nil
}

func (c *RedisBalanceCache) Set(ctx context.Context, subjectID string, credits, version int64) error {
	keys := []string{balanceCacheKey(subjectID)}
	return setIfNewer.Run(ctx, c.client, keys, credits, version, c.ttl.Milliseconds()).Err()
}

func (c *RedisBalanceCache) Delete(ctx context.Context, subjectID string) error {
	return c.client.Del(ctx, balanceCacheKey(subjectID)).Err()
}

func balanceCacheKey(subjectID string) string {
	return balanceCacheKeyPrefix + subjectID
}

func parseCacheEntry(raw string) (credits, version int64, err error) {
	c, v, ok := strings.Cut(raw, "|")
	if !ok {
		return 0, 0, fmt.Errorf("malformed balance cache entry %q", raw)
	}
	if credits, err = strconv.ParseInt(c, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("malformed balance cache entry %q: %w", raw, err)
	}
	if version, err = strconv.ParseInt(v, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("malformed balance cache entry %q: %w", raw, err)
	}
	return credits, version, nil
}
