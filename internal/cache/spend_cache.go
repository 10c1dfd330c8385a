// Package cache holds Redis-backed read caches.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const spendKeyPrefix = "meelike:spend:"

// setIfGeneration stores ARGV[2] under KEYS[2] only while the generation at
// KEYS[1] still equals ARGV[1]. ARGV[3] is the TTL in milliseconds, 0 for none.
const setIfGeneration = `
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`

// redisCmdable is the subset of the Redis client SpendCache uses.
type redisCmdable interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SpendCache caches customer cumulative spend as decimal strings with a TTL.
//
// Every customer also has a generation counter that InvalidateSpend bumps.
// A fill carries the generation seen before the database read and is dropped
// if a bill landed in between, so a stale sum never outlives an invalidation.
type SpendCache struct {
	client redisCmdable
	ttl    time.Duration
}

// NewSpendCache creates a SpendCache on a Redis client.
func NewSpendCache(client *redis.Client, ttl time.Duration) *SpendCache {
	return &SpendCache{client: client, ttl: ttl}
}

// NewSpendCacheWithClient creates a SpendCache with a custom client.
// This is primarily used for testing.
func NewSpendCacheWithClient(client redisCmdable, ttl time.Duration) *SpendCache {
	return &SpendCache{client: client, ttl: ttl}
}

// GetSpend returns the cached spend and the customer's current generation.
// ok is false on a miss; generation is still valid for a later SetSpend.
func (c *SpendCache) GetSpend(ctx context.Context, customerID string) (decimal.Decimal, int64, bool, error) {
	vals, err := c.client.MGet(ctx, spendKey(customerID), generationKey(customerID)).Result()
	if err != nil {
		return decimal.Zero, 0, false, fmt.Errorf("get cached spend %s: %w", customerID, err)
	}
	if len(vals) != 2 {
		return decimal.Zero, 0, false, fmt.Errorf("get cached spend %s: unexpected reply length %d", customerID, len(vals))
	}

	var generation int64
	if raw, ok := vals[1].(string); ok {
		generation, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return decimal.Zero, 0, false, fmt.Errorf("parse spend generation %s: %w", customerID, err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return decimal.Zero, generation, false, nil
	}
	spend, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, 0, false, fmt.Errorf("parse cached spend %s: %w", customerID, err)
	}
	return spend, generation, true, nil
}

// SetSpend stores the spend if no invalidation happened since generation was
// read. It reports whether the value was stored.
func (c *SpendCache) SetSpend(ctx context.Context, customerID string, generation int64, spend decimal.Decimal) (bool, error) {
	stored, err := c.client.Eval(ctx, setIfGeneration,
		[]string{generationKey(customerID), spendKey(customerID)},
		strconv.FormatInt(generation, 10), spend.String(), c.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("set cached spend %s: %w", customerID, err)
	}
	return stored == 1, nil
}

// InvalidateSpend bumps the customer's generation and drops the cached spend.
// The bump comes first so an in-flight fill cannot land after the delete.
func (c *SpendCache) InvalidateSpend(ctx context.Context, customerID string) error {
	if err := c.client.Incr(ctx, generationKey(customerID)).Err(); err != nil {
		return fmt.Errorf("bump spend generation %s: %w", customerID, err)
	}
	if err := c.client.Del(ctx, spendKey(customerID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached spend %s: %w", customerID, err)
	}
	return nil
}

// Keys share a hash tag so the script touches a single cluster slot.
func spendKey(customerID string) string {
	return spendKeyPrefix + "{" + customerID + "}"
}

func generationKey(customerID string) string {
	return spendKeyPrefix + "{" + customerID + "}:gen"
}
