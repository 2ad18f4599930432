package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills and takes one token atomically.
// KEYS[1] = bucket key
// ARGV[1] = refill rate (tokens per second)
// ARGV[2] = capacity
// ARGV[3] = cost
// ARGV[4] = now (unix seconds, microsecond precision)
// ARGV[5] = key ttl in seconds
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local cost = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local state = redis.call("HMGET", key, "tokens", "last_refill")
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if not tokens or not last_refill then
    tokens = capacity
    last_refill = now
end

local elapsed = now - last_refill
if elapsed > 0 then
    tokens = math.min(capacity, tokens + elapsed * rate)
    last_refill = now
end

local allowed = 0
if tokens >= cost then
    tokens = tokens - cost
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_refill", last_refill)
redis.call("EXPIRE", key, ttl)

return {allowed, tostring(tokens)}
`)

// RedisLimiter shares token buckets between replicas.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	policy Policy
	now    func() time.Time
}

// NewRedisClient opens a client from a redis:// or rediss:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewRedisLimiter creates a RedisLimiter whose keys start with prefix.
func NewRedisLimiter(client redis.Scripter, prefix string, policy Policy) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		policy: policy,
		now:    time.Now,
	}
}

// Allow runs the bucket script for key.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := float64(r.now().UnixMicro()) / 1e6
	ttl := int64(math.Ceil(float64(r.policy.Burst)/r.policy.Rate)) + 1

	res, err := tokenBucketScript.Run(
		ctx,
		r.client,
		[]string{r.prefix + key},
		r.policy.Rate,
		r.policy.Burst,
		1,
		now,
		ttl,
	).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis limiter error: %w", err)
	}

	results, ok := res.([]interface{})
	if !ok || len(results) != 2 {
		return Decision{}, fmt.Errorf("invalid response from rate limit script")
	}

	allowed, _ := results[0].(int64)
	if allowed == 1 {
		return Decision{Allowed: true}, nil
	}

	// An unreadable balance is an error so the caller fails open.
	remaining, _ := results[1].(string)
	tokens, err := strconv.ParseFloat(remaining, 64)
	if err != nil {
		return Decision{}, fmt.Errorf("invalid token balance from rate limit script: %w", err)
	}
	wait := (1 - tokens) / r.policy.Rate
	return Decision{Allowed: false, RetryAfter: time.Duration(wait * float64(time.Second))}, nil
}
