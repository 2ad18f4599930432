// Package ratelimit provides token bucket limiters keyed by caller.
//
// MemoryLimiter keeps buckets in process; RedisLimiter shares them between
// replicas through an atomic Lua script.
package ratelimit

import (
	"context"
	"time"
)

// Policy describes a token bucket.
type Policy struct {
	// Rate is the refill rate in tokens per second.
	Rate float64
	// Burst is the bucket capacity.
	Burst int
}

// PerHour builds a policy that allows n requests per hour with a burst of n.
func PerHour(n int) Policy {
	return Policy{Rate: float64(n) / 3600, Burst: n}
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed bool
	// RetryAfter is how long until a token is available. Zero when Allowed.
	RetryAfter time.Duration
}

// Limiter takes one token from the bucket identified by key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
