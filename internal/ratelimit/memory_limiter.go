package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 5 * time.Minute
	staleAfter      = time.Hour
)

// MemoryLimiter holds per-key rate limiters with periodic cleanup of idle keys.
type MemoryLimiter struct {
	limiters sync.Map // map[string]*limiterEntry
	policy   Policy
	cancel   context.CancelFunc
	done     chan struct{}
}

// limiterEntry holds a rate limiter and last access time for cleanup.
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// NewMemoryLimiter creates a MemoryLimiter and starts its cleanup goroutine.
// Call Close to stop it.
func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	ctx, cancel := context.WithCancel(context.Background())
	m := &MemoryLimiter{
		policy: policy,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go m.cleanupStale(ctx, cleanupInterval)
	return m
}

// Allow never returns an error.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	limiter := m.getLimiter(key)

	reservation := limiter.Reserve()
	delay := reservation.Delay()
	if delay == 0 {
		return Decision{Allowed: true}, nil
	}
	reservation.Cancel()
	return Decision{Allowed: false, RetryAfter: delay}, nil
}

// Close stops the cleanup goroutine.
func (m *MemoryLimiter) Close() {
	m.cancel()
	<-m.done
}

func (m *MemoryLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()
	if val, ok := m.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &limiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(m.policy.Rate), m.policy.Burst),
		lastAccess: now,
	}
	actual, _ := m.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

// cleanupStale removes limiters that haven't been accessed recently.
func (m *MemoryLimiter) cleanupStale(ctx context.Context, interval time.Duration) {
	defer close(m.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.evictOlderThan(time.Now().Add(-staleAfter))
		}
	}
}

func (m *MemoryLimiter) evictOlderThan(threshold time.Time) {
	m.limiters.Range(func(key, value interface{}) bool {
		entry := value.(*limiterEntry)
		entry.mu.Lock()
		stale := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if stale {
			m.limiters.Delete(key)
		}
		return true
	})
}
