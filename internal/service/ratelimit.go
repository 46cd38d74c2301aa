package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL         = 10 * time.Minute
	limiterCleanupInterval = 5 * time.Minute
)

// RateLimiter is a per-key token bucket limiter. It is safe for concurrent
// use. Keys idle for longer than limiterIdleTTL are dropped during calls to
// Allow, so no background goroutine is needed.
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*keyLimiter
	limit       rate.Limit
	burst       int
	now         func() time.Time
	lastCleanup time.Time
}

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows burst requests per key, refilled at perSecond
// tokens per second. A zero rate never refills.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:    make(map[string]*keyLimiter),
		limit:       rate.Limit(perSecond),
		burst:       burst,
		now:         time.Now,
		lastCleanup: time.Now(),
	}
}

// Allow reports whether key may proceed and consumes one token if so.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	kl, ok := rl.limiters[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = kl
	}
	kl.lastSeen = now

	if now.Sub(rl.lastCleanup) >= limiterCleanupInterval {
		rl.cleanupLocked(now)
	}
	return kl.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) cleanupLocked(now time.Time) {
	cutoff := now.Add(-limiterIdleTTL)
	for key, kl := range rl.limiters {
		if kl.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
	rl.lastCleanup = now
}

// Len returns the number of keys currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
