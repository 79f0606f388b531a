package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const maxTrackedAttemptKeys = 10000

// attemptLimiter counts failed attempts per key inside a sliding window.
// At most maxKeys keys are tracked.
type attemptLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	maxKeys  int
}

func newAttemptLimiter() *attemptLimiter {
	return &attemptLimiter{
		attempts: make(map[string][]time.Time),
		maxKeys:  maxTrackedAttemptKeys,
	}
}

func (limiter *attemptLimiter) tooManyRecent(key string, now time.Time, limit int, window time.Duration) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	return len(limiter.pruneLocked(key, now, window)) >= limit
}

func (limiter *attemptLimiter) addFailure(key string, now time.Time, window time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	recent := limiter.pruneLocked(key, now, window)
	if recent == nil && len(limiter.attempts) >= limiter.maxKeys {
		limiter.sweepLocked(now, window)
		if len(limiter.attempts) >= limiter.maxKeys {
			limiter.evictOldestLocked()
		}
	}
	limiter.attempts[key] = append(recent, now)
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.attempts, key)
}

func (limiter *attemptLimiter) pruneLocked(key string, now time.Time, window time.Duration) []time.Time {
	values := limiter.attempts[key]
	if len(values) == 0 {
		return nil
	}

	threshold := now.Add(-window)
	pruned := values[:0]
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(limiter.attempts, key)
		return nil
	}
	limiter.attempts[key] = pruned
	return pruned
}

func (limiter *attemptLimiter) sweepLocked(now time.Time, window time.Duration) {
	for key := range limiter.attempts {
		limiter.pruneLocked(key, now, window)
	}
}

// evictOldestLocked drops the key whose latest failure is the oldest.
func (limiter *attemptLimiter) evictOldestLocked() {
	var (
		oldestKey  string
		oldestSeen time.Time
		found      bool
	)
	for key, values := range limiter.attempts {
		latest := values[len(values)-1]
		if !found || latest.Before(oldestSeen) {
			oldestKey, oldestSeen, found = key, latest, true
		}
	}
	if found {
		delete(limiter.attempts, oldestKey)
	}
}

// loginLimiterKey scopes failures to the client address and the account tried.
func loginLimiterKey(c *fiber.Ctx, phaID string) string {
	address := strings.TrimSpace(c.IP())
	if address == "" {
		address = "unknown"
	}
	return address + "|" + strings.ToLower(strings.TrimSpace(phaID))
}
