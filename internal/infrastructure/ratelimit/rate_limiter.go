package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether the caller identified by key may act now. When it
// may not, the returned duration is the wait until the next allowance.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// TokenBucket represents a token bucket for rate limiting
type TokenBucket struct {
	tokens     int
	maxTokens  int
	refillRate int
	refillTime time.Duration
	lastRefill time.Time
	lastSeen   time.Time
	mutex      sync.Mutex
	now        func() time.Time
}

func newTokenBucket(maxTokens, refillRate int, refillTime time.Duration, now func() time.Time) *TokenBucket {
	t := now()
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		refillTime: refillTime,
		lastRefill: t,
		lastSeen:   t,
		now:        now,
	}
}

// Allow checks if an action is allowed and consumes a token if so
func (tb *TokenBucket) Allow() (bool, time.Duration) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := tb.now()
	tb.lastSeen = now

	intervals := int(now.Sub(tb.lastRefill) / tb.refillTime)
	if intervals > 0 {
		tb.tokens += intervals * tb.refillRate
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefill = tb.lastRefill.Add(time.Duration(intervals) * tb.refillTime)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true, 0
	}

	return false, tb.lastRefill.Add(tb.refillTime).Sub(now)
}

func (tb *TokenBucket) idleSince() time.Time {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()
	return tb.lastSeen
}

// MemoryLimiter keeps one token bucket per key in process. It allows limit
// actions per window and refills one token every window/limit.
type MemoryLimiter struct {
	buckets    map[string]*TokenBucket
	mutex      sync.RWMutex
	limit      int
	refillTime time.Duration
	now        func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit < 1 {
		limit = 1
	}
	refill := window / time.Duration(limit)
	if refill <= 0 {
		refill = time.Millisecond
	}
	return &MemoryLimiter{
		buckets:    make(map[string]*TokenBucket),
		limit:      limit,
		refillTime: refill,
		now:        time.Now,
	}
}

func (rl *MemoryLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	rl.mutex.RLock()
	bucket, exists := rl.buckets[key]
	rl.mutex.RUnlock()

	if !exists {
		rl.mutex.Lock()
		if bucket, exists = rl.buckets[key]; !exists {
			bucket = newTokenBucket(rl.limit, 1, rl.refillTime, rl.now)
			rl.buckets[key] = bucket
		}
		rl.mutex.Unlock()
	}

	ok, wait := bucket.Allow()
	return ok, wait, nil
}

// Cleanup removes buckets idle for longer than maxIdle
func (rl *MemoryLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, bucket := range rl.buckets {
		if now.Sub(bucket.idleSince()) > maxIdle {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine prunes idle buckets until ctx is done.
func (rl *MemoryLimiter) StartCleanupRoutine(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			}
		}
	}()
}

func (rl *MemoryLimiter) size() int {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()
	return len(rl.buckets)
}
