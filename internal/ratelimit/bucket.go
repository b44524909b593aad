// Package ratelimit throttles render requests per client with token
// buckets.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket refills at a fixed rate up to its capacity.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a full bucket.
func NewTokenBucket(capacity int, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now,
	}
}

// TakeAt consumes one token. When none is available it returns false and
// how long until one will be.
func (b *TokenBucket) TakeAt(now time.Time) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if b.refillRate <= 0 {
		return false, time.Duration(1<<63 - 1)
	}
	wait := (1 - b.tokens) / b.refillRate
	return false, time.Duration(wait * float64(time.Second))
}

// TokensAt returns the tokens available at now.
func (b *TokenBucket) TokensAt(now time.Time) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)
	return b.tokens
}

// Must be called with mu held.
func (b *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed.Seconds() * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
}
