package ratelimit

import (
	"sync"
	"time"

	"github.com/dmmcquay/hexreport/internal/config"
	"github.com/dmmcquay/hexreport/internal/logging"
)

const sweepInterval = time.Minute

// Limiter keeps one bucket per client. A nil *Limiter allows everything.
type Limiter struct {
	logger    logging.ContextLogger
	burst     int
	perSecond float64
	idle      time.Duration
	now       func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// NewLimiter returns nil when cfg is nil or disabled.
func NewLimiter(cfg *config.RateLimitConfig, logger logging.ContextLogger) *Limiter {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &Limiter{
		logger:    logger,
		burst:     cfg.BurstSize,
		perSecond: float64(cfg.RequestsPerMin) / 60.0,
		idle:      time.Duration(cfg.IdleMinutes) * time.Minute,
		now:       time.Now,
		clients:   make(map[string]*client),
		lastSweep: time.Now(),
	}
}

// Allow reports whether clientID may render now. When it may not, the
// returned duration says when to retry.
func (l *Limiter) Allow(clientID string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}
	c, ok := l.clients[clientID]
	if !ok {
		c = &client{bucket: NewTokenBucket(l.burst, l.perSecond, now)}
		l.clients[clientID] = c
	}
	c.lastSeen = now
	l.mu.Unlock()

	allowed, wait := c.bucket.TakeAt(now)
	if !allowed {
		l.logger.Warn("Rate limit exceeded", "client", clientID, "retry_after", wait)
	}
	return allowed, wait
}

// Clients returns the number of tracked clients.
func (l *Limiter) Clients() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Must be called with mu held.
func (l *Limiter) sweep(now time.Time) {
	for id, c := range l.clients {
		if now.Sub(c.lastSeen) > l.idle {
			delete(l.clients, id)
			l.logger.Debug("Dropped idle rate limit client", "client", id)
		}
	}
	l.lastSweep = now
}
