// Package ratelimiter bounds how often a client may hit a route.
package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether one more hit for key fits in the current window.
// retryAfter is the time until the window resets.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// window is the counter state for one key.
type window struct {
	count     int
	lastReset time.Time
}

// MemoryLimiter is a fixed window limiter kept in process memory. It is the
// fallback when Redis is not configured and only holds for a single replica.
type MemoryLimiter struct {
	limit    int           // hits allowed per interval
	interval time.Duration // window length
	now      func() time.Time

	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter returns a limiter allowing limit hits per interval and key.
func NewMemoryLimiter(limit int, interval time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:     limit,
		interval:  interval,
		now:       time.Now,
		windows:   make(map[string]*window),
		lastSweep: time.Now(),
	}
}

// Allow implements Limiter. It never blocks and never fails.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	// reset the count once the interval has passed
	if !ok || now.Sub(w.lastReset) >= l.interval {
		w = &window{lastReset: now}
		l.windows[key] = w
	}

	w.count++
	if w.count > l.limit {
		return false, l.interval - now.Sub(w.lastReset), nil
	}
	return true, 0, nil
}

// sweep drops expired windows at most once per interval.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.interval {
		return
	}
	for k, w := range l.windows {
		if now.Sub(w.lastReset) >= l.interval {
			delete(l.windows, k)
		}
	}
	l.lastSweep = now
}
