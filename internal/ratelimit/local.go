package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxLocalKeys = 10000

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per key, used when no Redis is configured.
type LocalLimiter struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewLocalLimiter allows limit attempts per window for each key.
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	limit, window = normalize(limit, window)
	return &LocalLimiter{
		entries: make(map[string]*localEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow never fails.
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok {
		if len(l.entries) >= maxLocalKeys {
			l.prune(now)
		}
		entry = &localEntry{limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.limit)), l.limit)}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return Decision{Allowed: false, Limit: l.limit, Remaining: 0, RetryAfter: delay}, nil
	}
	remaining := int(entry.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Limit: l.limit, Remaining: remaining}, nil
}

func (l *LocalLimiter) prune(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.lastSeen) > l.window {
			delete(l.entries, key)
		}
	}
}
