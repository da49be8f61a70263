// Package cooldown rate-limits command invocations with per-key sliding
// windows, keyed by whatever scope the caller chooses (guild, user).
package cooldown

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clock   Clock
	hits    map[string][]time.Time
}

// New builds a limiter that allows limit uses per key within window.
func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = 5 * time.Second
	}
	return &Limiter{
		window: window,
		limit:  limit,
		clock:  realClock{},
		hits:   make(map[string][]time.Time),
	}
}

func (l *Limiter) WithClock(clock Clock) {
	l.clock = clock
}

// Allow records an attempt for the key and reports whether it is within the
// limit. When rejected it also returns how long until the next slot opens.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	cutoff := now.Add(-l.window)

	hits := l.hits[key]
	idx := 0
	for _, hit := range hits {
		if hit.After(cutoff) {
			break
		}
		idx++
	}
	hits = hits[idx:]

	if len(hits) >= l.limit {
		retry := hits[0].Add(l.window).Sub(now)
		l.hits[key] = hits
		return false, retry
	}

	l.hits[key] = append(hits, now)
	return true, 0
}
