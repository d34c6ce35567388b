package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorLimiter hands out one token bucket per visitor hash.
type visitorLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	idle     time.Duration
	visitors map[string]*limiterEntry
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newVisitorLimiter(perSecond float64, burst int, idle time.Duration) *visitorLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &visitorLimiter{
		limit:    limit,
		burst:    burst,
		idle:     idle,
		visitors: map[string]*limiterEntry{},
		now:      time.Now,
	}
}

// allow reports whether visitor may act now.
func (l *visitorLimiter) allow(visitor string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.visitors[visitor]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[visitor] = e
	}
	e.lastSeen = l.now()
	return e.limiter.AllowN(e.lastSeen, 1)
}

// prune forgets visitors idle for longer than the idle window.
func (l *visitorLimiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for v, e := range l.visitors {
		if l.now().Sub(e.lastSeen) > l.idle {
			delete(l.visitors, v)
		}
	}
}
