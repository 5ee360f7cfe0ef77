package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key (remote address, upstream host).
type Limiter struct {
	mu    sync.RWMutex
	m     map[string]*rate.Limiter
	rps   float64
	burst int
}

// New builds a keyed limiter. rps <= 0 disables limiting.
func New(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{m: make(map[string]*rate.Limiter), rps: rps, burst: burst}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.m[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.m[key]; ok {
		return lim
	}
	lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.m[key] = lim
	return lim
}

// Allow reports whether one request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.rps <= 0 {
		return true
	}
	return l.get(key).Allow()
}

// Wait blocks until a request for key may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if l == nil || l.rps <= 0 {
		return ctx.Err()
	}
	return l.get(key).Wait(ctx)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.m)
}
