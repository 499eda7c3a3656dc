// Package ratelimit provides fixed-window request limiting keyed by
// client IP.
package ratelimit

import (
	"net/http"
	"sync"
	"time"
)

// idleAfter is how long a client may stay in the table without a
// request before the sweeper drops it.
const idleAfter = 10 * time.Minute

// window counts requests since its anchor instant. A window older than
// a minute is spent; the next request replaces it.
type window struct {
	since time.Time
	count int
}

// Limiter enforces a per-client request budget over a one minute
// window anchored at the client's first request. One sweep goroutine
// keeps the client table bounded; Stop releases it.
type Limiter struct {
	perMinute  int
	sweepEvery time.Duration

	mu      sync.Mutex
	clients map[string]*window

	stop     chan struct{}
	stopOnce sync.Once
}

// Config sizes the limiter.
type Config struct {
	RequestsPerMinute int
	SweepInterval     time.Duration
}

// DefaultConfig allows a request per second on average.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		SweepInterval:     5 * time.Minute,
	}
}

// NewLimiter starts a limiter and its sweep goroutine.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}

	l := &Limiter{
		perMinute:  cfg.RequestsPerMinute,
		sweepEvery: cfg.SweepInterval,
		clients:    make(map[string]*window),
		stop:       make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow records one request from the client and reports whether it
// still fits the current window's budget.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.clients[clientIP]
	if !ok || now.Sub(w.since) > time.Minute {
		l.clients[clientIP] = &window{since: now, count: 1}
		return true
	}
	w.count++
	return w.count <= l.perMinute
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-idleAfter)
	for ip, w := range l.clients {
		if w.since.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// Middleware rejects over-budget requests with 429 before they reach
// next. A nil onLimit gets the default plain-text refusal with a
// Retry-After hint.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(extractIP(r)) {
				if onLimit != nil {
					onLimit(w, r)
					return
				}
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
