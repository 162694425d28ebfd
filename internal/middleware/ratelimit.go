package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter bookkeeping.
const (
	limiterSweepInterval = time.Minute
	limiterIdleTTL       = 10 * time.Minute
)

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles POST requests per client IP with a token bucket.
// Other methods pass through untouched so forms can still be displayed.
type RateLimiter struct {
	perMinute int

	mu      sync.Mutex
	clients map[string]*rateClient
	now     func() time.Time
}

// NewRateLimiter allows perMinute POSTs per IP with an equal burst. Idle
// clients are forgotten by a sweeper goroutine that stops when ctx is done.
func NewRateLimiter(ctx context.Context, perMinute int) *RateLimiter {
	l := &RateLimiter{
		perMinute: perMinute,
		clients:   make(map[string]*rateClient),
		now:       time.Now,
	}
	go l.sweep(ctx)
	return l
}

// Handler is the middleware form of the limiter.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || l.Allow(clientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", "60")
		http.Error(w, "Too many attempts. Try again in a minute.", http.StatusTooManyRequests)
	})
}

// Allow consumes one token for ip and reports whether it was available.
func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[ip]
	if !ok {
		every := rate.Every(time.Minute / time.Duration(max(l.perMinute, 1)))
		c = &rateClient{limiter: rate.NewLimiter(every, max(l.perMinute, 1))}
		l.clients[ip] = c
	}
	c.lastSeen = l.now()
	return c.limiter.Allow()
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *RateLimiter) sweep(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evictIdle()
		case <-ctx.Done():
			return
		}
	}
}

func (l *RateLimiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, c := range l.clients {
		if l.now().Sub(c.lastSeen) > limiterIdleTTL {
			delete(l.clients, ip)
		}
	}
}

// clientIP strips the port from RemoteAddr, which chi's RealIP middleware
// has already rewritten from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
