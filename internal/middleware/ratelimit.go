package middleware

import (
	"net/http" // HTTP status codes
	"sync"     // Guards the limiter map
	"time"     // Durations

	"github.com/gin-gonic/gin" // Gin web framework
	"golang.org/x/time/rate"   // Token bucket limiter
)

const limiterTTL = 30 * time.Minute // Idle limiters are dropped after this

type limiterEntry struct {
	limiter *rate.Limiter // Per-IP limiter
	lastUse time.Time     // Last request time
}

// IPRateLimiter hands out one token bucket per client IP
type IPRateLimiter struct {
	mu      sync.Mutex               // Guards entries
	entries map[string]*limiterEntry // Limiters by IP
	every   time.Duration            // Refill interval
	burst   int                      // Bucket size
}

// NewIPRateLimiter returns a limiter allowing one request per every, with burst
func NewIPRateLimiter(every time.Duration, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1 // A zero burst would reject everything
	}
	return &IPRateLimiter{
		entries: make(map[string]*limiterEntry),
		every:   every,
		burst:   burst,
	}
}

// Allow reports whether ip may make another request now
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	// Drop idle entries while holding the lock
	for k, e := range l.entries {
		if now.Sub(e.lastUse) > limiterTTL {
			delete(l.entries, k)
		}
	}
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(l.every), l.burst)}
		l.entries[ip] = e
	}
	e.lastUse = now
	return e.limiter.Allow()
}

// RateLimitMiddleware rejects requests over the per-IP limit with 429.
// A nil limiter disables limiting.
func RateLimitMiddleware(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next() // Limiting disabled
			return
		}
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many attempts. Please try again later."})
			return
		}
		c.Next()
	}
}
