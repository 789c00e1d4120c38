package middleware

import (
	"sync"
	"time"

	"go-hrms/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// DefaultLimiterTTL is how long an idle key keeps its bucket.
const DefaultLimiterTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter keeps one token bucket per key (client IP or employee id).
// Buckets idle for longer than the TTL are dropped on a later access.
type KeyedRateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	r         rate.Limit
	b         int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewKeyedRateLimiter(r rate.Limit, b int) *KeyedRateLimiter {
	return NewKeyedRateLimiterWithTTL(r, b, DefaultLimiterTTL)
}

// NewKeyedRateLimiterWithTTL never evicts a bucket sooner than it takes to
// refill completely, so eviction cannot grant extra tokens.
func NewKeyedRateLimiterWithTTL(r rate.Limit, b int, ttl time.Duration) *KeyedRateLimiter {
	if r > 0 {
		if refill := time.Duration(float64(b) / float64(r) * float64(time.Second)); refill > ttl {
			ttl = refill
		}
	}
	return &KeyedRateLimiter{
		limiters:  make(map[string]*limiterEntry),
		r:         r,
		b:         b,
		ttl:       ttl,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *KeyedRateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweep(now)
	}

	entry, exists := l.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Len reports how many keys currently hold a bucket.
func (l *KeyedRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *KeyedRateLimiter) sweep(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.ttl {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// RateLimitByIP: r = requests per second, b = burst
func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			abortWithError(c, apperror.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RateLimitByUser skips anonymous requests; put it after AuthMiddleware.
func RateLimitByUser(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyedRateLimiter(r, b)
	return func(c *gin.Context) {
		employeeID := c.GetString(ContextEmployeeID)
		if employeeID == "" {
			c.Next()
			return
		}
		if !limiter.GetLimiter(employeeID).Allow() {
			abortWithError(c, apperror.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
