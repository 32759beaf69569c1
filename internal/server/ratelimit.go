package server

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's bucket is kept after its last write.
const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// writeLimiter keeps one token bucket per client IP for mutating routes.
// Buckets idle for longer than idle are swept at most once per idle period.
type writeLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*visitor
	lastSweep time.Time
}

// newWriteLimiter returns a limiter allowing perSecond writes per client.
// A non-positive rate disables limiting.
func newWriteLimiter(perSecond float64, burst int) *writeLimiter {
	if burst < 1 {
		burst = 1
	}
	return &writeLimiter{
		limit:     rate.Limit(perSecond),
		burst:     burst,
		idle:      limiterIdleTTL,
		now:       time.Now,
		clients:   map[string]*visitor{},
		lastSweep: time.Now(),
	}
}

func (l *writeLimiter) allow(ip string) bool {
	if l.limit <= 0 {
		return true
	}
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	v, ok := l.clients[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// sweep drops idle buckets. Callers hold l.mu.
func (l *writeLimiter) sweep(now time.Time) {
	for ip, v := range l.clients {
		if now.Sub(v.lastSeen) >= l.idle {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

func (l *writeLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *writeLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.allow(c.IP()) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many write requests")
		}
		return c.Next()
	}
}
