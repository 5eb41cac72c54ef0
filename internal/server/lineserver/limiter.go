package lineserver

import (
	"net"
	"sync"

	"golang.org/x/time/rate"
)

// limiterRegistry hands out one token bucket per client IP. Buckets are
// reference counted by open connections and dropped with the last one.
type limiterRegistry struct {
	mu       sync.Mutex
	perSec   int
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	limiter *rate.Limiter
	refs    int
}

func newLimiterRegistry(perSec int) *limiterRegistry {
	return &limiterRegistry{
		perSec:   perSec,
		limiters: make(map[string]*limiterEntry),
	}
}

// acquire returns the limiter for ip, creating it on first use.
// Burst equals the per-second rate.
func (r *limiterRegistry) acquire(ip string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.limiters[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(r.perSec), r.perSec)}
		r.limiters[ip] = e
	}
	e.refs++
	return e.limiter
}

// release drops one reference to ip's limiter.
func (r *limiterRegistry) release(ip string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.limiters[ip]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.limiters, ip)
	}
}

func (r *limiterRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}

// hostOf strips the port from a remote address.
func hostOf(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
