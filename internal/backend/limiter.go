package backend

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/evcraddock/comment-panel/internal/auth"
)

// clientLimiter hands out one token bucket per visitor address, as resolved
// by auth.ClientIP.
type clientLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// allow reports whether the client behind r may act now.
func (cl *clientLimiter) allow(r *http.Request) bool {
	ip := auth.ClientIP(r)

	cl.mu.Lock()
	l, ok := cl.limiters[ip]
	if !ok {
		l = rate.NewLimiter(cl.limit, cl.burst)
		cl.limiters[ip] = l
	}
	cl.mu.Unlock()

	return l.Allow()
}
