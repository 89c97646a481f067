package http

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiter applies a token-bucket limit per client address
type clientLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (cl *clientLimiter) limiterFor(client string) *rate.Limiter {
	cl.mu.RLock()
	limiter, exists := cl.limiters[client]
	cl.mu.RUnlock()
	if exists {
		return limiter
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if limiter, exists := cl.limiters[client]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(cl.rps), cl.burst)
	cl.limiters[client] = limiter
	return limiter
}

func (cl *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !cl.limiterFor(host).Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
