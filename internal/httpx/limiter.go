package httpx

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiter keeps one token bucket per upstream host.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newHostLimiter(rps float64, burst int) *hostLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &hostLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (h *hostLimiter) wait(ctx context.Context, host string) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(h.rps, h.burst)
		h.limiters[host] = l
	}
	h.mu.Unlock()
	return l.Wait(ctx)
}
