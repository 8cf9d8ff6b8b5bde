package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/docbase"
	"golang.org/x/time/rate"
)

var _ docbase.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter rate-limits requests per domain using token buckets.
// Each domain gets its own limiter, so crawling one site never starves
// requests to another.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a DomainLimiter with the given requests per
// second limit. Burst is 1: requests within a domain are evenly spaced.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
