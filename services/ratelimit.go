package services

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ProviderLimiter hands out one token-bucket limiter per (tenant, provider)
// pair so a whole import run shares a single request budget against each
// provider, no matter how many workers are in flight.
type ProviderLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewProviderLimiter creates a limiter registry with the given per-pair
// requests-per-second ceiling.
func NewProviderLimiter(rps float64, burst int) *ProviderLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *ProviderLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	l.limiters[key] = limiter
	return limiter
}

// Wait blocks until a request to the provider is allowed or ctx is done.
func (l *ProviderLimiter) Wait(ctx context.Context, tenantID, provider string) error {
	return l.get(tenantID + "/" + provider).Wait(ctx)
}
