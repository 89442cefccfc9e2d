package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-model rate limiting. The provider enforces its
// quota per model, so each model name gets its own token bucket.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the model's bucket clears a request or ctx ends.
func (l *Limiter) Wait(ctx context.Context, modelName string) error {
	return l.getLimiter(modelName).Wait(ctx)
}

// Allow checks if a request is allowed without waiting
func (l *Limiter) Allow(modelName string) bool {
	return l.getLimiter(modelName).Allow()
}

// getLimiter returns the rate limiter for a model
func (l *Limiter) getLimiter(modelName string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[modelName]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[modelName]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[modelName] = limiter

	return limiter
}

// SetModelRate sets a custom rate limit for a specific model
func (l *Limiter) SetModelRate(modelName string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[modelName] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
