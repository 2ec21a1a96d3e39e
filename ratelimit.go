package epubtl

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures request throttling.
type RateLimitConfig struct {
	RequestsPerMinute int // Sustained request rate (default: 60)
	BurstSize         int // Requests allowed back to back (default: same as RPM)
}

// RateLimiter is a token bucket shared by every chunk request of a provider.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}
}

// Wait blocks until a request may be sent. It fails without waiting when
// ctx ends before a token would become available.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// TryAcquire takes a token if one is available now.
func (r *RateLimiter) TryAcquire() bool {
	return r.limiter.Allow()
}

// Available returns the number of tokens currently in the bucket.
func (r *RateLimiter) Available() float64 {
	return r.limiter.Tokens()
}

// RateLimitedProvider wraps a Provider with rate limiting. Every chunk
// request takes one token, including retries when wrapped by a
// RetryableProvider.
type RateLimitedProvider struct {
	provider Provider
	limiter  *RateLimiter
}

// NewRateLimitedProvider creates a rate-limited provider wrapper.
func NewRateLimitedProvider(provider Provider, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  NewRateLimiter(cfg),
	}
}

// Translate waits for a token and forwards the request.
func (p *RateLimitedProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.provider.Translate(ctx, req)
}

// ChunkSize reports the wrapped provider's chunk size, or 0 if it has none.
func (p *RateLimitedProvider) ChunkSize() int {
	return chunkSizeOf(p.provider)
}

// Limiter returns the underlying rate limiter.
func (p *RateLimitedProvider) Limiter() *RateLimiter {
	return p.limiter
}
