package epubtl

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RetryConfig controls how a failed chunk request is retried.
type RetryConfig struct {
	MaxRetries int           // Retries after the first attempt
	BaseDelay  time.Duration // Delay before the first retry, doubled for each further one
	MaxDelay   time.Duration // Upper bound for a single delay
	Logger     *slog.Logger  // Receives one line per retry (optional)
}

// DefaultRetryConfig returns three retries starting at one second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// delay returns the wait before retry number attempt+1.
func (c RetryConfig) delay(attempt int) time.Duration {
	if c.BaseDelay <= 0 {
		return 0
	}
	d := c.BaseDelay << attempt
	if d <= 0 || d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry calls fn until it succeeds, returns an error IsRetryable
// rejects, or the retries are used up. The last error is returned.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt >= cfg.MaxRetries {
			return zero, err
		}

		d := cfg.delay(attempt)
		if cfg.Logger != nil {
			cfg.Logger.Warn("retrying provider call", "attempt", attempt+1, "delay", d, "error", err)
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// IsRetryable checks if an error is retryable. Provider errors carry their
// own flag; a count mismatch is retried since model backends answer
// differently on a second attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	var mismatch *CountMismatchError
	return errors.As(err, &mismatch)
}

// RetryableProvider wraps a Provider with retry logic.
type RetryableProvider struct {
	provider Provider
	config   RetryConfig
}

// NewRetryableProvider creates a new provider with retry logic.
func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{
		provider: provider,
		config:   cfg,
	}
}

// Translate implements Provider with retry logic.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	return WithRetry(ctx, p.config, func() ([]string, error) {
		results, err := p.provider.Translate(ctx, req)
		if err == nil && len(results) != len(req.Texts) {
			return nil, &CountMismatchError{Expected: len(req.Texts), Got: len(results)}
		}
		return results, err
	})
}

// ChunkSize reports the wrapped provider's chunk size, or 0 if it has none.
func (p *RetryableProvider) ChunkSize() int {
	return chunkSizeOf(p.provider)
}

func chunkSizeOf(p Provider) int {
	if cs, ok := p.(ChunkSizer); ok {
		return cs.ChunkSize()
	}
	return 0
}
