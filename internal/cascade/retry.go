package cascade

import (
	"context"
	"time"

	"github.com/samrat1446/farcaster-mini-app/internal/provider"
	"github.com/samrat1446/farcaster-mini-app/internal/signal"
)

// RetryConfig configures the per-provider retry policy.
type RetryConfig struct {
	// MaxAttempts is the total attempt ceiling, first call included.
	MaxAttempts int
	// BaseDelay is the backoff time unit.
	BaseDelay time.Duration
	// MaxDelay caps any single backoff wait.
	MaxDelay time.Duration

	// sleep is swapped in tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryConfig returns the standard policy: three attempts with
// exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}
	return c
}

// backoffDelay returns the wait before retry attempt i (zero-based
// index of the attempt that just failed). Ordinary retryable failures
// double per attempt; rate limits cool down on a steeper 4x/8x/16x
// schedule because the upstream window has to pass.
func (c RetryConfig) backoffDelay(attempt int, rateLimited bool) time.Duration {
	unit := c.BaseDelay
	var d time.Duration
	if rateLimited {
		d = unit * time.Duration(4<<attempt)
	} else {
		d = unit * time.Duration(1<<attempt)
	}
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// executeWithRetry runs one provider fetch under the retry policy.
// Fatal errors propagate immediately; retryable ones are re-attempted
// up to the ceiling, then wrapped as ExhaustedError so callers can tell
// exhaustion apart from an immediately fatal failure. The returned
// attempt count includes the final one.
func executeWithRetry(ctx context.Context, cfg RetryConfig, p provider.Provider, identityKey string) (*signal.RawSignal, int, error) {
	cfg = cfg.normalized()

	var lastErr *provider.Error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := cfg.sleep(ctx, cfg.backoffDelay(attempt-1, lastErr.RateLimited())); err != nil {
				return nil, attempt, err
			}
		}

		partial, err := p.FetchSignal(ctx, identityKey)
		if err == nil {
			return partial, attempt + 1, nil
		}

		pe, ok := provider.AsProviderError(err)
		if !ok {
			pe = provider.NewTransportError(p.Name(), err)
		}
		if !pe.Retryable() {
			return nil, attempt + 1, pe
		}
		lastErr = pe
	}

	return nil, cfg.MaxAttempts, &provider.ExhaustedError{Attempts: cfg.MaxAttempts, Last: lastErr}
}
