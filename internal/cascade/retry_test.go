package cascade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samrat1446/farcaster-mini-app/internal/provider"
	"github.com/samrat1446/farcaster-mini-app/internal/signal"
)

// scriptedProvider fails with the scripted errors in order, then
// succeeds with the given partial.
type scriptedProvider struct {
	name    string
	errs    []error
	partial *signal.RawSignal
	calls   int
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) FetchSignal(ctx context.Context, identityKey string) (*signal.RawSignal, error) {
	defer func() { p.calls++ }()
	if p.calls < len(p.errs) {
		return nil, p.errs[p.calls]
	}
	if p.partial != nil {
		return p.partial, nil
	}
	return signal.New(identityKey), nil
}

func noSleepConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return cfg
}

func TestExecuteWithRetry_RateLimitThenSuccess(t *testing.T) {
	p := &scriptedProvider{
		name: "flaky",
		errs: []error{
			provider.NewUpstreamError("flaky", 429),
			provider.NewUpstreamError("flaky", 429),
		},
		partial: signal.New("1"),
	}

	partial, attempts, err := executeWithRetry(context.Background(), noSleepConfig(), p, "1")
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if partial == nil || attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteWithRetry_FatalPropagatesImmediately(t *testing.T) {
	p := &scriptedProvider{
		name: "gone",
		errs: []error{provider.NewUpstreamError("gone", 404)},
	}

	_, attempts, err := executeWithRetry(context.Background(), noSleepConfig(), p, "1")
	if attempts != 1 {
		t.Fatalf("fatal errors must not be retried, got %d attempts", attempts)
	}
	pe, ok := provider.AsProviderError(err)
	if !ok || pe.Class != provider.ClassNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
	var exhausted *provider.ExhaustedError
	if errors.As(err, &exhausted) {
		t.Fatal("fatal failure must not be wrapped as exhausted")
	}
}

func TestExecuteWithRetry_ExhaustionWrapsLastError(t *testing.T) {
	p := &scriptedProvider{
		name: "down",
		errs: []error{
			provider.NewUpstreamError("down", 503),
			provider.NewUpstreamError("down", 503),
			provider.NewUpstreamError("down", 503),
		},
	}

	_, attempts, err := executeWithRetry(context.Background(), noSleepConfig(), p, "1")
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	var exhausted *provider.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected exhausted wrapper, got %v", err)
	}
	if exhausted.Attempts != 3 || exhausted.Last.Class != provider.ClassServerError {
		t.Fatalf("unexpected wrapper contents: %+v", exhausted)
	}
}

func TestBackoffDelay_Schedules(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, MaxDelay: time.Hour}.normalized()

	generic := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for i, want := range generic {
		if got := cfg.backoffDelay(i, false); got != want {
			t.Errorf("generic backoff %d: got %v want %v", i, got, want)
		}
	}

	rateLimited := []time.Duration{4 * time.Second, 8 * time.Second, 16 * time.Second}
	for i, want := range rateLimited {
		if got := cfg.backoffDelay(i, true); got != want {
			t.Errorf("rate-limit backoff %d: got %v want %v", i, got, want)
		}
	}
}

func TestBackoffDelay_Capped(t *testing.T) {
	cfg := RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}.normalized()
	if got := cfg.backoffDelay(2, true); got != 5*time.Second {
		t.Fatalf("expected cap at 5s, got %v", got)
	}
}

func TestExecuteWithRetry_ContextCancelStopsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultRetryConfig()
	p := &scriptedProvider{
		name: "slow",
		errs: []error{
			provider.NewUpstreamError("slow", 503),
			provider.NewUpstreamError("slow", 503),
			provider.NewUpstreamError("slow", 503),
		},
	}

	_, _, err := executeWithRetry(ctx, cfg, p, "1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if p.calls != 1 {
		t.Fatalf("expected backoff to abort after first attempt, got %d calls", p.calls)
	}
}
