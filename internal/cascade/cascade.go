// Package cascade implements the provider fallback sequence: an
// ordered provider list is attempted one step at a time under the
// retry policy, partial signals merge first-writer-wins, and the walk
// stops early once the required fields are covered.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samrat1446/farcaster-mini-app/internal/provider"
	"github.com/samrat1446/farcaster-mini-app/internal/signal"
	"github.com/samrat1446/farcaster-mini-app/pkg/clients"
	"github.com/samrat1446/farcaster-mini-app/pkg/logging"
)

// Config configures a Cascade. Provider order is the fallback priority:
// index zero is tried first and wins every field it supplies.
type Config struct {
	Providers []provider.Provider
	// RequiredFields stops the walk early once all are populated. When
	// empty every provider is consulted.
	RequiredFields []signal.Field
	Retry          RetryConfig
	Logger         logging.Logger

	// BreakerConfig templates the per-provider circuit breaker; the
	// Name field is overridden per provider.
	BreakerConfig *clients.CircuitBreakerConfig
}

// DefaultRequiredFields covers everything the score calculator reads.
func DefaultRequiredFields() []signal.Field {
	return []signal.Field{
		signal.FieldFollowerCount,
		signal.FieldFollowingCount,
		signal.FieldHasVerifiedAddress,
		signal.FieldHasBio,
		signal.FieldHasDisplayName,
		signal.FieldPowerBadge,
		signal.FieldQualityScore,
		signal.FieldSpamFlag,
	}
}

// Cascade walks providers in priority order for one identity at a
// time. It is safe for concurrent use; the circuit breakers are the
// only cross-request state.
type Cascade struct {
	providers []provider.Provider
	required  []signal.Field
	retry     RetryConfig
	logger    logging.Logger
	breakers  map[string]*clients.CircuitBreaker
}

// New builds a cascade with one circuit breaker per provider so that a
// consistently failing upstream is skipped instead of re-timed-out on
// every request.
func New(cfg Config) (*Cascade, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("cascade requires at least one provider")
	}
	required := cfg.RequiredFields
	if required == nil {
		required = DefaultRequiredFields()
	}

	breakers := make(map[string]*clients.CircuitBreaker, len(cfg.Providers))
	for _, p := range cfg.Providers {
		bc := clients.DefaultCircuitBreakerConfig(p.Name())
		if cfg.BreakerConfig != nil {
			bc = *cfg.BreakerConfig
			bc.Name = p.Name()
		}
		bc.Logger = cfg.Logger
		breakers[p.Name()] = clients.NewCircuitBreaker(bc)
	}

	return &Cascade{
		providers: cfg.Providers,
		required:  required,
		retry:     cfg.Retry,
		logger:    cfg.Logger,
		breakers:  breakers,
	}, nil
}

// Result is the outcome of one cascade walk.
type Result struct {
	Signal   *signal.RawSignal
	Attempts []signal.ProviderAttempt
	Elapsed  time.Duration
}

// Fetch walks the providers for the identity and returns the merged
// signal. Provider failures never abort the walk; an error is returned
// only when every provider failed and zero fields were accumulated.
func (c *Cascade) Fetch(ctx context.Context, identityKey string) (*Result, error) {
	start := time.Now()
	merged := signal.New(identityKey)
	attempts := make([]signal.ProviderAttempt, 0, len(c.providers))
	var lastErr error

	for _, p := range c.providers {
		breaker := c.breakers[p.Name()]
		if breaker.IsOpen() {
			attempts = append(attempts, signal.ProviderAttempt{
				Provider: p.Name(),
				Outcome:  signal.AttemptSkippedBreaker,
			})
			c.log(identityKey, p.Name(), "provider skipped, circuit open", nil)
			continue
		}

		var (
			partial  *signal.RawSignal
			tried    int
			fetchErr error
		)
		cbErr := breaker.Call(func() error {
			partial, tried, fetchErr = executeWithRetry(ctx, c.retry, p, identityKey)
			return fetchErr
		})
		if cbErr != nil && fetchErr == nil {
			// Rejected by the breaker before the call ran.
			attempts = append(attempts, signal.ProviderAttempt{
				Provider: p.Name(),
				Outcome:  signal.AttemptSkippedBreaker,
			})
			continue
		}

		if fetchErr != nil {
			lastErr = fetchErr
			attempts = append(attempts, failedAttempt(p.Name(), tried, fetchErr))
			c.log(identityKey, p.Name(), "provider failed", fetchErr)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		contributed := merged.Merge(partial, p.Name())
		attempts = append(attempts, signal.ProviderAttempt{
			Provider: p.Name(),
			Outcome:  signal.AttemptSuccess,
			Attempts: tried,
			Fields:   contributed,
		})

		if merged.HasAll(c.required) {
			break
		}
	}

	if merged.FieldCount() == 0 {
		err := fmt.Errorf("all providers failed for identity %s", identityKey)
		if lastErr != nil {
			// Keep the last classification visible for status mapping.
			err = fmt.Errorf("all providers failed for identity %s: %w", identityKey, lastErr)
		}
		return &Result{Signal: merged, Attempts: attempts, Elapsed: time.Since(start)}, err
	}
	return &Result{Signal: merged, Attempts: attempts, Elapsed: time.Since(start)}, nil
}

func failedAttempt(providerName string, tried int, err error) signal.ProviderAttempt {
	outcome := signal.AttemptFailedFatal
	var exhausted *provider.ExhaustedError
	if errors.As(err, &exhausted) {
		outcome = signal.AttemptFailedRetry
		tried = exhausted.Attempts
	}
	return signal.ProviderAttempt{
		Provider: providerName,
		Outcome:  outcome,
		Attempts: tried,
		Error:    err.Error(),
	}
}

func (c *Cascade) log(identityKey, providerName, msg string, err error) {
	if c.logger == nil {
		return
	}
	fields := logging.Fields{
		"identity_key": identityKey,
		"provider":     providerName,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	c.logger.WithFields(fields).Warn(msg)
}

// BreakerStates reports the current state of every provider breaker,
// for health reporting.
func (c *Cascade) BreakerStates() map[string]string {
	states := make(map[string]string, len(c.breakers))
	for name, b := range c.breakers {
		states[name] = b.State().String()
	}
	return states
}
