// Package engine ties the fallback cascade to the scoring functions:
// one call fetches the merged signal for an identity and derives the
// quality score, spam verdict, and trust score from it.
package engine

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/samrat1446/farcaster-mini-app/internal/cascade"
	"github.com/samrat1446/farcaster-mini-app/internal/scoring"
	"github.com/samrat1446/farcaster-mini-app/internal/signal"
	"github.com/samrat1446/farcaster-mini-app/pkg/logging"
)

// Profile is the full reputation assessment returned to callers.
type Profile struct {
	Signal     *signal.RawSignal        `json:"signal"`
	Score      scoring.ScoreResult      `json:"score"`
	Spam       scoring.SpamAssessment   `json:"spam"`
	TrustScore int                      `json:"trust_score"`
	Attempts   []signal.ProviderAttempt `json:"provider_attempts"`
}

// Metrics holds the engine's instrument handles. All fields are
// optional; a nil collector disables that instrument.
type Metrics struct {
	ProviderAttempts *prometheus.CounterVec   // labels: provider, outcome
	CascadeDuration  *prometheus.HistogramVec // label: result
	SpamVerdicts     *prometheus.CounterVec   // labels: flag, confidence
}

// Engine computes reputation profiles. Safe for concurrent use.
type Engine struct {
	cascade *cascade.Cascade
	logger  logging.Logger
	metrics Metrics
}

// New builds an engine around a configured cascade.
func New(c *cascade.Cascade, logger logging.Logger, metrics Metrics) *Engine {
	return &Engine{cascade: c, logger: logger, metrics: metrics}
}

// GetReputationProfile fetches the best-available signal for the
// identity and scores it. A single failing provider never surfaces as
// an error; only a total failure with zero usable fields does.
func (e *Engine) GetReputationProfile(ctx context.Context, identityKey string) (*Profile, error) {
	if identityKey == "" {
		return nil, fmt.Errorf("identity key is required")
	}

	result, err := e.cascade.Fetch(ctx, identityKey)
	e.recordAttempts(result)
	if err != nil {
		e.observeCascade(result, "failure")
		return nil, fmt.Errorf("no usable signal for %s: %w", identityKey, err)
	}
	e.observeCascade(result, "success")

	score := scoring.ComputeScore(result.Signal)
	spam := scoring.AssessSpam(result.Signal)
	trust := scoring.TrustScore(score, spam)

	if e.metrics.SpamVerdicts != nil {
		e.metrics.SpamVerdicts.WithLabelValues(string(spam.Flag), string(spam.Confidence)).Inc()
	}

	if e.logger != nil {
		e.logger.WithFields(logging.Fields{
			"identity_key": identityKey,
			"score":        score.Score,
			"tier":         score.Tier.String(),
			"estimated":    score.Estimated,
			"spam_flag":    spam.Flag,
			"trust_score":  trust,
			"providers":    len(result.Attempts),
		}).Info("Computed reputation profile")
	}

	return &Profile{
		Signal:     result.Signal,
		Score:      score,
		Spam:       spam,
		TrustScore: trust,
		Attempts:   result.Attempts,
	}, nil
}

// BreakerStates exposes the cascade's per-provider circuit breaker
// states for health reporting.
func (e *Engine) BreakerStates() map[string]string {
	return e.cascade.BreakerStates()
}

func (e *Engine) recordAttempts(result *cascade.Result) {
	if result == nil || e.metrics.ProviderAttempts == nil {
		return
	}
	for _, a := range result.Attempts {
		e.metrics.ProviderAttempts.WithLabelValues(a.Provider, string(a.Outcome)).Inc()
	}
}

func (e *Engine) observeCascade(result *cascade.Result, outcome string) {
	if result == nil || e.metrics.CascadeDuration == nil {
		return
	}
	e.metrics.CascadeDuration.WithLabelValues(outcome).Observe(result.Elapsed.Seconds())
}
