// Package scoring holds the pure scoring functions: quality score and
// tier derivation, the spam heuristic, the estimation fallback, and the
// combined trust score. Nothing in this package performs I/O.
package scoring

import (
	"encoding/json"

	"github.com/samrat1446/farcaster-mini-app/internal/signal"
)

// Confidence grades how much data backed an assessment.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Tier is the ordered quality classification. Higher values are
// strictly better.
type Tier int

const (
	TierInactive Tier = iota
	TierCasual
	TierActive
	TierInfluential
	TierElite
	TierExceptional
)

var tierNames = [...]string{"Inactive", "Casual", "Active", "Influential", "Elite", "Exceptional"}

func (t Tier) String() string {
	if t < TierInactive || t > TierExceptional {
		return "Unknown"
	}
	return tierNames[t]
}

// MarshalJSON renders the tier label rather than the ordinal.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// ScoreResult is the computed quality assessment for one identity.
type ScoreResult struct {
	// Score is on the internal 0-1 scale.
	Score      float64    `json:"score"`
	Tier       Tier       `json:"tier"`
	Confidence Confidence `json:"confidence"`
	// Estimated is true when no authoritative quality score was
	// available and the estimation fallback substituted one.
	Estimated bool `json:"estimated"`
	// QualityRank is a coarse leaderboard position estimate, only set
	// alongside Estimated.
	QualityRank int64 `json:"quality_rank,omitempty"`
}

const (
	baseScore      = 0.3
	qualityWeight  = 0.4
	badgeBonus     = 0.08
	verifiedBonus  = 0.06
	bioBonus       = 0.04
	nameBonus      = 0.02
	defaultQuality = 50 // assumed mid-scale when no provider scored the identity
)

// ComputeScore maps a merged signal to a ScoreResult. The algorithm is
// a fixed contract: base 0.3, plus the weighted quality score, plus a
// follower-quality bracket, plus account-quality bonuses, minus a spam
// ratio penalty, clamped to [0,1].
func ComputeScore(sig *signal.RawSignal) ScoreResult {
	score := baseScore
	confidence := ConfidenceMedium
	estimated := false
	var rank int64

	// Weighted quality score, substituting the estimate when no
	// provider supplied one.
	var quality float64
	if sig.QualityScore != nil {
		quality = *sig.QualityScore / 100
	} else {
		quality = EstimateQualityScore(sig)
		estimated = true
		rank = EstimateQualityRank(quality)
	}
	score += quality * qualityWeight

	followers := sig.Followers()
	following := sig.Following()
	followerQuality, followerConfidence := followerQualityBracket(followers, following)
	score += followerQuality
	if followerConfidence != "" {
		confidence = followerConfidence
	}

	if sig.Badge() {
		score += badgeBonus
	}
	if sig.Verified() {
		score += verifiedBonus
	}
	if sig.Bio() {
		score += bioBonus
	}
	if sig.DisplayName() {
		score += nameBonus
	}

	penalty, penaltyLow := spamRatioPenalty(followers, following)
	score -= penalty
	if penaltyLow {
		confidence = ConfidenceLow
	}

	score = clamp01(score)

	return ScoreResult{
		Score:       score,
		Tier:        TierForScore(score),
		Confidence:  confidence,
		Estimated:   estimated,
		QualityRank: rank,
	}
}

// followerQualityBracket selects the follower contribution from the
// fixed (count, follower:following ratio) ladder. The second return is
// the confidence adjustment the bracket carries, empty for the middle
// brackets.
func followerQualityBracket(followers, following int64) (float64, Confidence) {
	ratio := followerRatio(followers, following)
	switch {
	case followers > 10000 && ratio > 2:
		return 0.3, ConfidenceHigh
	case followers > 5000 && ratio > 1:
		return 0.25, ""
	case followers > 1000 && ratio > 0.5:
		return 0.2, ""
	case followers > 500:
		return 0.15, ""
	case followers > 100:
		return 0.1, ""
	default:
		return 0.05, ConfidenceLow
	}
}

// spamRatioPenalty keys the deduction to following:follower imbalance.
// The heaviest bracket also drops confidence to Low.
func spamRatioPenalty(followers, following int64) (float64, bool) {
	switch {
	case following > followers*10 && following > 500:
		return 0.2, true
	case following > followers*5 && following > 200:
		return 0.1, false
	case following > followers*3 && following > 100:
		return 0.05, false
	default:
		return 0, false
	}
}

// TierForScore maps a 0-1 score onto the tier ladder.
func TierForScore(score float64) Tier {
	switch {
	case score < 0.3:
		return TierInactive
	case score < 0.5:
		return TierCasual
	case score < 0.7:
		return TierActive
	case score < 0.8:
		return TierInfluential
	case score < 0.9:
		return TierElite
	default:
		return TierExceptional
	}
}

func followerRatio(followers, following int64) float64 {
	if following <= 0 {
		return 0
	}
	return float64(followers) / float64(following)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
