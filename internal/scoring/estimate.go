package scoring

import "github.com/samrat1446/farcaster-mini-app/internal/signal"

// estimateCap keeps estimated scores below the authoritative maximum so
// they never look like confirmed top-end values.
const estimateCap = 0.95

// EstimateQualityScore derives a 0-1 quality estimate when no provider
// supplied an authoritative score. A raw provider score, if any made it
// into the signal, seeds a tier-shaped ladder; follower:following ratio
// adds small bonuses on top.
func EstimateQualityScore(sig *signal.RawSignal) float64 {
	raw := float64(defaultQuality)
	if sig.QualityScore != nil {
		raw = *sig.QualityScore
	}

	var estimate float64
	switch {
	case raw >= 80:
		estimate = 0.85
	case raw >= 70:
		estimate = 0.78
	case raw >= 60:
		estimate = 0.68
	case raw >= 50:
		estimate = 0.58
	default:
		estimate = 0.45
	}

	ratio := followerRatio(sig.Followers(), sig.Following())
	if ratio > 2 {
		estimate += 0.05
	}
	if ratio > 5 {
		estimate += 0.05
	}

	if estimate > estimateCap {
		estimate = estimateCap
	}
	return estimate
}

// EstimateQualityRank projects an estimated score onto a coarse
// leaderboard position. Better scores land closer to the 100k floor.
func EstimateQualityRank(estimate float64) int64 {
	return int64(100000 + (1-estimate)*900000)
}
