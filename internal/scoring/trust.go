package scoring

import (
	"math"

	"github.com/samrat1446/farcaster-mini-app/internal/signal"
)

// Trust score multipliers applied when the spam verdict is positive,
// keyed by verdict confidence.
const (
	trustPenaltyHigh   = 0.3
	trustPenaltyMedium = 0.5
	trustPenaltyLow    = 0.7
)

// TrustScore combines the quality score and the spam verdict into a
// single 0-100 figure: the quality score on the display scale, scaled
// down when the identity was flagged.
func TrustScore(score ScoreResult, spam SpamAssessment) int {
	trust := score.Score * 100

	if spam.Flag == signal.SpamFlagSpam {
		switch spam.Confidence {
		case ConfidenceHigh:
			trust *= trustPenaltyHigh
		case ConfidenceMedium:
			trust *= trustPenaltyMedium
		default:
			trust *= trustPenaltyLow
		}
	}

	return int(math.Round(trust))
}
