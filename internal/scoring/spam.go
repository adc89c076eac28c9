package scoring

import "github.com/samrat1446/farcaster-mini-app/internal/signal"

// SpamAssessment is the spam verdict for one identity.
type SpamAssessment struct {
	Flag       signal.SpamFlag `json:"flag"`
	Confidence Confidence      `json:"confidence"`
	Reason     string          `json:"reason,omitempty"`
	// Authoritative is true when a provider's own label was used
	// instead of the heuristic.
	Authoritative bool `json:"authoritative"`
}

// spamRule is one predicate/verdict pair. Rules run in declaration
// order and the first match wins, so ordering is part of the contract.
type spamRule struct {
	match      func(f ruleFacts) bool
	confidence Confidence
	reason     string
}

// ruleFacts is the signal slice the rules read, with the quality score
// pre-defaulted so each predicate stays a one-liner.
type ruleFacts struct {
	followers int64
	following int64
	quality   float64
	verified  bool
	bio       bool
	name      bool
}

var spamRules = []spamRule{
	{
		match: func(f ruleFacts) bool {
			return f.following > f.followers*10 && f.following > 1000
		},
		confidence: ConfidenceHigh,
		reason:     "following ratio extreme",
	},
	{
		match: func(f ruleFacts) bool {
			return f.following > f.followers*5 && f.following > 500 && f.quality < 30
		},
		confidence: ConfidenceHigh,
		reason:     "high ratio + low quality score",
	},
	{
		match: func(f ruleFacts) bool {
			return f.followers < 10 && f.following > 500 && !f.verified && !f.bio
		},
		confidence: ConfidenceHigh,
		reason:     "new/empty account with excessive following",
	},
	{
		match: func(f ruleFacts) bool {
			return f.following > f.followers*3 && f.following > 200 && f.quality < 40
		},
		confidence: ConfidenceMedium,
		reason:     "suspicious ratio + low engagement",
	},
	{
		match: func(f ruleFacts) bool {
			return f.followers < 50 && f.following > 200 && !f.name
		},
		confidence: ConfidenceMedium,
		reason:     "low followers + minimal profile",
	},
	{
		match: func(f ruleFacts) bool {
			return f.following > f.followers*2 && f.following > 100 && f.quality < 50
		},
		confidence: ConfidenceLow,
		reason:     "moderate imbalance + below-average score",
	},
}

// AssessSpam evaluates the ordered rule list against the signal. An
// authoritative provider label short-circuits the heuristic entirely.
// Absence of evidence yields Clean at Medium confidence.
func AssessSpam(sig *signal.RawSignal) SpamAssessment {
	if sig.SpamFlag != nil {
		return SpamAssessment{
			Flag:          *sig.SpamFlag,
			Confidence:    ConfidenceHigh,
			Reason:        "provider spam label",
			Authoritative: true,
		}
	}

	facts := ruleFacts{
		followers: sig.Followers(),
		following: sig.Following(),
		quality:   defaultQuality,
		verified:  sig.Verified(),
		bio:       sig.Bio(),
		name:      sig.DisplayName(),
	}
	if sig.QualityScore != nil {
		facts.quality = *sig.QualityScore
	}

	for _, rule := range spamRules {
		if rule.match(facts) {
			return SpamAssessment{
				Flag:       signal.SpamFlagSpam,
				Confidence: rule.confidence,
				Reason:     rule.reason,
			}
		}
	}

	return SpamAssessment{Flag: signal.SpamFlagClean, Confidence: ConfidenceMedium}
}
