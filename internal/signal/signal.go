// Package signal defines the merged profile signal assembled from the
// upstream reputation providers, along with the per-field provenance
// bookkeeping the fallback cascade relies on.
package signal

// Field identifies one mergeable attribute of a RawSignal.
type Field string

const (
	FieldFollowerCount      Field = "follower_count"
	FieldFollowingCount     Field = "following_count"
	FieldHasVerifiedAddress Field = "has_verified_address"
	FieldHasBio             Field = "has_bio"
	FieldHasDisplayName     Field = "has_display_name"
	FieldPowerBadge         Field = "power_badge"
	FieldQualityScore       Field = "quality_score"
	FieldSpamFlag           Field = "spam_flag"
)

// SpamFlag is the authoritative spam label a provider may supply.
type SpamFlag string

const (
	SpamFlagClean SpamFlag = "clean"
	SpamFlagSpam  SpamFlag = "spam"
)

// RawSignal is the merged set of profile and engagement attributes for
// one identity. Fields are pointers so the cascade can tell "not yet
// supplied" apart from a legitimate zero; Provenance records which
// provider won each field.
type RawSignal struct {
	IdentityKey string `json:"identity_key"`

	FollowerCount      *int64    `json:"follower_count,omitempty"`
	FollowingCount     *int64    `json:"following_count,omitempty"`
	HasVerifiedAddress *bool     `json:"has_verified_address,omitempty"`
	HasBio             *bool     `json:"has_bio,omitempty"`
	HasDisplayName     *bool     `json:"has_display_name,omitempty"`
	PowerBadge         *bool     `json:"power_badge,omitempty"`
	QualityScore       *float64  `json:"quality_score,omitempty"` // 0-100
	SpamFlag           *SpamFlag `json:"spam_flag,omitempty"`

	Provenance map[Field]string `json:"provenance,omitempty"`
}

// New returns an empty signal for the given identity.
func New(identityKey string) *RawSignal {
	return &RawSignal{
		IdentityKey: identityKey,
		Provenance:  make(map[Field]string),
	}
}

// Merge folds a provider's partial signal into the accumulator with
// first-writer-wins semantics: a field already set by a higher-priority
// provider is never overwritten. Returns the number of fields the
// partial actually contributed.
func (s *RawSignal) Merge(partial *RawSignal, providerName string) int {
	if partial == nil {
		return 0
	}
	contributed := 0

	if s.FollowerCount == nil && partial.FollowerCount != nil {
		v := *partial.FollowerCount
		s.FollowerCount = &v
		s.Provenance[FieldFollowerCount] = providerName
		contributed++
	}
	if s.FollowingCount == nil && partial.FollowingCount != nil {
		v := *partial.FollowingCount
		s.FollowingCount = &v
		s.Provenance[FieldFollowingCount] = providerName
		contributed++
	}
	if s.HasVerifiedAddress == nil && partial.HasVerifiedAddress != nil {
		v := *partial.HasVerifiedAddress
		s.HasVerifiedAddress = &v
		s.Provenance[FieldHasVerifiedAddress] = providerName
		contributed++
	}
	if s.HasBio == nil && partial.HasBio != nil {
		v := *partial.HasBio
		s.HasBio = &v
		s.Provenance[FieldHasBio] = providerName
		contributed++
	}
	if s.HasDisplayName == nil && partial.HasDisplayName != nil {
		v := *partial.HasDisplayName
		s.HasDisplayName = &v
		s.Provenance[FieldHasDisplayName] = providerName
		contributed++
	}
	if s.PowerBadge == nil && partial.PowerBadge != nil {
		v := *partial.PowerBadge
		s.PowerBadge = &v
		s.Provenance[FieldPowerBadge] = providerName
		contributed++
	}
	if s.QualityScore == nil && partial.QualityScore != nil {
		v := clampScore(*partial.QualityScore)
		s.QualityScore = &v
		s.Provenance[FieldQualityScore] = providerName
		contributed++
	}
	if s.SpamFlag == nil && partial.SpamFlag != nil {
		v := *partial.SpamFlag
		s.SpamFlag = &v
		s.Provenance[FieldSpamFlag] = providerName
		contributed++
	}

	return contributed
}

// Has reports whether the given field has been populated.
func (s *RawSignal) Has(field Field) bool {
	switch field {
	case FieldFollowerCount:
		return s.FollowerCount != nil
	case FieldFollowingCount:
		return s.FollowingCount != nil
	case FieldHasVerifiedAddress:
		return s.HasVerifiedAddress != nil
	case FieldHasBio:
		return s.HasBio != nil
	case FieldHasDisplayName:
		return s.HasDisplayName != nil
	case FieldPowerBadge:
		return s.PowerBadge != nil
	case FieldQualityScore:
		return s.QualityScore != nil
	case FieldSpamFlag:
		return s.SpamFlag != nil
	default:
		return false
	}
}

// HasAll reports whether every field in the set has been populated.
func (s *RawSignal) HasAll(fields []Field) bool {
	for _, f := range fields {
		if !s.Has(f) {
			return false
		}
	}
	return true
}

// FieldCount returns the number of populated fields.
func (s *RawSignal) FieldCount() int {
	return len(s.Provenance)
}

// Followers returns the follower count, defaulting to zero when no
// provider supplied one.
func (s *RawSignal) Followers() int64 {
	if s.FollowerCount == nil {
		return 0
	}
	return *s.FollowerCount
}

// Following returns the following count, defaulting to zero.
func (s *RawSignal) Following() int64 {
	if s.FollowingCount == nil {
		return 0
	}
	return *s.FollowingCount
}

// Verified reports whether the identity has a verified address.
func (s *RawSignal) Verified() bool {
	return s.HasVerifiedAddress != nil && *s.HasVerifiedAddress
}

// Bio reports whether the identity has a non-trivial bio.
func (s *RawSignal) Bio() bool {
	return s.HasBio != nil && *s.HasBio
}

// DisplayName reports whether the identity's display name is distinct
// from its handle.
func (s *RawSignal) DisplayName() bool {
	return s.HasDisplayName != nil && *s.HasDisplayName
}

// Badge reports whether the identity holds a power badge.
func (s *RawSignal) Badge() bool {
	return s.PowerBadge != nil && *s.PowerBadge
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Helpers for building partial signals in adapters and tests.

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Flag returns a pointer to v.
func Flag(v SpamFlag) *SpamFlag { return &v }

// AttemptOutcome classifies how a cascade step against one provider ended.
type AttemptOutcome string

const (
	AttemptSuccess        AttemptOutcome = "success"
	AttemptFailedRetry    AttemptOutcome = "failed_retryable"
	AttemptFailedFatal    AttemptOutcome = "failed_fatal"
	AttemptSkippedBreaker AttemptOutcome = "skipped_circuit_open"
)

// ProviderAttempt records one cascade step. It lives for the duration
// of a single scoring request and is never persisted.
type ProviderAttempt struct {
	Provider string         `json:"provider"`
	Outcome  AttemptOutcome `json:"outcome"`
	Attempts int            `json:"attempts"`
	Fields   int            `json:"fields_contributed"`
	Error    string         `json:"error,omitempty"`
}
