// Package provider defines the capability interface every upstream
// reputation source implements, plus the error taxonomy the retry
// policy classifies against.
package provider

import (
	"context"

	"github.com/samrat1446/farcaster-mini-app/internal/signal"
)

// Provider is one upstream data source. FetchSignal performs the
// provider's network call(s) for the identity and returns the partial
// signal this provider is authoritative for. Adapters never invent
// values for fields outside their coverage, and never mutate shared
// state beyond the call itself.
type Provider interface {
	Name() string
	FetchSignal(ctx context.Context, identityKey string) (*signal.RawSignal, error)
}
