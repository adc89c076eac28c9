// Package warpcast adapts the public Warpcast API. It needs no API key
// and covers the profile and social graph fields, so it serves as the
// last-resort source when the authenticated providers are down.
package warpcast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samrat1446/farcaster-mini-app/internal/provider"
	"github.com/samrat1446/farcaster-mini-app/internal/signal"
	"github.com/samrat1446/farcaster-mini-app/pkg/clients"
	"github.com/samrat1446/farcaster-mini-app/pkg/logging"
)

const (
	defaultBaseURL = "https://api.warpcast.com"
	defaultTimeout = 30 * time.Second

	// Bio shorter than this is treated as absent for scoring purposes.
	minBioLength = 10
)

// ProviderName identifies this adapter in provenance and configuration.
const ProviderName = "warpcast"

// Client is a Warpcast API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// Config configures the Warpcast client. The API is unauthenticated,
// so there is no key.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  logging.Logger
}

// NewClient creates a new Warpcast API client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: clients.NewHTTPClient(timeout),
		logger:     cfg.Logger,
	}
}

// Name implements provider.Provider.
func (c *Client) Name() string { return ProviderName }

// FetchSignal fetches the user record and assembles the partial signal.
// Warpcast has no quality score; the spam label comes from its public
// label when present.
func (c *Client) FetchSignal(ctx context.Context, identityKey string) (*signal.RawSignal, error) {
	reqURL := fmt.Sprintf("%s/v2/user?fid=%s", c.baseURL, url.QueryEscape(identityKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, provider.NewTransportError(ProviderName, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, provider.NewTransportError(ProviderName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.WithFields(logging.Fields{
				"provider":    ProviderName,
				"status_code": resp.StatusCode,
			}).Warn("Warpcast request failed")
		}
		return nil, provider.NewUpstreamError(ProviderName, resp.StatusCode)
	}

	var parsed userResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, provider.NewMalformedError(ProviderName, fmt.Errorf("failed to decode response: %w", err))
	}
	u := parsed.Result.User
	if u == nil {
		return nil, provider.NewMalformedError(ProviderName, fmt.Errorf("user missing from response"))
	}

	partial := signal.New(identityKey)
	partial.FollowerCount = signal.Int64(u.FollowerCount)
	partial.FollowingCount = signal.Int64(u.FollowingCount)
	partial.HasBio = signal.Bool(len(strings.TrimSpace(u.Profile.Bio.Text)) > minBioLength)
	partial.HasDisplayName = signal.Bool(hasDistinctDisplayName(u))

	if u.Extras != nil {
		partial.HasVerifiedAddress = signal.Bool(len(u.Extras.EthWallets) > 0)
		if flag, ok := parseSpamLabel(u.Extras.PublicSpamLabel); ok {
			partial.SpamFlag = signal.Flag(flag)
		}
	}

	return partial, nil
}

// parseSpamLabel maps the public label onto the common flag. Label 2
// means unlikely to spam; 0 means flagged.
func parseSpamLabel(label string) (signal.SpamFlag, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	if strings.HasPrefix(label, "0") {
		return signal.SpamFlagSpam, true
	}
	return signal.SpamFlagClean, true
}

func hasDistinctDisplayName(u *user) bool {
	name := strings.TrimSpace(u.DisplayName)
	return name != "" && !strings.EqualFold(name, u.Username)
}
