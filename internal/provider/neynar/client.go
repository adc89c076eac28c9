// Package neynar adapts the Neynar API into the common provider
// contract. It is the highest-priority source: profile indicators,
// social graph counts, the Neynar quality score, and the official spam
// label when the API exposes one.
package neynar

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samrat1446/farcaster-mini-app/internal/provider"
	"github.com/samrat1446/farcaster-mini-app/internal/signal"
	"github.com/samrat1446/farcaster-mini-app/pkg/clients"
	"github.com/samrat1446/farcaster-mini-app/pkg/logging"
)

const (
	defaultBaseURL = "https://api.neynar.com/v2"
	defaultTimeout = 30 * time.Second

	// Bio shorter than this is treated as absent for scoring purposes.
	minBioLength = 10
)

// ProviderName identifies this adapter in provenance and configuration.
const ProviderName = "neynar"

// Client is a Neynar API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// Config configures the Neynar client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  logging.Logger
}

// NewClient creates a new Neynar API client.
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
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: clients.NewHTTPClient(timeout),
		logger:     cfg.Logger,
	}
}

// Name implements provider.Provider.
func (c *Client) Name() string { return ProviderName }

// FetchSignal fetches the user record and the social graph counts. The
// two endpoints are independent reads against the same provider, so
// they run concurrently and are joined before the partial signal is
// assembled.
func (c *Client) FetchSignal(ctx context.Context, identityKey string) (*signal.RawSignal, error) {
	var (
		profileUser *user
		graphUser   *user
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := c.fetchUser(gctx, identityKey)
		if err != nil {
			return err
		}
		profileUser = u
		return nil
	})
	g.Go(func() error {
		u, err := c.fetchSocialGraph(gctx, identityKey)
		if err != nil {
			return err
		}
		graphUser = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	partial := signal.New(identityKey)
	partial.FollowerCount = signal.Int64(graphUser.FollowerCount)
	partial.FollowingCount = signal.Int64(graphUser.FollowingCount)
	partial.PowerBadge = signal.Bool(profileUser.PowerBadge)
	partial.HasVerifiedAddress = signal.Bool(hasVerifiedAddress(profileUser))
	partial.HasBio = signal.Bool(len(strings.TrimSpace(profileUser.Profile.Bio.Text)) > minBioLength)
	partial.HasDisplayName = signal.Bool(hasDistinctDisplayName(profileUser))

	if score, ok := qualityScore(profileUser); ok {
		partial.QualityScore = signal.Float64(score)
	}
	if profileUser.SpamLabel != nil {
		// Official label: 0 means spam, anything else clean.
		flag := signal.SpamFlagClean
		if *profileUser.SpamLabel == 0 {
			flag = signal.SpamFlagSpam
		}
		partial.SpamFlag = signal.Flag(flag)
	}

	return partial, nil
}

func (c *Client) fetchUser(ctx context.Context, identityKey string) (*user, error) {
	u := fmt.Sprintf("%s/farcaster/user/by_fid/%s", c.baseURL, url.PathEscape(identityKey))

	var resp userResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, provider.NewMalformedError(ProviderName, fmt.Errorf("user missing from response"))
	}
	return resp.User, nil
}

func (c *Client) fetchSocialGraph(ctx context.Context, identityKey string) (*user, error) {
	u := fmt.Sprintf("%s/farcaster/user/bulk?fids=%s", c.baseURL, url.QueryEscape(identityKey))

	var resp bulkResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, provider.NewMalformedError(ProviderName, fmt.Errorf("empty users array"))
	}
	return &resp.Users[0], nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return provider.NewTransportError(ProviderName, err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api_key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.NewTransportError(ProviderName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.WithFields(logging.Fields{
				"provider":    ProviderName,
				"status_code": resp.StatusCode,
				"url":         url,
			}).Warn("Neynar request failed")
		}
		return provider.NewUpstreamError(ProviderName, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return provider.NewMalformedError(ProviderName, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// qualityScore normalizes the Neynar score onto the 0-100 scale. The
// API has shipped it both as 0-1 and 0-100 over time; values at or
// below 1 are treated as the former.
func qualityScore(u *user) (float64, bool) {
	raw := u.Score
	if raw == nil && u.Experimental != nil {
		raw = u.Experimental.NeynarUserScore
	}
	if raw == nil {
		return 0, false
	}
	score := *raw
	if score <= 1 {
		score = math.Round(score * 100)
	}
	return score, true
}

func hasVerifiedAddress(u *user) bool {
	return u.VerifiedAddresses != nil && len(u.VerifiedAddresses.EthAddresses) > 0
}

func hasDistinctDisplayName(u *user) bool {
	name := strings.TrimSpace(u.DisplayName)
	return name != "" && !strings.EqualFold(name, u.Username)
}
