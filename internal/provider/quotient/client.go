// Package quotient adapts the Quotient reputation API. Quotient only
// scores identities; it contributes the quality score field and nothing
// else, so it sits mid-cascade as a score backfill when the primary
// provider omits one.
package quotient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/samrat1446/farcaster-mini-app/internal/provider"
	"github.com/samrat1446/farcaster-mini-app/internal/signal"
	"github.com/samrat1446/farcaster-mini-app/pkg/clients"
	"github.com/samrat1446/farcaster-mini-app/pkg/logging"
)

const (
	defaultBaseURL = "https://api.quotient.social"
	defaultTimeout = 30 * time.Second
)

// ProviderName identifies this adapter in provenance and configuration.
const ProviderName = "quotient"

type reputationRequest struct {
	FIDs   []int64 `json:"fids"`
	APIKey string  `json:"api_key"`
}

type reputationResponse struct {
	Data  []reputationEntry `json:"data"`
	Count int               `json:"count"`
}

type reputationEntry struct {
	FID           int64   `json:"fid"`
	Username      string  `json:"username"`
	QuotientScore float64 `json:"quotientScore"` // 0-1 scale
	QuotientRank  int64   `json:"quotientRank"`
}

// Client is a Quotient API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// Config configures the Quotient client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  logging.Logger
}

// NewClient creates a new Quotient API client.
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

// FetchSignal looks the identity up in the batch reputation endpoint
// and returns a partial signal carrying only the normalized quality
// score.
func (c *Client) FetchSignal(ctx context.Context, identityKey string) (*signal.RawSignal, error) {
	fid, err := strconv.ParseInt(identityKey, 10, 64)
	if err != nil {
		return nil, provider.NewMalformedError(ProviderName, fmt.Errorf("identity key %q is not a numeric fid", identityKey))
	}

	body, err := json.Marshal(reputationRequest{FIDs: []int64{fid}, APIKey: c.apiKey})
	if err != nil {
		return nil, provider.NewMalformedError(ProviderName, err)
	}

	url := c.baseURL + "/v1/user-reputation"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, provider.NewTransportError(ProviderName, err)
	}
	req.Header.Set("Content-Type", "application/json")
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
			}).Warn("Quotient request failed")
		}
		return nil, provider.NewUpstreamError(ProviderName, resp.StatusCode)
	}

	var parsed reputationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, provider.NewMalformedError(ProviderName, fmt.Errorf("failed to decode response: %w", err))
	}

	entry, ok := findEntry(parsed.Data, fid)
	if !ok {
		// The batch endpoint silently drops unknown fids.
		return nil, provider.NewUpstreamError(ProviderName, http.StatusNotFound)
	}

	partial := signal.New(identityKey)
	partial.QualityScore = signal.Float64(math.Round(entry.QuotientScore * 100))
	return partial, nil
}

func findEntry(entries []reputationEntry, fid int64) (reputationEntry, bool) {
	for _, e := range entries {
		if e.FID == fid {
			return e, true
		}
	}
	return reputationEntry{}, false
}
