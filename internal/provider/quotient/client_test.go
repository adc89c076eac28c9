package quotient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samrat1446/farcaster-mini-app/internal/provider"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
}

func TestFetchSignal_NormalizesScore(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/user-reputation" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req reputationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.APIKey != "test-key" {
			t.Errorf("expected api key in body, got %q", req.APIKey)
		}
		if len(req.FIDs) != 1 || req.FIDs[0] != 5650 {
			t.Errorf("unexpected fids: %v", req.FIDs)
		}
		_ = json.NewEncoder(w).Encode(reputationResponse{
			Data:  []reputationEntry{{FID: 5650, Username: "vitalik", QuotientScore: 0.873}},
			Count: 1,
		})
	})

	partial, err := client.FetchSignal(context.Background(), "5650")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if partial.QualityScore == nil || *partial.QualityScore != 87 {
		t.Fatalf("expected score 87, got %v", partial.QualityScore)
	}
	if partial.FollowerCount != nil || partial.SpamFlag != nil {
		t.Fatal("quotient must only contribute the quality score")
	}
}

func TestFetchSignal_UnknownFidIsNotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(reputationResponse{Data: nil, Count: 0})
	})

	_, err := client.FetchSignal(context.Background(), "12345")
	pe, ok := provider.AsProviderError(err)
	if !ok || pe.Class != provider.ClassNotFound {
		t.Fatalf("expected not-found classification, got %v", err)
	}
}

func TestFetchSignal_NonNumericKeyIsFatal(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for an unparseable key")
	})

	_, err := client.FetchSignal(context.Background(), "not-a-fid")
	pe, ok := provider.AsProviderError(err)
	if !ok || pe.Class != provider.ClassMalformed || pe.Retryable() {
		t.Fatalf("expected fatal malformed error, got %v", err)
	}
}

func TestFetchSignal_ServerErrorIsRetryable(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchSignal(context.Background(), "1")
	pe, ok := provider.AsProviderError(err)
	if !ok || pe.Class != provider.ClassServerError || !pe.Retryable() {
		t.Fatalf("expected retryable server error, got %v", err)
	}
}
