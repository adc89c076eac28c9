package provider

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewUpstreamErrorClassification(t *testing.T) {
	cases := []struct {
		status    int
		class     ErrorClass
		retryable bool
	}{
		{http.StatusTooManyRequests, ClassRateLimited, true},
		{http.StatusNotFound, ClassNotFound, false},
		{http.StatusUnauthorized, ClassAuth, false},
		{http.StatusForbidden, ClassAuth, false},
		{http.StatusInternalServerError, ClassServerError, true},
		{http.StatusBadGateway, ClassServerError, true},
		{http.StatusTeapot, ClassMalformed, false},
	}

	for _, tc := range cases {
		err := NewUpstreamError("neynar", tc.status)
		if err.Class != tc.class {
			t.Errorf("status %d: expected class %s, got %s", tc.status, tc.class, err.Class)
		}
		if err.Retryable() != tc.retryable {
			t.Errorf("status %d: expected retryable=%v", tc.status, tc.retryable)
		}
	}
}

func TestRateLimitedSelectsLongerSchedule(t *testing.T) {
	err := NewUpstreamError("neynar", http.StatusTooManyRequests)
	if !err.RateLimited() {
		t.Fatal("expected rate-limited classification")
	}
	if NewUpstreamError("neynar", http.StatusInternalServerError).RateLimited() {
		t.Fatal("server errors must use the ordinary schedule")
	}
}

func TestTransportErrorIsRetryable(t *testing.T) {
	err := NewTransportError("warpcast", errors.New("connection refused"))
	if !err.Retryable() {
		t.Fatal("expected transport failures to be retryable")
	}
}

func TestMalformedErrorIsFatal(t *testing.T) {
	err := NewMalformedError("quotient", errors.New("unexpected EOF"))
	if err.Retryable() {
		t.Fatal("expected malformed responses to be fatal")
	}
}

func TestExhaustedErrorUnwrapsToLast(t *testing.T) {
	last := NewUpstreamError("neynar", http.StatusServiceUnavailable)
	wrapped := &ExhaustedError{Attempts: 3, Last: last}

	var exhausted *ExhaustedError
	if !errors.As(fmt.Errorf("cascade step: %w", wrapped), &exhausted) {
		t.Fatal("expected errors.As to find ExhaustedError")
	}
	if exhausted.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", exhausted.Attempts)
	}

	pe, ok := AsProviderError(wrapped)
	if !ok || pe.Class != ClassServerError {
		t.Fatalf("expected underlying server error, got %v", pe)
	}
}
