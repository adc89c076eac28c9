package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorClass categorizes a provider failure for retry and backoff
// decisions.
type ErrorClass string

const (
	// ClassTransport covers network and connection failures.
	ClassTransport ErrorClass = "transport"
	// ClassAuth covers permanent authentication failures.
	ClassAuth ErrorClass = "auth"
	// ClassNotFound means the identity does not exist upstream.
	ClassNotFound ErrorClass = "not_found"
	// ClassRateLimited triggers the longer backoff schedule.
	ClassRateLimited ErrorClass = "rate_limited"
	// ClassServerError covers upstream 5xx responses.
	ClassServerError ErrorClass = "server_error"
	// ClassMalformed means the response could not be parsed or was
	// missing required fields.
	ClassMalformed ErrorClass = "malformed"
)

// Error is a classified provider failure. Retryable errors are
// re-attempted by the retry policy; fatal ones propagate immediately so
// the cascade can move on to the next provider.
type Error struct {
	Provider string
	Class    ErrorClass
	Status   int // HTTP status when applicable, 0 otherwise
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Class, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the retry policy should re-attempt.
func (e *Error) Retryable() bool {
	switch e.Class {
	case ClassTransport, ClassRateLimited, ClassServerError:
		return true
	default:
		return false
	}
}

// RateLimited reports whether the longer cooldown schedule applies.
func (e *Error) RateLimited() bool {
	return e.Class == ClassRateLimited
}

// NewTransportError wraps a network-level failure.
func NewTransportError(providerName string, err error) *Error {
	return &Error{Provider: providerName, Class: ClassTransport, Err: err}
}

// NewMalformedError wraps an unparseable or incomplete response.
func NewMalformedError(providerName string, err error) *Error {
	return &Error{Provider: providerName, Class: ClassMalformed, Err: err}
}

// NewUpstreamError classifies a non-success HTTP status.
func NewUpstreamError(providerName string, status int) *Error {
	var class ErrorClass
	switch {
	case status == http.StatusTooManyRequests:
		class = ClassRateLimited
	case status == http.StatusNotFound:
		class = ClassNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		class = ClassAuth
	case status >= 500:
		class = ClassServerError
	default:
		class = ClassMalformed
	}
	return &Error{
		Provider: providerName,
		Class:    class,
		Status:   status,
		Err:      fmt.Errorf("unexpected status %d", status),
	}
}

// ExhaustedError wraps the last observed error after the retry policy
// gives up. Callers can distinguish "retries exhausted" from an
// immediately fatal failure via errors.As.
type ExhaustedError struct {
	Attempts int
	Last     *Error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// AsProviderError extracts the classified provider error from err,
// looking through an ExhaustedError wrapper if present.
func AsProviderError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
