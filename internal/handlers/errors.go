package handlers

import (
	"net/http"

	"github.com/samrat1446/farcaster-mini-app/internal/provider"
)

// userFacingError is the error body returned to API clients, carrying
// enough for the caller to decide whether to retry or back off.
type userFacingError struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
	Action    string `json:"action"` // retry | queue | none
}

// mapProviderError translates a scoring failure into an HTTP status
// and a user-facing body based on the classified upstream error.
func mapProviderError(err error) (int, userFacingError) {
	pe, ok := provider.AsProviderError(err)
	if !ok {
		return http.StatusInternalServerError, userFacingError{
			Error:     "An unexpected error occurred.",
			Retryable: true,
			Action:    "retry",
		}
	}

	switch pe.Class {
	case provider.ClassNotFound:
		return http.StatusNotFound, userFacingError{
			Error:     "User not found on Farcaster.",
			Retryable: false,
			Action:    "none",
		}
	case provider.ClassRateLimited:
		return http.StatusTooManyRequests, userFacingError{
			Error:     "Too many requests. Please wait a moment.",
			Retryable: true,
			Action:    "queue",
		}
	case provider.ClassAuth:
		return http.StatusBadGateway, userFacingError{
			Error:     "Authentication failed. Please try again.",
			Retryable: true,
			Action:    "retry",
		}
	case provider.ClassServerError, provider.ClassTransport:
		return http.StatusServiceUnavailable, userFacingError{
			Error:     "Service temporarily unavailable.",
			Retryable: true,
			Action:    "retry",
		}
	default:
		return http.StatusInternalServerError, userFacingError{
			Error:     "An unexpected error occurred.",
			Retryable: true,
			Action:    "retry",
		}
	}
}
