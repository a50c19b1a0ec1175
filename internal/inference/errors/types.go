// Package errors defines the failure taxonomy for inference backend calls.
// It provides typed errors, sentinel errors, and a total classifier so that
// retry and user-messaging decisions never depend on provider-specific error
// shapes outside this package.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes inference failures for retry classification.
// Types determine whether an attempt should be retried and how the failure
// is surfaced to callers.
type ErrorType string

const (
	// ErrorTypeRateLimit indicates the backend rejected the call due to rate
	// limiting. This is the only retryable failure type.
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// ErrorTypeTimeout indicates the call exceeded its deadline.
	ErrorTypeTimeout ErrorType = "timeout"

	// ErrorTypeConnection indicates a network-level failure reaching the backend.
	ErrorTypeConnection ErrorType = "connection"

	// ErrorTypeMalformed indicates the backend replied but the content did not
	// match the expected shape.
	ErrorTypeMalformed ErrorType = "malformed_response"

	// ErrorTypeUnconfigured indicates no backend credential is configured.
	ErrorTypeUnconfigured ErrorType = "unconfigured"

	// ErrorTypeUnknown indicates an unclassified failure.
	ErrorTypeUnknown ErrorType = "unknown"
)

// Category is the user-relevant failure category exposed to callers that
// choose messaging. It is a deliberate reduction of ErrorType: callers only
// distinguish "temporarily limited" from timeouts, connectivity, and
// everything else.
type Category string

const (
	// CategoryRateLimit indicates the backend is temporarily limiting calls.
	CategoryRateLimit Category = "rate_limit"

	// CategoryTimeout indicates the call timed out.
	CategoryTimeout Category = "timeout"

	// CategoryConnection indicates the backend was unreachable.
	CategoryConnection Category = "connection_failure"

	// CategoryGeneric covers every other failure.
	CategoryGeneric Category = "generic"
)

// Sentinel errors for consistent error handling across the client and pipeline.
var (
	// ErrUnconfigured indicates no backend credential is configured.
	// It is permanent for the process: callers should fall back immediately
	// without retrying.
	ErrUnconfigured = errors.New("inference client not configured")

	// ErrRateLimited indicates the backend rate limit has been exceeded.
	ErrRateLimited = errors.New("inference rate limit exceeded")

	// ErrMalformedResponse indicates the backend replied with content that
	// did not match the expected shape.
	ErrMalformedResponse = errors.New("malformed inference response")

	// ErrEmptyResponse indicates the backend returned no candidates.
	ErrEmptyResponse = errors.New("empty inference response")
)

// ProviderError captures a structured error response from the inference
// backend. It carries the HTTP status, the provider error code, the
// classified type, and any server-supplied retry hint.
type ProviderError struct {
	Provider   string    `json:"provider"`
	StatusCode int       `json:"status_code"`
	Message    string    `json:"message"`
	Code       string    `json:"code"`
	Type       ErrorType `json:"type"`
	RetryHint  string    `json:"retry_hint,omitempty"` // Server-supplied wait, e.g. "12s"
}

// Error returns the formatted provider error with status code context.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsRetryable reports whether the error warrants another attempt.
// Only rate-limit failures are retryable: timeouts, connection failures, and
// malformed responses are fatal for the current attempt and resolved by the
// stage fallback instead.
func (e *ProviderError) IsRetryable() bool {
	return e.Type == ErrorTypeRateLimit
}

// GetRetryHint implements HintProvider.
func (e *ProviderError) GetRetryHint() string { return e.RetryHint }

// RateLimitError provides rate-limit context for backoff calculation,
// including the server-supplied retry hint when the backend sent one.
type RateLimitError struct {
	Provider  string `json:"provider"`
	RetryHint string `json:"retry_hint,omitempty"` // Suggested wait, e.g. "12s"
	Limit     int    `json:"limit,omitempty"`
	Remaining int    `json:"remaining,omitempty"`
}

// Error returns the formatted rate-limit error with retry guidance.
func (e *RateLimitError) Error() string {
	if e.RetryHint != "" {
		return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.Provider, e.RetryHint)
	}
	return fmt.Sprintf("rate limit exceeded for %s", e.Provider)
}

// GetRetryHint implements HintProvider.
func (e *RateLimitError) GetRetryHint() string { return e.RetryHint }

// Unwrap lets errors.Is match the ErrRateLimited sentinel.
func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// HintProvider is implemented by error types that carry a server-supplied
// retry hint. The backoff policy honors the hint before the next attempt.
type HintProvider interface {
	// GetRetryHint returns the suggested wait as a duration string ("12s"),
	// or "" when the server supplied none.
	GetRetryHint() string
}

// RetryHint extracts a server-supplied retry hint from an error chain.
// Returns "" when no hint is available.
func RetryHint(err error) string {
	var provider HintProvider
	if errors.As(err, &provider) {
		return provider.GetRetryHint()
	}
	return ""
}
