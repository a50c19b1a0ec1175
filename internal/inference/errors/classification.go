package errors

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Classify maps any error into exactly one user-relevant Category.
// It is total: typed errors are inspected first, then sentinels, then string
// patterns, and everything unmatched lands in CategoryGeneric. Callers use
// the category to pick messaging ("temporarily limited" vs. a generic
// degradation notice); retry decisions use IsRateLimit instead.
func Classify(err error) Category {
	if err == nil {
		return CategoryGeneric
	}

	if t := TypeOf(err); t != ErrorTypeUnknown {
		switch t {
		case ErrorTypeRateLimit:
			return CategoryRateLimit
		case ErrorTypeTimeout:
			return CategoryTimeout
		case ErrorTypeConnection:
			return CategoryConnection
		default:
			return CategoryGeneric
		}
	}

	return CategoryGeneric
}

// TypeOf resolves the internal ErrorType for an error chain.
// Typed errors take precedence over sentinels, which take precedence over
// string-pattern matching on untyped errors.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return ErrorTypeRateLimit
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Type
	}

	switch {
	case errors.Is(err, ErrUnconfigured):
		return ErrorTypeUnconfigured
	case errors.Is(err, ErrRateLimited):
		return ErrorTypeRateLimit
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrEmptyResponse):
		return ErrorTypeMalformed
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	}

	if isNetworkError(err) {
		return ErrorTypeConnection
	}

	return typeFromString(err.Error())
}

// IsRateLimit reports whether an error chain is a rate-limit failure.
// The stage executor retries exactly this condition and nothing else.
func IsRateLimit(err error) bool {
	return TypeOf(err) == ErrorTypeRateLimit
}

// IsUnconfigured reports whether the error chain stems from a missing
// backend credential.
func IsUnconfigured(err error) bool {
	return errors.Is(err, ErrUnconfigured)
}

// isNetworkError detects network-level failures via type assertions before
// falling back to string indicators, mirroring net's error hierarchy.
func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		// A timed-out net.Error classifies as timeout, not connection.
		return !netErr.Timeout()
	}

	return false
}

// typeFromString classifies untyped errors by message pattern.
func typeFromString(msg string) ErrorType {
	lowered := strings.ToLower(msg)

	switch {
	case strings.Contains(lowered, "rate limit"),
		strings.Contains(lowered, "resource_exhausted"),
		strings.Contains(lowered, "429"):
		return ErrorTypeRateLimit
	case strings.Contains(lowered, "timeout"),
		strings.Contains(lowered, "deadline"):
		return ErrorTypeTimeout
	case strings.Contains(lowered, "connection refused"),
		strings.Contains(lowered, "connection reset"),
		strings.Contains(lowered, "broken pipe"),
		strings.Contains(lowered, "no such host"),
		strings.Contains(lowered, "network is unreachable"),
		strings.Contains(lowered, "connection"):
		return ErrorTypeConnection
	default:
		return ErrorTypeUnknown
	}
}
