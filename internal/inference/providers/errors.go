package providers

import (
	"net/http"
	"strings"

	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
)

// classifyErrorType determines ErrorType from the HTTP status and the
// provider's error status string. The status string is checked first because
// some backends return rate-limit conditions under generic HTTP statuses.
func classifyErrorType(statusCode int, errorStatus string) inferrors.ErrorType {
	lowered := strings.ToLower(errorStatus)
	if strings.Contains(lowered, "resource_exhausted") ||
		strings.Contains(lowered, "rate") ||
		strings.Contains(lowered, "limit") {
		return inferrors.ErrorTypeRateLimit
	}
	if strings.Contains(lowered, "deadline") || strings.Contains(lowered, "timeout") {
		return inferrors.ErrorTypeTimeout
	}
	if strings.Contains(lowered, "unavailable") {
		return inferrors.ErrorTypeConnection
	}

	switch statusCode {
	case http.StatusTooManyRequests:
		return inferrors.ErrorTypeRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return inferrors.ErrorTypeTimeout
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return inferrors.ErrorTypeConnection
	default:
		return inferrors.ErrorTypeUnknown
	}
}
