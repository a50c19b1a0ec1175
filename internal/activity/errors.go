package activity

import (
	"errors"

	"go.temporal.io/sdk/temporal"
)

// Activity-level errors for operational classification.
var (
	// ErrActivityValidation is returned when activity input validation fails
	// due to missing required fields or constraint violations. Non-retryable.
	ErrActivityValidation = errors.New("activity input validation failed")
)

// nonRetryable wraps an error as a Temporal non-retryable application error.
// Used for validation failures and other conditions that re-execution cannot
// fix. The tag parameter categorizes the error for monitoring.
func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}
