// Package retry provides the backoff policy governing waits between
// rate-limited inference attempts.
package retry

import (
	"strconv"
	"time"

	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
)

// DefaultDelay is the wait applied when the backend supplied no usable
// retry hint.
const DefaultDelay = 10 * time.Second

// Policy computes the wait before a retry. A server-supplied hint always
// takes precedence over the fixed default: the hint is advisory backpressure
// from the backend and the policy never invents a shorter wait.
type Policy struct {
	// Default is the wait used when no hint is present or parseable.
	// Zero means DefaultDelay.
	Default time.Duration
}

// NewPolicy returns a policy with the standard default wait.
func NewPolicy() Policy {
	return Policy{Default: DefaultDelay}
}

// Delay returns the wait to apply before the next attempt for the given
// failure. It extracts the server-supplied hint from the error chain and
// parses it; on absence or any parse failure it falls back to the default.
func (p Policy) Delay(err error) time.Duration {
	if d := parseHint(inferrors.RetryHint(err)); d > 0 {
		return d
	}
	if p.Default > 0 {
		return p.Default
	}
	return DefaultDelay
}

// parseHint converts a server-supplied hint into a duration.
// Hints arrive as duration strings ("12s") or bare second counts ("12");
// anything else parses to zero.
func parseHint(hint string) time.Duration {
	if hint == "" {
		return 0
	}

	if d, err := time.ParseDuration(hint); err == nil && d > 0 {
		return d
	}

	if seconds, err := strconv.Atoi(hint); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return 0
}
