// Package pipeline implements the resilient multi-stage reconciliation
// pipeline: four ordered inference stages, each wrapped in a retry policy
// and a deterministic fallback, sequenced by the orchestrator into an
// aggregate result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
	"github.com/ahrav/go-recon/internal/inference/retry"
)

// Execute runs one unit of stage work with retry semantics.
// fn is attempted up to maxRetries+1 times total. Retries occur only when
// the failure classifies as rate limiting and attempts remain, with the
// backoff policy governing the wait before the next attempt. Any other
// failure kind propagates on first occurrence: rate-limit errors are
// expected and temporary, everything else is either fast to fail or not
// improved by blind retrying.
//
// The returned int is the number of retries performed before the terminal
// outcome. The wait is cancellable; a fired context aborts the loop with the
// context's error in the chain.
func Execute[T any](
	ctx context.Context,
	policy retry.Policy,
	maxRetries int,
	label string,
	fn func(context.Context) (T, error),
) (T, int, error) {
	var zero T
	logger := slog.Default().With("component", "executor", "stage", label)

	for attempt := 0; ; attempt++ {
		value, err := fn(ctx)
		if err == nil {
			return value, attempt, nil
		}

		if !inferrors.IsRateLimit(err) {
			return zero, attempt, err
		}

		if attempt == maxRetries {
			logger.Warn("rate limit retries exhausted", "retries", attempt, "error", err)
			return zero, attempt, err
		}

		delay := policy.Delay(err)
		logger.Debug("rate limited, backing off", "attempt", attempt+1, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, attempt, fmt.Errorf("%s cancelled during backoff: %w", label, ctx.Err())
		}
	}
}
