package inference

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahrav/go-recon/internal/inference/transport"
)

// newLoggingMiddleware returns middleware that logs every backend call with
// its stage operation, latency, and outcome. Failures log at warn so a
// degraded run is visible without debug logging.
func newLoggingMiddleware() transport.Middleware {
	logger := slog.Default().With("component", "inference")

	return func(next transport.Handler) transport.Handler {
		return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			start := time.Now()
			resp, err := next.Handle(ctx, req)
			latency := time.Since(start)

			if err != nil {
				logger.Warn("inference call failed",
					"operation", req.Operation,
					"run_id", req.RunID,
					"latency", latency,
					"error", err)
				return resp, err
			}

			logger.Debug("inference call completed",
				"operation", req.Operation,
				"run_id", req.RunID,
				"latency", latency,
				"total_tokens", resp.Usage.TotalTokens)
			return resp, nil
		})
	}
}
