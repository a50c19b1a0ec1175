package inference

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
	"github.com/ahrav/go-recon/internal/inference/transport"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recon",
		Subsystem: "inference",
		Name:      "requests_total",
		Help:      "Backend calls by stage operation and outcome.",
	}, []string{"operation", "outcome"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recon",
		Subsystem: "inference",
		Name:      "request_duration_seconds",
		Help:      "Backend call latency by stage operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// newMetricsMiddleware returns middleware recording per-call counters and
// latency. Failure outcomes are labeled with the classified error type so
// rate-limit pressure is distinguishable from backend faults.
func newMetricsMiddleware() transport.Middleware {
	return func(next transport.Handler) transport.Handler {
		return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			start := time.Now()
			resp, err := next.Handle(ctx, req)

			requestLatency.WithLabelValues(string(req.Operation)).Observe(time.Since(start).Seconds())

			outcome := "success"
			if err != nil {
				outcome = string(inferrors.TypeOf(err))
			}
			requestsTotal.WithLabelValues(string(req.Operation), outcome).Inc()

			return resp, err
		})
	}
}
