package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-recon/internal/domain"
)

var (
	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recon",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Wall-clock duration of each pipeline stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	stageRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recon",
		Subsystem: "pipeline",
		Name:      "stage_retries_total",
		Help:      "Rate-limit retries performed per stage.",
	}, []string{"stage"})

	stageFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recon",
		Subsystem: "pipeline",
		Name:      "stage_fallbacks_total",
		Help:      "Stages resolved by their deterministic fallback.",
	}, []string{"stage"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recon",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Completed pipeline runs by terminal outcome.",
	}, []string{"outcome"})
)

func observeStage(stage domain.Stage, status domain.StageStatus) {
	stageDuration.WithLabelValues(string(stage)).Observe(float64(status.DurationMs) / 1000)
	if status.RetryCount > 0 {
		stageRetries.WithLabelValues(string(stage)).Add(float64(status.RetryCount))
	}
	if status.UsedFallback {
		stageFallbacks.WithLabelValues(string(stage)).Inc()
	}
}

func observeRun(result *domain.PipelineResult) {
	outcome := "success"
	if result.Degraded() {
		outcome = "degraded"
	}
	runsTotal.WithLabelValues(outcome).Inc()
}
