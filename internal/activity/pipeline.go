// Package activity hosts the Temporal activity that wraps one reconciliation
// pipeline run. The activity is deliberately a single unit: splitting stages
// into separate activities would put stage retry decisions under Temporal's
// control, and the pipeline already owns those.
package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahrav/go-recon/internal/domain"
	"github.com/ahrav/go-recon/internal/inference"
	"github.com/ahrav/go-recon/internal/pipeline"
)

// PipelineActivities bundles the reconciliation activity with its
// orchestrator dependency.
type PipelineActivities struct {
	orchestrator *pipeline.Orchestrator
}

// NewPipelineActivities creates the activity set around an inference client.
func NewPipelineActivities(client inference.Client, opts ...pipeline.Option) *PipelineActivities {
	return &PipelineActivities{
		orchestrator: pipeline.NewOrchestrator(client, opts...),
	}
}

// RunReconciliation executes the full pipeline for one run context.
// A degraded result (fallback stages) is a successful activity outcome.
// Validation failures are non-retryable; cancellation propagates as-is so
// Temporal records the activity as cancelled rather than failed.
func (a *PipelineActivities) RunReconciliation(
	ctx context.Context,
	rc domain.RunContext,
) (*domain.PipelineResult, error) {
	SafeLog(ctx, "reconciliation run starting", "run_id", rc.RunID)
	RecordHeartbeat(ctx, rc.RunID)

	// Beat for the whole run, including backoff waits inside stages.
	stop := recordHeartbeats(ctx, heartbeatInterval, func() {
		RecordHeartbeat(ctx, rc.RunID)
	})
	defer stop()

	result, err := a.orchestrator.Run(ctx, rc)
	if err != nil {
		if errors.Is(err, domain.ErrRunCancelled) {
			SafeLogError(ctx, "reconciliation run cancelled", "run_id", rc.RunID)
			return nil, err
		}
		return nil, nonRetryable("Validation",
			fmt.Errorf("%w: %v", ErrActivityValidation, err),
			"reconciliation run rejected")
	}

	SafeLog(ctx, "reconciliation run completed",
		"run_id", rc.RunID, "degraded", result.Degraded())
	return result, nil
}
