// Package workflow defines the Temporal workflow for reconciliation runs.
// The workflow is a thin deterministic shell: it validates input, configures
// activity options, and delegates the entire pipeline to a single activity.
// Stage-level retry and fallback behavior lives inside the pipeline, so the
// activity runs with Temporal retries disabled to avoid double retry layers.
package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-recon/internal/domain"
)

// RunReconciliationActivity is the registered name of the pipeline activity.
const RunReconciliationActivity = "RunReconciliation"

// DefaultRunTimeout bounds one full pipeline run, covering four stages at
// their worst case of exhausted rate-limit backoffs.
const DefaultRunTimeout = 10 * time.Minute

// ReconciliationWorkflow executes one reconciliation run. All workflow code
// uses workflow-safe APIs only.
func ReconciliationWorkflow(
	ctx workflow.Context,
	rc domain.RunContext,
) (*domain.PipelineResult, error) {
	// Version gate enables safe evolution and backward compatibility.
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "reconciliation.v", workflow.DefaultVersion, currentVersion)

	if err := rc.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid run context",
			"Validation",
			err,
		)
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: DefaultRunTimeout,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			// The pipeline owns retry semantics per stage.
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var result domain.PipelineResult
	if err := workflow.ExecuteActivity(ctx, RunReconciliationActivity, rc).Get(ctx, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
