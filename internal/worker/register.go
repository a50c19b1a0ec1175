// Package worker exposes helpers to register the reconciliation workflow and
// activity with a Temporal worker, plus initialization utilities executed
// during worker startup.
package worker

import (
	sdkactivity "go.temporal.io/sdk/activity"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-recon/internal/activity"
	"github.com/ahrav/go-recon/internal/inference"
	"github.com/ahrav/go-recon/internal/pipeline"
	"github.com/ahrav/go-recon/internal/workflow"
)

// TaskQueue is the Temporal task queue for reconciliation runs.
const TaskQueue = "reconciliation"

// RegisterAll registers the workflow and activities with the Temporal worker.
// Must be called during worker initialization before starting the worker;
// registration is not thread-safe and should only happen once. Pipeline
// options carry configured retry behavior into the orchestrator.
func RegisterAll(w sdkworker.Worker, client inference.Client, opts ...pipeline.Option) {
	acts := activity.NewPipelineActivities(client, opts...)

	w.RegisterWorkflow(workflow.ReconciliationWorkflow)
	w.RegisterActivityWithOptions(acts.RunReconciliation, sdkactivity.RegisterOptions{
		Name: workflow.RunReconciliationActivity,
	})
}
