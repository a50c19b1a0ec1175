package domain

import (
	"errors"
	"time"
)

// ErrRunCancelled is returned by the orchestrator when the caller's
// cancellation signal fired. The run terminates in an explicit cancelled
// state instead of returning a partially-filled result.
var ErrRunCancelled = errors.New("pipeline run cancelled")

// PipelineResult aggregates the four stage outputs of one invocation.
// It is immutable once returned. Partial success - some stages resolved by
// fallback - is the normal terminal state, not an error.
type PipelineResult struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	Validation    StageOutput[ValidationAssessment]   `json:"validation"`
	Analysis      StageOutput[RiskAnalysis]           `json:"analysis"`
	Investigation StageOutput[[]InvestigationFinding] `json:"investigation"`
	Report        StageOutput[ReportNarrative]        `json:"report"`
}

// Statuses returns the per-stage statuses keyed by stage name, covering
// every stage in execution order.
func (r *PipelineResult) Statuses() map[Stage]StageStatus {
	stages := Stages()
	statuses := make(map[Stage]StageStatus, len(stages))
	for _, stage := range stages {
		statuses[stage] = r.statusFor(stage)
	}
	return statuses
}

func (r *PipelineResult) statusFor(stage Stage) StageStatus {
	switch stage {
	case StageValidation:
		return r.Validation.Status
	case StageAnalysis:
		return r.Analysis.Status
	case StageInvestigation:
		return r.Investigation.Status
	case StageReport:
		return r.Report.Status
	}
	return StageStatus{}
}

// Degraded reports whether any stage was resolved by its fallback.
// The API layer uses this to distinguish "full success" from "degraded but
// complete" when choosing user-facing wording.
func (r *PipelineResult) Degraded() bool {
	for _, status := range r.Statuses() {
		if status.UsedFallback {
			return true
		}
	}
	return false
}
