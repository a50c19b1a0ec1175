package domain

// Stage identifies one unit of work in the pipeline.
type Stage string

const (
	// StageValidation judges data-quality signals from the input payload.
	StageValidation Stage = "validation"

	// StageAnalysis classifies overall risk and extracts material findings.
	StageAnalysis Stage = "analysis"

	// StageInvestigation explains variances exceeding materiality. It only
	// runs when Analysis produced a non-empty material subset.
	StageInvestigation Stage = "investigation"

	// StageReport synthesizes the closing narrative.
	StageReport Stage = "report"
)

// Stages returns the four pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{StageValidation, StageAnalysis, StageInvestigation, StageReport}
}

// StageStatus records how one stage concluded. For a completed stage exactly
// one of Success or UsedFallback holds; a stage that never ran (skipped)
// reports Success with zero retries and no fallback.
type StageStatus struct {
	Success      bool   `json:"success"`
	RetryCount   int    `json:"retry_count"`
	UsedFallback bool   `json:"used_fallback"`
	Error        string `json:"error,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
}

// SucceededStatus builds the status for a stage that obtained a real result.
func SucceededStatus(retryCount int) StageStatus {
	return StageStatus{Success: true, RetryCount: retryCount}
}

// FallbackStatus builds the status for a stage resolved by its fallback.
func FallbackStatus(retryCount int, errMsg string) StageStatus {
	return StageStatus{UsedFallback: true, RetryCount: retryCount, Error: errMsg}
}

// SkippedStatus builds the status for a stage the orchestrator
// short-circuited without a backend call.
func SkippedStatus() StageStatus {
	return StageStatus{Success: true}
}

// StageOutput pairs a stage's payload with its status. Data carries the real
// result on success and the deterministic fallback otherwise.
type StageOutput[T any] struct {
	Data   *T          `json:"data"`
	Status StageStatus `json:"status"`
}
