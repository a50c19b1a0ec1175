package domain

// Validation status values produced by the validation stage.
const (
	ValidationPass = "pass"
	ValidationWarn = "warn"
	ValidationFail = "fail"
)

// Confidence markers attached to stage judgments.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// ValidationAssessment is the validation stage's judgment of data-quality
// signals in the input payload.
type ValidationAssessment struct {
	Status     string   `json:"status"`     // pass|warn|fail
	Confidence string   `json:"confidence"` // low|medium|high
	Issues     []string `json:"issues,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// Risk levels produced by the analysis stage. RiskIndeterminate marks the
// deterministic fallback, which refuses to judge risk without the backend.
const (
	RiskLow           = "low"
	RiskMedium        = "medium"
	RiskHigh          = "high"
	RiskIndeterminate = "indeterminate"
)

// MaterialFinding is one variance the analysis stage flagged as exceeding
// the materiality threshold.
type MaterialFinding struct {
	Account   string  `json:"account"`
	Variance  float64 `json:"variance"`
	Threshold float64 `json:"threshold"`
	Note      string  `json:"note,omitempty"`
}

// RiskAnalysis is the analysis stage's overall risk classification plus the
// material subset of numeric findings. MaterialFindings gates the
// investigation stage: an empty subset short-circuits it.
type RiskAnalysis struct {
	RiskLevel        string            `json:"risk_level"` // low|medium|high|indeterminate
	MaterialFindings []MaterialFinding `json:"material_findings"`
	Rationale        string            `json:"rationale,omitempty"`
}

// InvestigationFinding is one explained material variance.
type InvestigationFinding struct {
	Account           string  `json:"account"`
	Variance          float64 `json:"variance"`
	ProbableCause     string  `json:"probable_cause"`
	SuggestedAction   string  `json:"suggested_action,omitempty"`
	NeedsManualReview bool    `json:"needs_manual_review"`
}

// ReportNarrative is the report stage's closing narrative. Generated is
// false when the narrative is the deterministic fallback; the numeric
// reconciliation itself completed regardless.
type ReportNarrative struct {
	Headline  string `json:"headline"`
	Body      string `json:"body"`
	Generated bool   `json:"generated"`
}
