// Package domain provides the core types for reconciliation pipeline runs.
// It defines the immutable run input, the per-stage payloads, and the
// aggregate result consumed by the API layer. Nothing in this package is
// persisted or mutated after construction; lifetime is exactly one pipeline
// invocation.
package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is the shared validator instance for domain types.
var validate = validator.New()

// AccountBalance is one account's opening and closing balance as supplied
// by the caller.
type AccountBalance struct {
	Account string  `json:"account" validate:"required"`
	Opening float64 `json:"opening"`
	Closing float64 `json:"closing"`
}

// Transaction is one ledger movement from the caller-supplied payload.
type Transaction struct {
	ID          string    `json:"id"`
	Account     string    `json:"account" validate:"required"`
	PostedAt    time.Time `json:"posted_at"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
}

// ReconciliationPayload is the caller-supplied reconciliation input:
// account balances plus the transactions that should explain their movement.
type ReconciliationPayload struct {
	Balances     []AccountBalance `json:"balances" validate:"required,min=1,dive"`
	Transactions []Transaction    `json:"transactions" validate:"dive"`
}

// AccountVariance is one account's unexplained difference between reported
// and computed closing positions, produced by the local-computation
// collaborator.
type AccountVariance struct {
	Account  string  `json:"account" validate:"required"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	Variance float64 `json:"variance"`
}

// RollForwardEntry is one account's opening + activity = closing roll-forward
// as computed locally.
type RollForwardEntry struct {
	Account         string  `json:"account" validate:"required"`
	Opening         float64 `json:"opening"`
	Activity        float64 `json:"activity"`
	ComputedClosing float64 `json:"computed_closing"`
	ReportedClosing float64 `json:"reported_closing"`
}

// ComputedSummary is the pre-computed numeric summary consumed as an opaque
// input: the pipeline never recomputes these figures, it only reasons about
// them.
type ComputedSummary struct {
	MaterialityThreshold float64            `json:"materiality_threshold" validate:"gte=0"`
	Variances            []AccountVariance  `json:"variances" validate:"dive"`
	RollForward          []RollForwardEntry `json:"roll_forward" validate:"dive"`
	TransactionSample    []Transaction      `json:"transaction_sample" validate:"dive"`
}

// MaterialVariances returns the subset of variances whose absolute value
// exceeds the materiality threshold. This is local arithmetic over figures
// already known to be true, so fallbacks may echo it without fabricating
// findings.
func (s ComputedSummary) MaterialVariances() []AccountVariance {
	var material []AccountVariance
	for _, v := range s.Variances {
		if math.Abs(v.Variance) > s.MaterialityThreshold {
			material = append(material, v)
		}
	}
	return material
}

// RunContext is the immutable input to one pipeline invocation. It is
// produced once by the API layer and never mutated inside the pipeline.
type RunContext struct {
	// RunID correlates the invocation across logs, metrics, and the result.
	RunID string `json:"run_id" validate:"required,uuid4"`

	// Intent is the free-text user intent for this reconciliation.
	Intent string `json:"intent"`

	// Payload is the caller-supplied reconciliation input.
	Payload ReconciliationPayload `json:"payload" validate:"required"`

	// Summary is the pre-computed numeric summary.
	Summary ComputedSummary `json:"summary" validate:"required"`
}

// NewRunContext constructs a RunContext with a fresh run ID.
func NewRunContext(intent string, payload ReconciliationPayload, summary ComputedSummary) RunContext {
	return RunContext{
		RunID:   uuid.New().String(),
		Intent:  intent,
		Payload: payload,
		Summary: summary,
	}
}

// Validate checks structural validity of the run context.
func (rc *RunContext) Validate() error {
	if err := validate.Struct(rc); err != nil {
		return fmt.Errorf("invalid run context: %w", err)
	}
	return nil
}
