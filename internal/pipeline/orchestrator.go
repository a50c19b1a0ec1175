package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahrav/go-recon/internal/domain"
	"github.com/ahrav/go-recon/internal/inference"
	"github.com/ahrav/go-recon/internal/inference/retry"
)

// Orchestrator sequences the four stages of a reconciliation run. Stage
// failures degrade to fallbacks; the only errors Run returns are input
// validation failures and cancellation.
type Orchestrator struct {
	client     inference.Client
	policy     retry.Policy
	maxRetries int
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRetryPolicy overrides the backoff policy applied between rate-limited
// attempts.
func WithRetryPolicy(p retry.Policy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithMaxRetries overrides the per-stage retry cap. Negative values are
// clamped to zero, meaning a single attempt per stage.
func WithMaxRetries(n int) Option {
	return func(o *Orchestrator) {
		if n < 0 {
			n = 0
		}
		o.maxRetries = n
	}
}

// WithLogger overrides the orchestrator's logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// DefaultMaxRetries is the per-stage retry cap when not overridden: two
// retries, three attempts total.
const DefaultMaxRetries = 2

// NewOrchestrator creates an orchestrator around the given inference client.
func NewOrchestrator(client inference.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:     client,
		policy:     retry.NewPolicy(),
		maxRetries: DefaultMaxRetries,
		logger:     slog.Default().With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the full pipeline for one run context. The result is complete
// on return: every stage carries either a real result, a fallback, or a
// skip marker. Cancellation is the exception; a fired caller context yields
// ErrRunCancelled and no result at all.
func (o *Orchestrator) Run(ctx context.Context, rc domain.RunContext) (*domain.PipelineResult, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}

	logger := o.logger.With("run_id", rc.RunID)
	logger.Info("pipeline run started",
		"accounts", len(rc.Payload.Balances),
		"transactions", len(rc.Payload.Transactions),
		"configured", o.client.Configured())

	result := &domain.PipelineResult{
		RunID:     rc.RunID,
		StartedAt: time.Now().UTC(),
	}

	// Validation.
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	start := time.Now()
	validation, err := o.runValidation(ctx, rc)
	if err != nil {
		return nil, cancelled(err)
	}
	validation.Status.DurationMs = time.Since(start).Milliseconds()
	observeStage(domain.StageValidation, validation.Status)
	result.Validation = validation

	// Analysis.
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	start = time.Now()
	analysis, err := o.runAnalysis(ctx, rc, validation.Data)
	if err != nil {
		return nil, cancelled(err)
	}
	analysis.Status.DurationMs = time.Since(start).Milliseconds()
	observeStage(domain.StageAnalysis, analysis.Status)
	result.Analysis = analysis

	// Investigation runs only when Analysis surfaced material findings.
	// The skip is a successful zero-cost outcome with a well-formed empty
	// collection, not an omission.
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	if len(analysis.Data.MaterialFindings) == 0 {
		logger.Info("investigation skipped, no material findings")
		empty := []domain.InvestigationFinding{}
		result.Investigation = domain.StageOutput[[]domain.InvestigationFinding]{
			Data:   &empty,
			Status: domain.SkippedStatus(),
		}
	} else {
		start = time.Now()
		investigation, err := o.runInvestigation(ctx, rc, analysis.Data)
		if err != nil {
			return nil, cancelled(err)
		}
		investigation.Status.DurationMs = time.Since(start).Milliseconds()
		observeStage(domain.StageInvestigation, investigation.Status)
		result.Investigation = investigation
	}

	// Report.
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	start = time.Now()
	report, err := o.runReport(ctx, rc, validation.Data, analysis.Data, *result.Investigation.Data)
	if err != nil {
		return nil, cancelled(err)
	}
	report.Status.DurationMs = time.Since(start).Milliseconds()
	observeStage(domain.StageReport, report.Status)
	result.Report = report

	result.CompletedAt = time.Now().UTC()
	observeRun(result)
	logger.Info("pipeline run completed",
		"degraded", result.Degraded(),
		"duration_ms", result.CompletedAt.Sub(result.StartedAt).Milliseconds())

	return result, nil
}

// cancelled wraps a stage or pre-stage error into the terminal cancelled
// state. Stage methods only return errors when the caller's context fired,
// so everything arriving here is a cancellation.
func cancelled(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrRunCancelled, err)
}
