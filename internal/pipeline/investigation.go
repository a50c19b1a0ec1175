package pipeline

import (
	"context"

	"github.com/ahrav/go-recon/internal/domain"
)

// runInvestigation explains the variances Analysis flagged as material.
// The orchestrator only invokes it when the material subset is non-empty;
// the empty case short-circuits before this method with no backend call.
func (o *Orchestrator) runInvestigation(
	ctx context.Context,
	rc domain.RunContext,
	analysis *domain.RiskAnalysis,
) (domain.StageOutput[[]domain.InvestigationFinding], error) {
	data, retries, err := Execute(ctx, o.policy, o.maxRetries, string(domain.StageInvestigation),
		func(ctx context.Context) ([]domain.InvestigationFinding, error) {
			return submitDecoded[[]domain.InvestigationFinding](ctx, o.client, investigationRequest(rc, analysis))
		})
	if err != nil {
		if ctx.Err() != nil {
			return domain.StageOutput[[]domain.InvestigationFinding]{}, err
		}
		o.logger.Warn("investigation stage degraded to fallback", "run_id", rc.RunID, "error", err)
		fb := fallbackInvestigation(*analysis)
		return domain.StageOutput[[]domain.InvestigationFinding]{
			Data:   &fb,
			Status: domain.FallbackStatus(retries, err.Error()),
		}, nil
	}

	if data == nil {
		data = []domain.InvestigationFinding{}
	}

	return domain.StageOutput[[]domain.InvestigationFinding]{
		Data:   &data,
		Status: domain.SucceededStatus(retries),
	}, nil
}
