package pipeline

import (
	"context"

	"github.com/ahrav/go-recon/internal/domain"
)

// runAnalysis classifies the overall risk level and extracts the material
// subset of numeric findings. Always runs. Validation's output is context
// only: a fallback assessment upstream does not fail this stage.
func (o *Orchestrator) runAnalysis(
	ctx context.Context,
	rc domain.RunContext,
	validation *domain.ValidationAssessment,
) (domain.StageOutput[domain.RiskAnalysis], error) {
	data, retries, err := Execute(ctx, o.policy, o.maxRetries, string(domain.StageAnalysis),
		func(ctx context.Context) (domain.RiskAnalysis, error) {
			return submitDecoded[domain.RiskAnalysis](ctx, o.client, analysisRequest(rc, validation))
		})
	if err != nil {
		if ctx.Err() != nil {
			return domain.StageOutput[domain.RiskAnalysis]{}, err
		}
		o.logger.Warn("analysis stage degraded to fallback", "run_id", rc.RunID, "error", err)
		fb := fallbackAnalysis(rc)
		return domain.StageOutput[domain.RiskAnalysis]{
			Data:   &fb,
			Status: domain.FallbackStatus(retries, err.Error()),
		}, nil
	}

	// A structured reply may omit the findings array entirely; normalize to
	// an empty slice so the skip predicate never sees nil vs. empty.
	if data.MaterialFindings == nil {
		data.MaterialFindings = []domain.MaterialFinding{}
	}

	return domain.StageOutput[domain.RiskAnalysis]{
		Data:   &data,
		Status: domain.SucceededStatus(retries),
	}, nil
}
