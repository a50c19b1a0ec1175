package pipeline

import (
	"context"
	"strings"

	"github.com/ahrav/go-recon/internal/domain"
)

// runReport synthesizes the closing narrative from the outputs of the three
// preceding stages. Always runs. Its fallback states that the numeric
// reconciliation completed even though narration did not.
func (o *Orchestrator) runReport(
	ctx context.Context,
	rc domain.RunContext,
	validation *domain.ValidationAssessment,
	analysis *domain.RiskAnalysis,
	findings []domain.InvestigationFinding,
) (domain.StageOutput[domain.ReportNarrative], error) {
	data, retries, err := Execute(ctx, o.policy, o.maxRetries, string(domain.StageReport),
		func(ctx context.Context) (domain.ReportNarrative, error) {
			resp, err := o.client.Submit(ctx, reportRequest(rc, validation, analysis, findings))
			if err != nil {
				return domain.ReportNarrative{}, err
			}
			return narrativeFromText(resp.Content), nil
		})
	if err != nil {
		if ctx.Err() != nil {
			return domain.StageOutput[domain.ReportNarrative]{}, err
		}
		o.logger.Warn("report stage degraded to fallback", "run_id", rc.RunID, "error", err)
		fb := fallbackReport(rc)
		return domain.StageOutput[domain.ReportNarrative]{
			Data:   &fb,
			Status: domain.FallbackStatus(retries, err.Error()),
		}, nil
	}

	return domain.StageOutput[domain.ReportNarrative]{
		Data:   &data,
		Status: domain.SucceededStatus(retries),
	}, nil
}

// narrativeFromText shapes the free-text reply into a narrative, using the
// first line as the headline.
func narrativeFromText(content string) domain.ReportNarrative {
	trimmed := strings.TrimSpace(content)
	headline := trimmed
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		headline = strings.TrimSpace(trimmed[:idx])
	}

	return domain.ReportNarrative{
		Headline:  strings.TrimPrefix(headline, "# "),
		Body:      trimmed,
		Generated: true,
	}
}
