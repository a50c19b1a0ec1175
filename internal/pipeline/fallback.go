package pipeline

import (
	"fmt"

	"github.com/ahrav/go-recon/internal/domain"
)

// Fallback synthesizers map "no usable result" into minimal, schema-valid,
// non-misleading placeholders. They never fabricate numeric findings; they
// only echo figures already known to be true from the run context.

// fallbackValidation returns a neutral pass-through judgment with an
// explicit low-confidence marker.
func fallbackValidation(rc domain.RunContext) domain.ValidationAssessment {
	return domain.ValidationAssessment{
		Status:     domain.ValidationPass,
		Confidence: domain.ConfidenceLow,
		Notes: fmt.Sprintf(
			"Automated validation was unavailable; %d account balances and %d transactions were accepted without quality review.",
			len(rc.Payload.Balances), len(rc.Payload.Transactions)),
	}
}

// fallbackAnalysis refuses to judge risk but still surfaces the material
// subset: which variances exceed materiality is local arithmetic over the
// computed summary, not a model judgment.
func fallbackAnalysis(rc domain.RunContext) domain.RiskAnalysis {
	material := rc.Summary.MaterialVariances()
	findings := make([]domain.MaterialFinding, 0, len(material))
	for _, v := range material {
		findings = append(findings, domain.MaterialFinding{
			Account:   v.Account,
			Variance:  v.Variance,
			Threshold: rc.Summary.MaterialityThreshold,
			Note:      "exceeds materiality threshold",
		})
	}

	return domain.RiskAnalysis{
		RiskLevel:        domain.RiskIndeterminate,
		MaterialFindings: findings,
		Rationale:        "Automated risk analysis was unavailable; findings listed are the variances exceeding the materiality threshold.",
	}
}

// fallbackInvestigation echoes each material finding without a probable
// cause, flagging it for manual review.
func fallbackInvestigation(analysis domain.RiskAnalysis) []domain.InvestigationFinding {
	findings := make([]domain.InvestigationFinding, 0, len(analysis.MaterialFindings))
	for _, f := range analysis.MaterialFindings {
		findings = append(findings, domain.InvestigationFinding{
			Account:           f.Account,
			Variance:          f.Variance,
			ProbableCause:     "Automated investigation was unavailable.",
			SuggestedAction:   "Review this variance manually.",
			NeedsManualReview: true,
		})
	}
	return findings
}

// fallbackReport states that the numeric reconciliation completed even
// though the narrative could not be generated.
func fallbackReport(rc domain.RunContext) domain.ReportNarrative {
	material := rc.Summary.MaterialVariances()
	return domain.ReportNarrative{
		Headline: "Reconciliation completed; narrative unavailable",
		Body: fmt.Sprintf(
			"The numeric reconciliation completed: %d accounts were rolled forward and %d variances were checked against a materiality threshold of %.2f, of which %d exceeded it. A narrative summary could not be generated.",
			len(rc.Summary.RollForward), len(rc.Summary.Variances), rc.Summary.MaterialityThreshold, len(material)),
		Generated: false,
	}
}
