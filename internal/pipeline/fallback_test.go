package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-recon/internal/domain"
)

func TestFallbackValidationIsNeutral(t *testing.T) {
	rc := testRunContext()
	fb := fallbackValidation(rc)

	assert.Equal(t, domain.ValidationPass, fb.Status)
	assert.Equal(t, domain.ConfidenceLow, fb.Confidence)
	assert.Empty(t, fb.Issues, "fallback must not invent data-quality issues")
	assert.NotEmpty(t, fb.Notes)
}

func TestFallbackAnalysisEchoesMaterialVariances(t *testing.T) {
	rc := testRunContext()
	fb := fallbackAnalysis(rc)

	assert.Equal(t, domain.RiskIndeterminate, fb.RiskLevel)
	require.Len(t, fb.MaterialFindings, 1)
	assert.Equal(t, "cash", fb.MaterialFindings[0].Account)
	assert.Equal(t, 150.0, fb.MaterialFindings[0].Variance)
	assert.Equal(t, rc.Summary.MaterialityThreshold, fb.MaterialFindings[0].Threshold)
}

func TestFallbackAnalysisEmptyWhenNothingMaterial(t *testing.T) {
	rc := testRunContext()
	rc.Summary.MaterialityThreshold = 1000

	fb := fallbackAnalysis(rc)
	assert.Equal(t, domain.RiskIndeterminate, fb.RiskLevel)
	assert.Empty(t, fb.MaterialFindings)
}

func TestFallbackInvestigationFlagsManualReview(t *testing.T) {
	analysis := domain.RiskAnalysis{
		MaterialFindings: []domain.MaterialFinding{
			{Account: "cash", Variance: 150},
			{Account: "ar", Variance: -300},
		},
	}

	fb := fallbackInvestigation(analysis)
	require.Len(t, fb, 2)
	for _, f := range fb {
		assert.True(t, f.NeedsManualReview)
		assert.NotEmpty(t, f.ProbableCause)
		assert.NotEmpty(t, f.SuggestedAction)
	}
	assert.Equal(t, -300.0, fb[1].Variance)
}

func TestFallbackReportStatesNumericCompletion(t *testing.T) {
	rc := testRunContext()
	fb := fallbackReport(rc)

	assert.False(t, fb.Generated)
	assert.NotEmpty(t, fb.Headline)
	assert.Contains(t, fb.Body, "numeric reconciliation completed")
}

func TestNarrativeFromText(t *testing.T) {
	n := narrativeFromText("# Books reconcile\n\nEverything checks out.")
	assert.Equal(t, "Books reconcile", n.Headline)
	assert.Contains(t, n.Body, "Everything checks out.")
	assert.True(t, n.Generated)

	single := narrativeFromText("All clear.")
	assert.Equal(t, "All clear.", single.Headline)
	assert.Equal(t, "All clear.", single.Body)
}
