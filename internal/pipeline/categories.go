package pipeline

import (
	"errors"

	"github.com/ahrav/go-recon/internal/domain"
	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
)

// FailureCategories maps each fallback-resolved stage to its user-relevant
// failure category. Callers rendering a degraded result use this to choose
// wording ("temporarily rate limited" vs. a generic degradation notice).
// Stages that succeeded or were skipped do not appear in the map.
func FailureCategories(result *domain.PipelineResult) map[domain.Stage]inferrors.Category {
	categories := make(map[domain.Stage]inferrors.Category)
	for stage, status := range result.Statuses() {
		if status.UsedFallback && status.Error != "" {
			categories[stage] = inferrors.Classify(errors.New(status.Error))
		}
	}
	return categories
}
