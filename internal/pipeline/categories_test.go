package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-recon/internal/domain"
	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
	"github.com/ahrav/go-recon/internal/inference/transport"
)

func TestFailureCategoriesEmptyOnFullSuccess(t *testing.T) {
	o := newTestOrchestrator(newScriptedClient())

	result, err := o.Run(context.Background(), testRunContext())
	require.NoError(t, err)
	assert.Empty(t, FailureCategories(result))
}

func TestFailureCategoriesClassifyFallbackCauses(t *testing.T) {
	client := newScriptedClient()
	rateLimited := scriptStep{err: &inferrors.RateLimitError{Provider: "google", RetryHint: "1ms"}}
	client.script(transport.OpValidation, rateLimited, rateLimited, rateLimited)
	client.script(transport.OpReport, scriptStep{
		err: &inferrors.ProviderError{Provider: "google", Type: inferrors.ErrorTypeTimeout, Message: "deadline exceeded"},
	})
	o := newTestOrchestrator(client)

	result, err := o.Run(context.Background(), testRunContext())
	require.NoError(t, err)

	categories := FailureCategories(result)
	assert.Equal(t, inferrors.CategoryRateLimit, categories[domain.StageValidation])
	assert.Equal(t, inferrors.CategoryTimeout, categories[domain.StageReport])
	assert.NotContains(t, categories, domain.StageAnalysis)
	assert.NotContains(t, categories, domain.StageInvestigation)
}
