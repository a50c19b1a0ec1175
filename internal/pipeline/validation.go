package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahrav/go-recon/internal/domain"
	"github.com/ahrav/go-recon/internal/inference"
	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
	"github.com/ahrav/go-recon/internal/inference/transport"
)

// submitDecoded performs one backend call and decodes the structured
// response into the stage's payload type. A reply that does not decode
// classifies as malformed, which is fatal for the attempt but recoverable
// for the stage via its fallback.
func submitDecoded[T any](ctx context.Context, client inference.Client, req *transport.Request) (T, error) {
	var out T

	resp, err := client.Submit(ctx, req)
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal([]byte(resp.Content), &out); err != nil {
		return out, fmt.Errorf("%w: %v", inferrors.ErrMalformedResponse, err)
	}
	return out, nil
}

// runValidation judges data-quality signals from the input payload.
// Always runs. A propagated failure resolves to the neutral pass-through
// fallback; only cancellation escapes as an error.
func (o *Orchestrator) runValidation(
	ctx context.Context, rc domain.RunContext,
) (domain.StageOutput[domain.ValidationAssessment], error) {
	data, retries, err := Execute(ctx, o.policy, o.maxRetries, string(domain.StageValidation),
		func(ctx context.Context) (domain.ValidationAssessment, error) {
			return submitDecoded[domain.ValidationAssessment](ctx, o.client, validationRequest(rc))
		})
	if err != nil {
		if ctx.Err() != nil {
			return domain.StageOutput[domain.ValidationAssessment]{}, err
		}
		o.logger.Warn("validation stage degraded to fallback", "run_id", rc.RunID, "error", err)
		fb := fallbackValidation(rc)
		return domain.StageOutput[domain.ValidationAssessment]{
			Data:   &fb,
			Status: domain.FallbackStatus(retries, err.Error()),
		}, nil
	}

	return domain.StageOutput[domain.ValidationAssessment]{
		Data:   &data,
		Status: domain.SucceededStatus(retries),
	}, nil
}
