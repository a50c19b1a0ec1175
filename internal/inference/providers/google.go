// Package providers contains backend-specific adapters implementing the
// transport.Adapter contract.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
	"github.com/ahrav/go-recon/internal/inference/transport"
)

// ProviderGoogle is the provider name used in errors, metrics, and logs.
const ProviderGoogle = "google"

// GoogleConfig holds the settings the adapter needs to reach the
// generative language API.
type GoogleConfig struct {
	Endpoint string
	APIKey   string
	Model    string
}

// GoogleAdapter implements transport.Adapter for Google Gemini models.
// It handles the generateContent API format with API key authentication,
// system instructions, and schema-constrained structured output.
type GoogleAdapter struct {
	config GoogleConfig
}

// NewGoogleAdapter creates a Google adapter with default endpoint and model
// when the config leaves them empty.
func NewGoogleAdapter(cfg GoogleConfig) *GoogleAdapter {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	return &GoogleAdapter{config: cfg}
}

// Name returns the provider name.
func (a *GoogleAdapter) Name() string { return ProviderGoogle }

// Build constructs a generateContent request from a normalized request.
// Structured requests set responseMimeType and responseSchema so the backend
// constrains its reply to the stage's expected shape.
func (a *GoogleAdapter) Build(ctx context.Context, req *transport.Request) (*http.Request, error) {
	model := req.Model
	if model == "" {
		model = a.config.Model
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", a.config.Endpoint, model)

	generationConfig := map[string]any{
		"temperature":     req.Temperature,
		"maxOutputTokens": req.MaxTokens,
	}
	if req.Structured() {
		generationConfig["responseMimeType"] = "application/json"
		generationConfig["responseSchema"] = req.ResponseSchema
	}

	body := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": req.Prompt},
				},
			},
		},
		"generationConfig": generationConfig,
	}

	if req.SystemPrompt != "" {
		body["systemInstruction"] = map[string]any{
			"parts": []map[string]any{
				{"text": req.SystemPrompt},
			},
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", a.config.APIKey)

	return httpReq, nil
}

// Parse extracts a normalized response from a generateContent reply.
// Non-200 statuses become classified provider errors; replies without
// candidates or parts classify as malformed.
func (a *GoogleAdapter) Parse(httpResp *http.Response) (*transport.Response, error) {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseGoogleError(httpResp.StatusCode, body)
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		UsageMetadata struct {
			PromptTokenCount     int `json:"promptTokenCount"`
			CandidatesTokenCount int `json:"candidatesTokenCount"`
			TotalTokenCount      int `json:"totalTokenCount"`
		} `json:"usageMetadata"`
	}

	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &inferrors.ProviderError{
			Provider:   ProviderGoogle,
			StatusCode: httpResp.StatusCode,
			Message:    fmt.Sprintf("undecodable response body: %v", err),
			Type:       inferrors.ErrorTypeMalformed,
		}
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &inferrors.ProviderError{
			Provider:   ProviderGoogle,
			StatusCode: httpResp.StatusCode,
			Message:    "response contained no candidates",
			Type:       inferrors.ErrorTypeMalformed,
		}
	}

	return &transport.Response{
		Content:      resp.Candidates[0].Content.Parts[0].Text,
		FinishReason: resp.Candidates[0].FinishReason,
		Usage: transport.Usage{
			PromptTokens:     int64(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int64(resp.UsageMetadata.TotalTokenCount),
		},
		Headers: httpResp.Header,
		RawBody: body,
	}, nil
}

// retryInfoType is the @type the API uses for retry guidance in error details.
const retryInfoType = "type.googleapis.com/google.rpc.RetryInfo"

// parseGoogleError converts an error response into a classified typed error.
// Rate-limit responses become RateLimitError carrying the server-supplied
// retryDelay hint when present; everything else becomes a ProviderError.
func parseGoogleError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}

	var retryHint string
	if err := json.Unmarshal(body, &errResp); err == nil {
		for _, d := range errResp.Error.Details {
			if d.Type == retryInfoType && d.RetryDelay != "" {
				retryHint = d.RetryDelay
				break
			}
		}

		errType := classifyErrorType(statusCode, errResp.Error.Status)
		if errType == inferrors.ErrorTypeRateLimit {
			return &inferrors.RateLimitError{
				Provider:  ProviderGoogle,
				RetryHint: retryHint,
			}
		}

		if errResp.Error.Message != "" {
			return &inferrors.ProviderError{
				Provider:   ProviderGoogle,
				StatusCode: statusCode,
				Message:    errResp.Error.Message,
				Code:       errResp.Error.Status,
				Type:       errType,
				RetryHint:  retryHint,
			}
		}
	}

	return &inferrors.ProviderError{
		Provider:   ProviderGoogle,
		StatusCode: statusCode,
		Message:    string(body),
		Type:       classifyErrorType(statusCode, ""),
	}
}
