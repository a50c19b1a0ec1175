// Package transport defines the normalized request/response contract between
// the pipeline and the inference backend, plus the composable middleware
// chain the client is assembled from.
package transport

import (
	"net/http"
	"time"
)

// StageOperation identifies which pipeline stage a request belongs to.
// It namespaces cache keys and labels metrics and logs.
type StageOperation string

const (
	// OpValidation judges data-quality signals from the input payload.
	OpValidation StageOperation = "validation"

	// OpAnalysis classifies overall risk and extracts material findings.
	OpAnalysis StageOperation = "analysis"

	// OpInvestigation explains variances that exceeded materiality.
	OpInvestigation StageOperation = "investigation"

	// OpReport synthesizes the closing narrative.
	OpReport StageOperation = "report"
)

// Request is a normalized inference request. It contains everything the
// provider adapter needs to build the backend call and everything the
// middleware chain needs for caching and observability.
type Request struct {
	// Operation identifies the originating stage.
	Operation StageOperation `json:"operation"`

	// Model specifies the backend model version.
	Model string `json:"model"`

	// SystemPrompt carries stage instructions for the model.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Prompt is the user-visible content of the request.
	Prompt string `json:"prompt"`

	// ResponseSchema, when non-nil, requests a schema-constrained JSON
	// response instead of free text.
	ResponseSchema map[string]any `json:"response_schema,omitempty"`

	// Generation parameters.
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`

	// Timeout bounds the single backend call; expiry classifies as timeout.
	Timeout time.Duration `json:"timeout"`

	// RunID correlates the request with a pipeline invocation.
	RunID string `json:"run_id,omitempty"`
}

// Structured reports whether the request expects a schema-constrained
// JSON response.
func (r *Request) Structured() bool { return r.ResponseSchema != nil }

// Response is the normalized backend reply. Content holds either free text
// or, for structured requests, the JSON document the schema constrained.
type Response struct {
	// Content is the generated text or JSON.
	Content string `json:"content"`

	// FinishReason indicates why generation stopped, in provider terms.
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage tracks token consumption and latency.
	Usage Usage `json:"usage"`

	// Headers preserves raw response headers for debugging.
	Headers http.Header `json:"-"`

	// RawBody preserves the original response body for audit.
	RawBody []byte `json:"raw_body,omitempty"`
}

// Usage provides normalized consumption metrics for a single call.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
	LatencyMs        int64 `json:"latency_ms"`
}
