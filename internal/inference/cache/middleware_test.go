package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-recon/internal/inference/transport"
)

func sampleRequest() *transport.Request {
	return &transport.Request{
		Operation:      transport.OpAnalysis,
		Model:          "gemini-2.0-flash",
		SystemPrompt:   "You are a risk analyst.",
		Prompt:         "Classify these variances.",
		ResponseSchema: map[string]any{"type": "object"},
		MaxTokens:      2048,
		Temperature:    0.2,
		RunID:          "11111111-1111-4111-8111-111111111111",
	}
}

func TestKeyIsDeterministic(t *testing.T) {
	a, err := Key(sampleRequest())
	require.NoError(t, err)
	b, err := Key(sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "recon:inference:analysis:"))
}

func TestKeyIgnoresRunID(t *testing.T) {
	a, err := Key(sampleRequest())
	require.NoError(t, err)

	other := sampleRequest()
	other.RunID = "22222222-2222-4222-8222-222222222222"
	b, err := Key(other)
	require.NoError(t, err)

	assert.Equal(t, a, b, "identical requests across runs share cache entries")
}

func TestKeyVariesWithRequestContent(t *testing.T) {
	base, err := Key(sampleRequest())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*transport.Request)
	}{
		{"prompt", func(r *transport.Request) { r.Prompt = "different prompt" }},
		{"model", func(r *transport.Request) { r.Model = "gemini-2.5-pro" }},
		{"system prompt", func(r *transport.Request) { r.SystemPrompt = "other role" }},
		{"operation", func(r *transport.Request) { r.Operation = transport.OpReport }},
		{"temperature", func(r *transport.Request) { r.Temperature = 0.9 }},
		{"max tokens", func(r *transport.Request) { r.MaxTokens = 1 }},
		{"schema", func(r *transport.Request) { r.ResponseSchema = map[string]any{"type": "array"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleRequest()
			tt.mutate(req)
			key, err := Key(req)
			require.NoError(t, err)
			assert.NotEqual(t, base, key)
		})
	}
}

func TestNilClientPassesThrough(t *testing.T) {
	m := NewMiddleware(nil, time.Minute)

	calls := 0
	next := transport.HandlerFunc(func(context.Context, *transport.Request) (*transport.Response, error) {
		calls++
		return &transport.Response{Content: "fresh"}, nil
	})

	handler := m.Wrap()(next)
	for i := 0; i < 2; i++ {
		resp, err := handler.Handle(context.Background(), sampleRequest())
		require.NoError(t, err)
		assert.Equal(t, "fresh", resp.Content)
	}
	assert.Equal(t, 2, calls, "no caching without a backing store")
}
