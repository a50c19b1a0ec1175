// Package cache provides a success-only response cache for inference calls.
// Identical requests within the TTL are served from Redis without touching
// the backend. The cache fails open: any Redis error degrades to a direct
// backend call and never fails the request.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/go-recon/internal/inference/transport"
)

const keyPrefix = "recon:inference:"

// cachedResponse is the stored representation of a successful response.
// StoredAtMs guards against clock-skewed or corrupted entries.
type cachedResponse struct {
	Content      string          `json:"content"`
	FinishReason string          `json:"finish_reason,omitempty"`
	Usage        transport.Usage `json:"usage"`
	StoredAtMs   int64           `json:"stored_at_ms"`
}

// Middleware caches successful responses keyed by a digest of the request.
type Middleware struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewMiddleware creates a cache middleware backed by the given Redis client.
// A nil client disables caching entirely (requests pass through).
func NewMiddleware(client redis.UniversalClient, ttl time.Duration) *Middleware {
	return &Middleware{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "inference_cache"),
	}
}

// Wrap returns the transport middleware function.
func (m *Middleware) Wrap() transport.Middleware {
	return func(next transport.Handler) transport.Handler {
		return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			if m.client == nil {
				return next.Handle(ctx, req)
			}

			key, err := Key(req)
			if err != nil {
				// Unkeyable requests bypass the cache.
				return next.Handle(ctx, req)
			}

			if resp, ok := m.lookup(ctx, key); ok {
				m.logger.Debug("cache hit", "operation", req.Operation, "key", key)
				return resp, nil
			}

			resp, err := next.Handle(ctx, req)
			if err != nil {
				return resp, err
			}

			m.store(ctx, key, resp)
			return resp, nil
		})
	}
}

// lookup fetches and decodes a cached response. Corrupted entries are
// treated as misses.
func (m *Middleware) lookup(ctx context.Context, key string) (*transport.Response, bool) {
	data, err := m.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			m.logger.Warn("cache lookup failed, degrading to backend call", "error", err)
		}
		return nil, false
	}

	var cached cachedResponse
	if err := json.Unmarshal(data, &cached); err != nil || cached.StoredAtMs <= 0 {
		m.logger.Warn("discarding corrupted cache entry", "key", key)
		m.client.Del(ctx, key)
		return nil, false
	}

	return &transport.Response{
		Content:      cached.Content,
		FinishReason: cached.FinishReason,
		Usage:        cached.Usage,
	}, true
}

// store writes a successful response with TTL. Failures are logged and
// otherwise ignored.
func (m *Middleware) store(ctx context.Context, key string, resp *transport.Response) {
	data, err := json.Marshal(cachedResponse{
		Content:      resp.Content,
		FinishReason: resp.FinishReason,
		Usage:        resp.Usage,
		StoredAtMs:   time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	if err := m.client.Set(ctx, key, data, m.ttl).Err(); err != nil {
		m.logger.Warn("cache store failed", "error", err)
	}
}

// Key derives the deterministic cache key for a request. The digest covers
// every field that affects the backend reply; RunID is deliberately excluded
// so identical requests across runs share entries.
func Key(req *transport.Request) (string, error) {
	keyed := struct {
		Operation      transport.StageOperation `json:"operation"`
		Model          string                   `json:"model"`
		SystemPrompt   string                   `json:"system_prompt"`
		Prompt         string                   `json:"prompt"`
		ResponseSchema map[string]any           `json:"response_schema,omitempty"`
		MaxTokens      int                      `json:"max_tokens"`
		Temperature    float64                  `json:"temperature"`
	}{
		Operation:      req.Operation,
		Model:          req.Model,
		SystemPrompt:   req.SystemPrompt,
		Prompt:         req.Prompt,
		ResponseSchema: req.ResponseSchema,
		MaxTokens:      req.MaxTokens,
		Temperature:    req.Temperature,
	}

	data, err := json.Marshal(keyed)
	if err != nil {
		return "", fmt.Errorf("failed to build cache key: %w", err)
	}

	sum := sha256.Sum256(data)
	return keyPrefix + string(keyed.Operation) + ":" + hex.EncodeToString(sum[:]), nil
}
