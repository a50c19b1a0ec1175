// Package inference provides the resilient client for the generative
// inference backend. It assembles the transport middleware chain (logging,
// metrics, optional response cache) around the provider adapter and exposes
// a single Submit capability with classified failures.
//
// Retry semantics deliberately live in the pipeline's stage executor, not
// here: the client performs exactly one backend call per Submit.
package inference

import (
	"context"
	"net/http"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/go-recon/internal/inference/cache"
	"github.com/ahrav/go-recon/internal/inference/configuration"
	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
	"github.com/ahrav/go-recon/internal/inference/providers"
	"github.com/ahrav/go-recon/internal/inference/transport"
)

// Client submits a structured request to the inference backend and receives
// either a textual or schema-constrained structured response, or a
// classified error.
type Client interface {
	// Submit performs a single backend call. When no credential is
	// configured it fails fast with ErrUnconfigured without touching the
	// network.
	Submit(ctx context.Context, req *transport.Request) (*transport.Response, error)

	// Configured reports whether a backend credential is available.
	Configured() bool
}

type client struct {
	cfg        *configuration.Config
	handler    transport.Handler
	configured bool
}

// NewClient creates a client with the full middleware chain. A missing
// credential is not a construction error: the client is returned in an
// unconfigured state where every Submit fails fast, so callers can degrade
// to fallbacks uniformly instead of special-casing startup.
func NewClient(cfg *configuration.Config) (Client, error) {
	if cfg == nil {
		cfg = configuration.DefaultConfig()
	}
	cfg.ResolveAPIKey()

	if !cfg.Configured() {
		return &client{cfg: cfg, configured: false}, nil
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	adapter := providers.NewGoogleAdapter(providers.GoogleConfig{
		Endpoint: cfg.Provider.Endpoint,
		APIKey:   cfg.Provider.APIKey,
		Model:    cfg.Provider.Model,
	})

	core := transport.NewHTTPHandler(httpClient, adapter)

	var middlewares []transport.Middleware

	if cfg.Observability.MetricsEnabled {
		middlewares = append(middlewares, newMetricsMiddleware())
	}

	middlewares = append(middlewares, newLoggingMiddleware())

	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Cache.Addr})
		middlewares = append(middlewares, cache.NewMiddleware(redisClient, cfg.Cache.TTL).Wrap())
	}

	return &client{
		cfg:        cfg,
		handler:    transport.Chain(core, middlewares...),
		configured: true,
	}, nil
}

// NewClientWithHandler creates a configured client around an explicit
// handler. Tests use this to script backend behavior.
func NewClientWithHandler(handler transport.Handler) Client {
	return &client{
		cfg:        configuration.DefaultConfig(),
		handler:    handler,
		configured: true,
	}
}

// Unconfigured returns a client in the unconfigured state; every Submit
// fails fast with ErrUnconfigured.
func Unconfigured() Client {
	return &client{cfg: configuration.DefaultConfig(), configured: false}
}

func (c *client) Submit(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	if !c.configured {
		return nil, inferrors.ErrUnconfigured
	}

	if req.Model == "" {
		req.Model = c.cfg.Provider.Model
	}
	if req.Timeout == 0 {
		req.Timeout = c.cfg.Provider.Timeout
	}

	return c.handler.Handle(ctx, req)
}

func (c *client) Configured() bool { return c.configured }

// Process-wide handle. Initialization is deferred until first use so
// configuration presence is not forced at process start, and is guarded so
// concurrent first use observes a single stable handle.
var (
	defaultOnce   sync.Once
	defaultClient Client
	defaultErr    error
)

// Default returns the lazily-initialized process-wide client built from
// default configuration and the environment. The handle is read-only after
// first initialization and safe for concurrent reuse.
func Default() (Client, error) {
	defaultOnce.Do(func() {
		defaultClient, defaultErr = NewClient(nil)
	})
	return defaultClient, defaultErr
}
