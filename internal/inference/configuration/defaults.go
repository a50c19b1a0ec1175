package configuration

import "time"

// HTTP and provider constants.
const (
	DefaultHTTPTimeout = 60 * time.Second
	DefaultEndpoint    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel       = "gemini-2.0-flash"
	DefaultAPIKeyEnv   = "GEMINI_API_KEY"
)

// Retry constants. Every stage gets three total attempts, and the wait
// between rate-limited attempts defaults to ten seconds when the backend
// sent no hint.
const (
	DefaultMaxRetries     = 2
	DefaultBackoffDefault = 10 * time.Second
)

// Cache and observability constants.
const (
	DefaultCacheTTL    = 24 * time.Hour
	DefaultMetricsPort = 9090
)

// DefaultConfig returns production-ready configuration with sensible
// defaults. Suitable for use without a config file; only the backend
// credential must come from the environment.
func DefaultConfig() *Config {
	return &Config{
		HTTPTimeout: DefaultHTTPTimeout,
		Provider: ProviderConfig{
			Endpoint:  DefaultEndpoint,
			APIKeyEnv: DefaultAPIKeyEnv,
			Model:     DefaultModel,
			Timeout:   DefaultHTTPTimeout,
		},
		Retry: RetryConfig{
			MaxRetries:     DefaultMaxRetries,
			DefaultBackoff: DefaultBackoffDefault,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     DefaultCacheTTL,
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: true,
			MetricsPort:    DefaultMetricsPort,
		},
	}
}
