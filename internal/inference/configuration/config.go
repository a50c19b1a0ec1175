// Package configuration holds settings for the inference client and the
// reconciliation pipeline. Defaults are production-ready; a YAML file and
// environment variables override them.
package configuration

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds comprehensive configuration for the inference client.
type Config struct {
	// HTTP client configuration.
	HTTPTimeout time.Duration `yaml:"-"`
	HTTPClient  *http.Client  `yaml:"-"`

	// Provider configuration.
	Provider ProviderConfig `yaml:"provider"`

	// Retry configuration for the stage executor.
	Retry RetryConfig `yaml:"retry"`

	// Cache configuration for the response cache middleware.
	Cache CacheConfig `yaml:"cache"`

	// Observability configuration.
	Observability ObservabilityConfig `yaml:"observability"`
}

// UnmarshalYAML decodes the top-level document. Fields absent from the
// document keep their current (default) values; duration values are
// Go duration strings ("30s", "1h").
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		HTTPTimeout   string              `yaml:"http_timeout"`
		Provider      ProviderConfig      `yaml:"provider"`
		Retry         RetryConfig         `yaml:"retry"`
		Cache         CacheConfig         `yaml:"cache"`
		Observability ObservabilityConfig `yaml:"observability"`
	}{
		Provider:      c.Provider,
		Retry:         c.Retry,
		Cache:         c.Cache,
		Observability: c.Observability,
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.HTTPTimeout != "" {
		d, err := time.ParseDuration(raw.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("invalid http_timeout: %w", err)
		}
		c.HTTPTimeout = d
	}
	c.Provider = raw.Provider
	c.Retry = raw.Retry
	c.Cache = raw.Cache
	c.Observability = raw.Observability
	return nil
}

// ProviderConfig holds backend-specific configuration and authentication.
type ProviderConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"-"` // Sensitive, resolved from APIKeyEnv
	// APIKeyEnv names the environment variable holding the credential.
	APIKeyEnv string        `yaml:"api_key_env"`
	Model     string        `yaml:"model"`
	Timeout   time.Duration `yaml:"-"`
}

// UnmarshalYAML decodes the provider section, accepting the timeout as a
// duration string.
func (p *ProviderConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		Endpoint  string `yaml:"endpoint"`
		APIKeyEnv string `yaml:"api_key_env"`
		Model     string `yaml:"model"`
		Timeout   string `yaml:"timeout"`
	}{
		Endpoint:  p.Endpoint,
		APIKeyEnv: p.APIKeyEnv,
		Model:     p.Model,
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	p.Endpoint = raw.Endpoint
	p.APIKeyEnv = raw.APIKeyEnv
	p.Model = raw.Model
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("invalid provider timeout: %w", err)
		}
		p.Timeout = d
	}
	return nil
}

// RetryConfig controls the stage executor's retry behavior.
// Only rate-limit failures are retried; everything else fails the attempt
// immediately and resolves through the stage fallback.
type RetryConfig struct {
	// MaxRetries is the per-stage retry cap (total attempts = MaxRetries + 1).
	MaxRetries int `yaml:"max_retries"`

	// DefaultBackoff is the wait applied when the backend supplied no
	// retry hint.
	DefaultBackoff time.Duration `yaml:"-"`
}

// UnmarshalYAML decodes the retry section, accepting the backoff as a
// duration string.
func (r *RetryConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		MaxRetries     int    `yaml:"max_retries"`
		DefaultBackoff string `yaml:"default_backoff"`
	}{
		MaxRetries: r.MaxRetries,
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	r.MaxRetries = raw.MaxRetries
	if raw.DefaultBackoff != "" {
		d, err := time.ParseDuration(raw.DefaultBackoff)
		if err != nil {
			return fmt.Errorf("invalid default_backoff: %w", err)
		}
		r.DefaultBackoff = d
	}
	return nil
}

// CacheConfig controls the success-only response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	TTL     time.Duration `yaml:"-"`
}

// UnmarshalYAML decodes the cache section, accepting the TTL as a duration
// string.
func (c *CacheConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
		TTL     string `yaml:"ttl"`
	}{
		Enabled: c.Enabled,
		Addr:    c.Addr,
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Enabled = raw.Enabled
	c.Addr = raw.Addr
	if raw.TTL != "" {
		d, err := time.ParseDuration(raw.TTL)
		if err != nil {
			return fmt.Errorf("invalid cache ttl: %w", err)
		}
		c.TTL = d
	}
	return nil
}

// ObservabilityConfig controls metrics exposition.
type ObservabilityConfig struct {
	MetricsEnabled bool `yaml:"metrics_enabled"`
	MetricsPort    int  `yaml:"metrics_port"`
}

// Load reads configuration from a YAML file on top of defaults and resolves
// the provider credential from the environment. A missing file is not an
// error: defaults plus environment resolution apply.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.ResolveAPIKey()

	return cfg, nil
}

// ResolveAPIKey populates Provider.APIKey from the configured environment
// variable when the key is not already set.
func (c *Config) ResolveAPIKey() {
	if c.Provider.APIKey != "" {
		return
	}
	env := c.Provider.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	c.Provider.APIKey = os.Getenv(env)
}

// Configured reports whether a backend credential is available.
func (c *Config) Configured() bool { return c.Provider.APIKey != "" }
