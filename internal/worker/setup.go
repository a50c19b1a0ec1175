package worker

import (
	"fmt"

	"github.com/ahrav/go-recon/internal/inference"
	"github.com/ahrav/go-recon/internal/inference/configuration"
	"github.com/ahrav/go-recon/internal/inference/retry"
	"github.com/ahrav/go-recon/internal/pipeline"
)

// InitializeInferenceClient creates the inference client used by the
// pipeline activity. With no explicit configuration it resolves to the
// process-wide default handle; an explicit config builds a dedicated client.
// A missing credential yields an unconfigured client, not an error; every
// run then resolves through stage fallbacks.
func InitializeInferenceClient(cfg *configuration.Config) (inference.Client, error) {
	var (
		client inference.Client
		err    error
	)
	if cfg == nil {
		client, err = inference.Default()
	} else {
		client, err = inference.NewClient(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize inference client: %w", err)
	}

	return client, nil
}

// PipelineOptions translates configured retry settings into orchestrator
// options. Zero values keep the orchestrator's own defaults.
func PipelineOptions(cfg *configuration.Config) []pipeline.Option {
	if cfg == nil {
		return nil
	}

	var opts []pipeline.Option
	if cfg.Retry.MaxRetries > 0 {
		opts = append(opts, pipeline.WithMaxRetries(cfg.Retry.MaxRetries))
	}
	if cfg.Retry.DefaultBackoff > 0 {
		opts = append(opts, pipeline.WithRetryPolicy(retry.Policy{Default: cfg.Retry.DefaultBackoff}))
	}
	return opts
}
