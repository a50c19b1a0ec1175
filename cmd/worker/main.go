// Command worker runs the Temporal worker hosting the reconciliation
// workflow and its pipeline activity.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.temporal.io/sdk/client"
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-recon/internal/inference/configuration"
	"github.com/ahrav/go-recon/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	temporalAddr := flag.String("temporal", client.DefaultHostPort, "Temporal server host:port")
	isDebug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		// Not an error: production deployments inject the environment directly.
		slog.Debug("no .env file found")
	}

	level := slog.LevelInfo
	if *isDebug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})))

	cfg, err := configuration.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	inferenceClient, err := worker.InitializeInferenceClient(cfg)
	if err != nil {
		slog.Error("failed to initialize inference client", "error", err)
		os.Exit(1)
	}
	if !inferenceClient.Configured() {
		slog.Warn("no backend credential configured, all runs will resolve through fallbacks",
			"api_key_env", cfg.Provider.APIKeyEnv)
	}

	if cfg.Observability.MetricsEnabled {
		go serveMetrics(cfg.Observability.MetricsPort)
	}

	temporalClient, err := client.Dial(client.Options{HostPort: *temporalAddr})
	if err != nil {
		slog.Error("failed to connect to temporal", "error", err, "address", *temporalAddr)
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := sdkworker.New(temporalClient, worker.TaskQueue, sdkworker.Options{})
	worker.RegisterAll(w, inferenceClient, worker.PipelineOptions(cfg)...)

	slog.Info("worker started", "task_queue", worker.TaskQueue, "temporal", *temporalAddr)
	if err := w.Run(sdkworker.InterruptCh()); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}

func serveMetrics(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	slog.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}
