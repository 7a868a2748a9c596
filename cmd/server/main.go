package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"go.temporal.io/sdk/client"
	temporallog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/leowmjw/go-countdown-timeline/pkg/config"
	"github.com/leowmjw/go-countdown-timeline/pkg/http"
	"github.com/leowmjw/go-countdown-timeline/pkg/store"
	"github.com/leowmjw/go-countdown-timeline/pkg/temporal"
)

func main() {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	configFile := flags.String("config", "", "Config file (default: timeline.yaml in the usual places)")
	flags.String("http-addr", "", "HTTP server address")
	flags.String("temporal-addr", "", "Temporal server address")
	flags.String("namespace", "", "Temporal namespace")
	flags.String("task-queue", "", "Temporal task queue")
	flags.String("db", "", "SQLite plan database; empty keeps plans in memory")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
	_ = flags.Parse(os.Args[1:])

	cfg, err := loadConfig(flags, *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Starting countdown plan service",
		"http_addr", cfg.Server.HTTPAddr,
		"temporal_addr", cfg.Temporal.Address,
		"namespace", cfg.Temporal.Namespace,
		"task_queue", cfg.Temporal.TaskQueue,
		"store", cfg.Store.Path,
	)

	plans, err := openStore(cfg.Store.Path, logger)
	if err != nil {
		logger.Error("Failed to open plan store", "error", err)
		os.Exit(1)
	}
	defer plans.Close()

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporallog.NewStructuredLogger(logger),
	})
	if err != nil {
		logger.Error("Failed to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(temporal.PlanWorkflow)
	w.RegisterActivity(temporal.NewActivities(logger, plans))

	if err := w.Start(); err != nil {
		logger.Error("Failed to start Temporal worker", "error", err)
		os.Exit(1)
	}
	defer w.Stop()
	logger.Info("Started Temporal worker", "task_queue", cfg.Temporal.TaskQueue)

	server := http.NewServer(logger, temporalClient, cfg.Server.HTTPAddr, cfg.Temporal.TaskQueue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Error("HTTP server failed", "error", err)
		return
	}
	logger.Info("Countdown plan service stopped")
}

// loadConfig layers command-line flags over the config file and environment.
func loadConfig(flags *pflag.FlagSet, configFile string) (*config.Config, error) {
	loader := config.NewLoader()
	if configFile != "" {
		loader.SetConfigFile(configFile)
	}
	for key, name := range map[string]string{
		"server.http_addr":    "http-addr",
		"temporal.address":    "temporal-addr",
		"temporal.namespace":  "namespace",
		"temporal.task_queue": "task-queue",
		"store.path":          "db",
		"logging.level":       "log-level",
		"logging.format":      "log-format",
	} {
		if err := loader.BindFlag(key, flags.Lookup(name)); err != nil {
			return nil, err
		}
	}
	return loader.Load()
}

func openStore(path string, logger *slog.Logger) (store.DocumentStore, error) {
	if path == "" {
		logger.Warn("No store path configured, plans are kept in memory")
		return store.NewMemoryStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return store.Open(path)
}
