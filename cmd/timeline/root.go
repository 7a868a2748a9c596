package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leowmjw/go-countdown-timeline/pkg/config"
	"github.com/leowmjw/go-countdown-timeline/pkg/plan"
	"github.com/leowmjw/go-countdown-timeline/pkg/store"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	loader     *config.Loader
	configFile string

	cfg    *config.Config
	logger *slog.Logger
	store  store.DocumentStore
}

func newRootCmd(version string) *cobra.Command {
	a := &app{loader: config.NewLoader()}

	cmd := &cobra.Command{
		Use:           "timeline",
		Short:         "Plan timed actions against a countdown",
		Long:          "timeline edits countdown plans: streams of one-shot and repeating actions laid out on a shared clock.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store == nil {
				return nil
			}
			return a.store.Close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: timeline.yaml in the usual places)")
	flags.String("db", "", "SQLite plan database; empty keeps plans in memory")
	flags.StringP("plan", "p", "", "Plan id")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	for key, name := range map[string]string{
		"store.path":          "db",
		"editor.default_plan": "plan",
		"logging.level":       "log-level",
	} {
		if err := a.loader.BindFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	cmd.AddCommand(
		newShowCmd(a),
		newOverlapsCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newExpandCmd(a),
		newEditCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	if a.configFile != "" {
		a.loader.SetConfigFile(a.configFile)
	}
	cfg, err := a.loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Logging.NewLogger(cmd.ErrOrStderr())
	if used := a.loader.ConfigFileUsed(); used != "" {
		a.logger.Debug("Loaded config", "file", used)
	}

	// expand works on its arguments alone
	if cmd.Name() == "expand" {
		return nil
	}
	a.store, err = openStore(cfg.Store.Path, a.logger)
	return err
}

func openStore(path string, logger *slog.Logger) (store.DocumentStore, error) {
	if path == "" {
		logger.Debug("Using in-memory plan store")
		return store.NewMemoryStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Opened plan store", "path", path)
	return s, nil
}

func (a *app) planID() string {
	return a.cfg.Editor.DefaultPlan
}

func (a *app) loadPlan(ctx context.Context) plan.Document {
	return store.LoadOrDefault(ctx, a.store, a.planID(), a.logger)
}
