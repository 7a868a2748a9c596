// Package config loads service and CLI settings.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leowmjw/go-countdown-timeline/pkg/temporal"
	"github.com/leowmjw/go-countdown-timeline/pkg/timeline"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Temporal TemporalConfig `yaml:"temporal" mapstructure:"temporal"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
	Editor   EditorConfig   `yaml:"editor" mapstructure:"editor"`
}

// ServerConfig contains HTTP settings.
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr"`
}

// TemporalConfig contains the Temporal connection.
type TemporalConfig struct {
	Address   string `yaml:"address" mapstructure:"address"`
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
	TaskQueue string `yaml:"task_queue" mapstructure:"task_queue"`
}

// StoreConfig contains persistence settings.
type StoreConfig struct {
	// Path is the SQLite database file. Empty keeps plans in memory.
	Path string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// EditorConfig contains terminal editor settings.
type EditorConfig struct {
	// BaseWidth is the unzoomed track width in columns.
	BaseWidth int `yaml:"base_width" mapstructure:"base_width"`
	// Zoom is the initial zoom level index.
	Zoom int `yaml:"zoom" mapstructure:"zoom"`
	// DefaultPlan is the plan id used when none is given.
	DefaultPlan string `yaml:"default_plan" mapstructure:"default_plan"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: ":8080",
		},
		Temporal: TemporalConfig{
			Address:   "localhost:7233",
			Namespace: "default",
			TaskQueue: temporal.DefaultTaskQueue,
		},
		Store: StoreConfig{
			Path: "~/.local/share/countdown-timeline/plans.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Editor: EditorConfig{
			BaseWidth:   100,
			Zoom:        0,
			DefaultPlan: "default",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Temporal.Address == "" {
		return fmt.Errorf("temporal.address is required")
	}
	if c.Temporal.TaskQueue == "" {
		return fmt.Errorf("temporal.task_queue is required")
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Editor.BaseWidth < 20 {
		return fmt.Errorf("editor.base_width must be at least 20")
	}
	if c.Editor.Zoom < 0 || c.Editor.Zoom >= len(timeline.ZoomLevels) {
		return fmt.Errorf("editor.zoom must be between 0 and %d", len(timeline.ZoomLevels)-1)
	}
	if c.Editor.DefaultPlan == "" {
		return fmt.Errorf("editor.default_plan is required")
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", level)
	}
}

// NewLogger builds the slog logger described by the logging section.
func (l LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if l.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
