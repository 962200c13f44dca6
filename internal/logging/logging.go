// Package logging builds the structured logger shared by the CLI and the
// orchestrator.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents the log output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Field keys used across packages.
const (
	FormKey      = "form"
	FieldKey     = "field"
	ComponentKey = "component"
)

// Config holds the logging configuration.
type Config struct {
	// Level is one of debug, info, warn, error. Default: warn.
	Level string
	// Format is json or text. Default: text.
	Format Format
	// Output defaults to os.Stderr.
	Output    io.Writer
	AddSource bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Level:  "warn",
		Format: FormatText,
		Output: os.Stderr,
	}
}

// FromEnv reads FORMSTATE_LOG_LEVEL, FORMSTATE_LOG_FORMAT and
// FORMSTATE_LOG_SOURCE (1 to enable) on top of DefaultConfig.
func FromEnv() *Config {
	cfg := DefaultConfig()
	if level := os.Getenv("FORMSTATE_LOG_LEVEL"); level != "" {
		cfg.Level = strings.ToLower(level)
	}
	if format := os.Getenv("FORMSTATE_LOG_FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}
	if os.Getenv("FORMSTATE_LOG_SOURCE") == "1" {
		cfg.AddSource = true
	}
	return cfg
}

// New creates a logger from cfg.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts a level name to slog.Level, defaulting to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// WithComponent tags logger with a component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String(ComponentKey, component))
}

// WithForm tags logger with a form identifier.
func WithForm(logger *slog.Logger, formID string) *slog.Logger {
	if formID == "" {
		return logger
	}
	return logger.With(slog.String(FormKey, formID))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
