package expression

import (
	"context"
	"log/slog"
	"sync"
)

// WarningKind distinguishes the collapse cases.
type WarningKind string

const (
	WarningFailure   WarningKind = "failure"
	WarningUnknown   WarningKind = "unknown"
	WarningWrongKind WarningKind = "wrong-kind"
)

// Warning is a developer-facing diagnostic about an authored expression.
type Warning struct {
	Kind       WarningKind
	Expression string
	Message    string
}

// Sink receives warnings. Implementations must not block.
type Sink interface {
	Warn(Warning)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(Warning)

// Warn delegates to the underlying function.
func (fn SinkFunc) Warn(w Warning) {
	fn(w)
}

// NopSink discards warnings.
type NopSink struct{}

func (NopSink) Warn(Warning) {}

// LogSink writes warnings to a structured logger at warn level.
type LogSink struct {
	Logger *slog.Logger
}

// NewLogSink returns a LogSink; a nil logger falls back to slog.Default.
func NewLogSink(logger *slog.Logger) LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return LogSink{Logger: logger}
}

func (s LogSink) Warn(w Warning) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, w.Message,
		slog.String("kind", string(w.Kind)),
		slog.String("expression", w.Expression),
	)
}

// Recorder collects warnings in memory. Safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	warnings []Warning
}

func (r *Recorder) Warn(w Warning) {
	r.mu.Lock()
	r.warnings = append(r.warnings, w)
	r.mu.Unlock()
}

// Warnings returns a copy of the recorded warnings.
func (r *Recorder) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Warning(nil), r.warnings...)
}

// Reset drops recorded warnings.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.warnings = nil
	r.mu.Unlock()
}
