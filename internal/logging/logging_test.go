package logging

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("FORMSTATE_LOG_LEVEL", "DEBUG")
	t.Setenv("FORMSTATE_LOG_FORMAT", "json")
	t.Setenv("FORMSTATE_LOG_SOURCE", "")

	cfg := FromEnv()
	if cfg.Level != "debug" {
		t.Errorf("expected level debug, got %q", cfg.Level)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("expected json format, got %q", cfg.Format)
	}
	if cfg.Output != os.Stderr {
		t.Errorf("expected stderr output")
	}
	if cfg.AddSource {
		t.Errorf("expected AddSource false")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelWarn,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRespectsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "warn", Format: FormatJSON, Output: &buf})

	logger.Info("hidden")
	WithForm(WithComponent(logger, "validation"), "signup").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info record filtered, got %s", out)
	}
	for _, want := range []string{`"msg":"shown"`, `"component":"validation"`, `"form":"signup"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
