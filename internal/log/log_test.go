package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_WritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)
	logger.Info("test message", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "test message") {
		t.Errorf("expected 'test message' in output, got %q", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("expected 'key=value' in output, got %q", out)
	}
}

func TestNew_DebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)
	logger.Debug("querying backend")

	if buf.Len() != 0 {
		t.Errorf("expected no debug output at INFO level, got %q", buf.String())
	}
}

func TestNewWithLevel_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithLevel(&buf, slog.LevelDebug)
	logger.Debug("querying backend", "backend", "keyring")

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") {
		t.Errorf("expected DEBUG level in output, got %q", out)
	}
	if !strings.Contains(out, "backend=keyring") {
		t.Errorf("expected backend attr in output, got %q", out)
	}
}

func TestDiscard(t *testing.T) {
	// 只要不 panic 即可
	Discard().Warn("ignored")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "info", want: slog.LevelInfo},
		{in: "DEBUG", want: slog.LevelDebug},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: " error ", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLevel(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q)=%v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
