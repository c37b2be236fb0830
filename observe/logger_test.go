package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	l.Debug(ctx, "debug")
	l.Info(ctx, "info")
	l.Warn(ctx, "warn")
	l.Error(ctx, "error")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["level"] != "warn" || lines[1]["level"] != "error" {
		t.Errorf("levels = %v, %v", lines[0]["level"], lines[1]["level"])
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("debug", &buf)

	l.Info(context.Background(), "request",
		F("h", "deadbeef"),
		F("data", "https://example.com"),
		F("API_KEY", "sk_live"),
		F("format", "svg"),
	)

	line := decodeLines(t, &buf)[0]
	for _, key := range []string{"h", "data", "API_KEY"} {
		if line[key] != "[REDACTED]" {
			t.Errorf("%s = %v, want [REDACTED]", key, line[key])
		}
	}
	if line["format"] != "svg" {
		t.Errorf("format = %v, want svg", line["format"])
	}
	if strings.Contains(buf.String(), "deadbeef") {
		t.Error("token leaked into log output")
	}
}

func TestLogger_WithAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf)
	scoped := base.With(F("component", "preview"))

	ctx := WithRequestID(context.Background(), "req-1")
	scoped.Info(ctx, "scoped", F("err", errors.New("boom")))
	base.Info(context.Background(), "base")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["component"] != "preview" || lines[0]["request_id"] != "req-1" {
		t.Errorf("scoped line = %v", lines[0])
	}
	if lines[0]["err"] != "boom" {
		t.Errorf("err = %v, want boom", lines[0]["err"])
	}
	if _, ok := lines[1]["component"]; ok {
		t.Error("With must not modify the parent logger")
	}
}

func TestLogger_Timestamp(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf).(*jsonLogger)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	l.Info(context.Background(), "tick")
	if got := decodeLines(t, &buf)[0]["timestamp"]; got != "2026-01-02T03:04:05Z" {
		t.Errorf("timestamp = %v", got)
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Error(context.Background(), "ignored")
	if l.With(F("a", 1)) == nil {
		t.Error("With() returned nil")
	}
}
