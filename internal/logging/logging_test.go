package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	logger.Debug("hidden")
	logger.Info("request", "method", "GET")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "request" || entry["method"] != "GET" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "text", &buf)

	StdLogger(logger, slog.LevelWarn).Printf("slow query %d", 42)

	if !strings.Contains(buf.String(), "slow query 42") || !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
