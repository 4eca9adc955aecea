package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewHandler_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(newHandler(&buf, Config{Level: "warn", Format: "json"}))

	l.Info("dropped")
	l.Warn("kept", "session_id", "abc")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", out, err)
	}
	if entry["msg"] != "kept" || entry["session_id"] != "abc" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	if err := Init(Config{Level: "info", Format: "text", OutputPath: path}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Init(Config{})

	Info("hello file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Fatalf("log line missing from file: %q", data)
	}
}
