package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo-cruz/literature-review/internal/logging"
)

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closeFn()

	logger.With("component", "cache").Warn("entry unreadable", "item", "2301.00001", "err", errors.New("bad json"))

	line := buf.String()
	for _, want := range []string{"WARN", "entry unreadable", "component=cache", "item=2301.00001", `err="bad json"`} {
		if !strings.Contains(line, want) {
			t.Errorf("console line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "\x1b[") {
		t.Errorf("expected no colour codes for non-terminal output, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Errorf("expected no source location at info level, got %q", line)
	}
}

func TestConsoleIncludesSourceAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("pacing")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Errorf("expected source location in debug output, got %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Error("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info record should be filtered at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("error record missing: %q", buf.String())
	}
}

func TestGroupsAreDotted(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.WithGroup("llm").Info("call", slog.Int("attempt", 2))
	if !strings.Contains(buf.String(), "llm.attempt=2") {
		t.Errorf("expected grouped key, got %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("saved", "path", "summaries/paper_1.md")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["level"] != "info" {
		t.Errorf("level = %v, want info", rec["level"])
	}
	if rec["msg"] != "saved" {
		t.Errorf("msg = %v, want saved", rec["msg"])
	}
	if _, ok := rec["ts"]; !ok {
		t.Error("expected ts key")
	}
	if rec["path"] != "summaries/paper_1.md" {
		t.Errorf("path = %v", rec["path"])
	}
}

func TestFileOutput(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "litreview.log")
	logger, closeFn, err := logging.New(logging.Options{Output: &buf, File: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("to both")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "to both") {
		t.Errorf("log file missing record: %q", data)
	}
	if !strings.Contains(buf.String(), "to both") {
		t.Errorf("primary output missing record: %q", buf.String())
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml", Output: &bytes.Buffer{}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewNop(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("dropped")
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("nop logger should report disabled")
	}
}
