package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{" info ", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"none", LevelNone},
		{"off", LevelNone},
		{"invalid", LevelInfo}, // defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelNone, "NONE"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.level.String(); result != tt.expected {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, result, tt.expected)
			}
		})
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "gencalc.log")

	l, err := New(LevelInfo, logPath, "test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	l.Info("evaluated %s", "1+1")
	l.Debug("should not appear")

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	logContent := string(content)
	if !strings.Contains(logContent, "[INFO] [test] evaluated 1+1") {
		t.Errorf("Log file should contain info line, got %q", logContent)
	}
	if strings.Contains(logContent, "should not appear") {
		t.Error("Log file should not contain debug message")
	}
}

func TestNewLoggerWithoutPathDiscards(t *testing.T) {
	l, err := New(LevelDebug, "", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.GetLevel() != LevelNone {
		t.Errorf("expected LevelNone, got %v", l.GetLevel())
	}
	l.Error("dropped")
	if err := l.Close(); err != nil {
		t.Errorf("Close on discard logger: %v", err)
	}
}

func TestLoggerWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriter(LevelInfo, &buf, "gencalc")
	child := base.WithPrefix("web").WithPrefix("ws")

	child.Warn("slow client")

	if !strings.Contains(buf.String(), "[WARN] [gencalc:web:ws] slow client") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPrefixedLoggersShareLevel(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriter(LevelError, &buf, "")
	child := base.WithPrefix("calculator")

	child.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	base.SetLevel(LevelDebug)
	if child.GetLevel() != LevelDebug {
		t.Fatalf("child level = %v, want DEBUG", child.GetLevel())
	}
	child.Debug("visible")
	if !strings.Contains(buf.String(), "[calculator] visible") {
		t.Errorf("expected debug output after SetLevel, got %q", buf.String())
	}
}

func TestLoggerDisabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(LevelNone, &buf, "")
	l.Error("should not appear")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestCloseStopsOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "closed.log")
	l, err := New(LevelInfo, logPath, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	l.Info("after close")
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(content) != 0 {
		t.Errorf("expected empty log, got %q", content)
	}
}

func TestGlobalLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "global.log")
	if err := Init(LevelDebug, logPath); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() {
		_ = Init(LevelNone, "")
	})

	Debug("global %d", 1)
	Info("global %d", 2)
	Warn("global %d", 3)
	Error("global %d", 4)

	if err := Global().Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{"global 1", "global 2", "global 3", "global 4"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("global log missing %q", want)
		}
	}
}

func TestSlogHandler(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(LevelInfo, &buf, "http")
	sl := NewSlog(l).With("method", "POST").WithGroup("req")

	sl.Debug("ignored")
	sl.Info("request", "path", "/api/evaluate", "status", 200)

	out := buf.String()
	if strings.Contains(out, "ignored") {
		t.Errorf("debug record should be filtered, got %q", out)
	}
	if !strings.Contains(out, "[INFO] [http] request method=POST req.path=/api/evaluate req.status=200") {
		t.Errorf("unexpected slog output %q", out)
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	if NewSlogHandler(nil) != nil {
		t.Error("expected nil handler for nil logger")
	}

	h := NewSlogHandler(NewWriter(LevelWarn, &bytes.Buffer{}, ""))
	if h.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(t.Context(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}

	off := NewSlogHandler(NewWriter(LevelNone, &bytes.Buffer{}, ""))
	if off.Enabled(t.Context(), slog.LevelError) {
		t.Error("nothing should be enabled at LevelNone")
	}
}
