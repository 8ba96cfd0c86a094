package logging

import (
	"strings"
	"testing"
)

func TestLoggerAppendsLeveledLines(t *testing.T) {
	logger, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer logger.Close()

	logger.Info("session %s started", "abc")
	logger.Warn("credentials missing for %s", "gpt")
	logger.Error("run stopped")

	lines := logger.Tail(10)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "INFO") || !strings.Contains(lines[0], "session abc started") {
		t.Fatalf("unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[2], "ERROR") {
		t.Fatalf("unexpected last line: %s", lines[2])
	}
}

func TestLoggerTailBoundsOutput(t *testing.T) {
	logger, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer logger.Close()
	for i := 0; i < 20; i++ {
		logger.Info("line %d", i)
	}
	lines := logger.Tail(5)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[4], "line 19") {
		t.Fatalf("tail should end at the newest line: %s", lines[4])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Info("ignored")
	if logger.Tail(3) != nil {
		t.Fatalf("nil logger should have no tail")
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
