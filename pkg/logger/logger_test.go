package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, maxSize int64) *Logger {
	t.Helper()
	l := &Logger{
		enabled:       true,
		level:         INFO,
		areas:         map[LogArea]bool{AreaRun: true},
		logPath:       filepath.Join(t.TempDir(), "test.log"),
		maxSize:       maxSize,
		rotationCount: 2,
	}
	if err := l.open(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if l.file != nil {
			l.file.Close()
		}
	})
	return l
}

func TestShouldLog(t *testing.T) {
	l := newTestLogger(t, 1024)

	tests := []struct {
		level LogLevel
		area  LogArea
		want  bool
	}{
		{INFO, AreaRun, true},
		{ERROR, AreaRun, true},
		{DEBUG, AreaRun, false},
		{INFO, AreaAuth, false},
		{INFO, LogArea("unknown"), false},
	}
	for _, tt := range tests {
		if got := l.shouldLog(tt.level, tt.area); got != tt.want {
			t.Errorf("shouldLog(%s, %s) = %v, want %v", tt.level, tt.area, got, tt.want)
		}
	}

	l.enabled = false
	if l.shouldLog(ERROR, AreaRun) {
		t.Error("disabled logger still logs")
	}
}

func TestFormatEntry(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	got := formatEntry(now, WARN, AreaTerminal, "websocket.go:42", "send timeout")
	want := "[2026-10-18 09:30:00.000] WARN [websocket.go:42] [TERMINAL] send timeout\n"
	if got != want {
		t.Errorf("formatEntry = %q, want %q", got, want)
	}
}

func TestWriteLogAndRotate(t *testing.T) {
	l := newTestLogger(t, 0)

	l.writeLog(1, INFO, AreaRun, "step %d", 1)

	rotated, err := os.ReadFile(l.logPath + ".1")
	if err != nil {
		t.Fatalf("rotated file missing: %v", err)
	}
	line := string(rotated)
	if !strings.Contains(line, "INFO [logger_test.go:") || !strings.Contains(line, "[RUN] step 1") {
		t.Errorf("log entry = %q", line)
	}
	if l.currentSize != 0 {
		t.Errorf("currentSize after rotation = %d", l.currentSize)
	}

	l.writeLog(1, INFO, AreaRun, "step %d", 2)
	if _, err := os.Stat(l.logPath + ".2"); err != nil {
		t.Errorf("second rotation missing: %v", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"Warning": WARN,
		"error":   ERROR,
		"FATAL":   FATAL,
		"bogus":   INFO,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
