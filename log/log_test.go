package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return NewWithHandler(h)
}

func TestLoggerInfoWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, slog.LevelInfo)

	l.Info("block verified", "number", 42)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "block verified" {
		t.Fatalf("msg = %v, want %q", entry["msg"], "block verified")
	}
	if _, ok := entry["number"]; !ok {
		t.Fatalf("missing attribute %q in %v", "number", entry)
	}
}

func TestLoggerDebugSuppressedBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, slog.LevelInfo)

	l.Debug("should not appear")

	if buf.Len() != 0 {
		t.Fatalf("debug line emitted at Info level: %s", buf.String())
	}
}

func TestLoggerModuleTagsLines(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, slog.LevelInfo)

	chunkLog := l.Module("chunk")
	chunkLog.Info("running")

	if !strings.Contains(buf.String(), `"module":"chunk"`) {
		t.Fatalf("missing module attribute in %s", buf.String())
	}
}

func TestLevelFromString(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"  info  ", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, c := range cases {
		if got := LevelFromString(c.in); got != c.want {
			t.Errorf("LevelFromString(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSetDefaultAndPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(newBufferLogger(&buf, slog.LevelInfo))
	defer SetDefault(New(slog.LevelInfo))

	Info("package level info")

	if !strings.Contains(buf.String(), "package level info") {
		t.Fatalf("package-level Info did not use the replaced default logger: %s", buf.String())
	}
}
