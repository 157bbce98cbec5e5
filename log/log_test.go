package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level %v, got %v", DefaultLevel, logger.Level())
	}

	if logger.Format() != DefaultFormat {
		t.Errorf("expected default format %v, got %v", DefaultFormat, logger.Format())
	}

	if logger.caller {
		t.Error("expected caller disabled by default")
	}
}

func TestLogger_LogMethods_RespectLevelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(Logger, string, ...slog.Attr)
		minLevel Level
		logged   bool
	}{
		{"trace at trace", Logger.Trace, LevelTrace, true},
		{"trace at debug", Logger.Trace, LevelDebug, false},
		{"debug at debug", Logger.Debug, LevelDebug, true},
		{"debug at info", Logger.Debug, LevelInfo, false},
		{"info at info", Logger.Info, LevelInfo, true},
		{"info at warn", Logger.Info, LevelWarn, false},
		{"warn at warn", Logger.Warn, LevelWarn, true},
		{"warn at error", Logger.Warn, LevelError, false},
		{"error at error", Logger.Error, LevelError, true},
		{"error at trace", Logger.Error, LevelTrace, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithLevel(tt.minLevel))
			tt.logFunc(logger, "test message")

			if logged := buf.Len() > 0; logged != tt.logged {
				t.Errorf("expected logged=%v, got output %q", tt.logged, buf.String())
			}

			if logger.Enabled(LevelError) != true {
				t.Error("expected error level always enabled")
			}
		})
	}
}

func TestLogger_JSON_Fields(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatJSON), WithLevel(LevelTrace), WithTimeLayout("none"))
	logger.Trace("test message", slog.String("key", "value"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON output %q: %v", buf.String(), err)
	}

	if entry["msg"] != "test message" {
		t.Errorf("expected msg=test message, got %v", entry["msg"])
	}

	if entry["level"] != "TRACE" {
		t.Errorf("expected level=TRACE, got %v", entry["level"])
	}

	if entry["key"] != "value" {
		t.Errorf("expected key=value, got %v", entry["key"])
	}

	if _, ok := entry["time"]; ok {
		t.Errorf("expected no time field, got %v", entry["time"])
	}
}

func TestLogger_PlainText(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithPretty(false), WithLevel(LevelInfo))
	logger.Info("test message", slog.String("key", "value"))

	output := buf.String()
	if !strings.Contains(output, `msg="test message"`) {
		t.Errorf("message not found in text output: %s", output)
	}

	if !strings.Contains(output, "key=value") {
		t.Errorf("key=value not found in text output: %s", output)
	}
}

func TestLogger_PrettyText(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(Logger, string, ...slog.Attr)
		level   string
	}{
		{"trace", Logger.Trace, "TRACE"},
		{"debug", Logger.Debug, "DEBUG"},
		{"info", Logger.Info, "INFO"},
		{"warn", Logger.Warn, "WARN"},
		{"error", Logger.Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithLevel(LevelTrace), WithTimeLayout("none"))
			logger = logger.With(slog.String("component", "test"))

			tt.logFunc(logger, "test message", slog.Int("n", 3), slog.String("s", "a b"))

			output := buf.String()
			for _, want := range []string{tt.level, "test message", "component=test", "n=3", `s="a b"`} {
				if !strings.Contains(output, want) {
					t.Errorf("expected output to contain %q, got: %s", want, output)
				}
			}

			if strings.Contains(output, "\x1b[") {
				t.Errorf("expected no escape sequences writing to a buffer, got: %q", output)
			}
		})
	}
}

func TestLogger_PrettyText_Groups(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelInfo), WithTimeLayout("none"))
	logger.Info("grouped", slog.Group("map", slog.Int("len", 2)))

	if !strings.Contains(buf.String(), "map.len=2") {
		t.Errorf("expected grouped key, got: %s", buf.String())
	}
}

func TestLogger_WithCaller_IncludesSource(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithCaller(true), WithFormat(FormatJSON), WithLevel(LevelInfo))
	logger.Info("test message")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected caller file in output, got: %s", buf.String())
	}

	buf.Reset()

	logger = Make(&buf, WithCaller(false), WithFormat(FormatJSON), WithLevel(LevelInfo))
	logger.Info("test message")

	if strings.Contains(buf.String(), "source") {
		t.Errorf("caller info included when disabled: %s", buf.String())
	}
}

func TestLogger_Wrap_OverridesConfiguration(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelError))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelError {
		t.Errorf("expected base level unchanged, got %v", base.Level())
	}

	if wrapped.Level() != LevelDebug {
		t.Errorf("expected wrapped level %v, got %v", LevelDebug, wrapped.Level())
	}

	wrapped.Debug("wrapped message")

	if !strings.Contains(buf.String(), "wrapped message") {
		t.Error("expected wrapped logger to keep the base output")
	}
}

func TestLogger_ConcurrentCalls_ThreadSafe(t *testing.T) {
	var (
		buf bytes.Buffer
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	logger := Make(&lockedWriter{w: &buf, mu: &mu}, WithPretty(false), WithLevel(LevelInfo))

	for i := range 100 {
		wg.Go(func() { logger.Info("concurrent message", slog.Int("id", i)) })
	}

	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 log lines, got %d", len(lines))
	}
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var l Logger

	l.Trace("test")
	l.Debug("test")
	l.Info("test")
	l.Warn("test")
	l.Error("test")

	if l.Enabled(LevelError) {
		t.Error("expected zero logger to be disabled")
	}

	if l2 := l.With(slog.String("key", "value")); l2.Logger != nil {
		t.Error("expected nil logger from zero value With")
	}

	if l.Level() != DefaultLevel {
		t.Errorf("expected default level from zero logger, got %v", l.Level())
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelInfo))

	for b.Loop() {
		logger.Info("benchmark message", slog.Int("iteration", 1))
	}
}
