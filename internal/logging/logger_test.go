package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		testFunc  func(*Logger)
		shouldLog bool
	}{
		{"debug level logs everything", "debug", func(l *Logger) { l.Debug("test") }, true},
		{"info level skips debug", "info", func(l *Logger) { l.Debug("test") }, false},
		{"info level logs info", "info", func(l *Logger) { l.Info("test") }, true},
		{"error level only logs errors", "error", func(l *Logger) { l.Warn("test") }, false},
		{"error level logs errors", "error", func(l *Logger) { l.Error("test") }, true},
		{"unknown level means info", "loud", func(l *Logger) { l.Info("test") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(&buf, "[TEST] ", tt.logLevel)

			tt.testFunc(logger)

			assert.Equal(t, tt.shouldLog, buf.Len() > 0, buf.String())
		})
	}
}

func TestLoggerArguments(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "", "debug")

	logger.Info("rendered %d matches", 3, "report", "r1")
	out := buf.String()
	assert.Contains(t, out, "[INFO] rendered 3 matches")
	assert.Contains(t, out, "report=r1")

	buf.Reset()
	logger.Warn("no verbs here", "match", "Match_05", "dangling")
	out = buf.String()
	assert.Contains(t, out, "[WARN] no verbs here match=Match_05 extra=dangling")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "", "error")
	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, logger.GetLevel())
	logger.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLoggerWithWriter(&buf, "hexreport", "1.0.0", "info")

	ctx := ContextWithCorrelationID(context.Background(), "corr-123")
	ctx = ContextWithRequestID(ctx, "req-456")
	logger.WithContext(ctx).WithField("tool", "renderBoard").
		Info("Rendered %d cells", 121, "error", errors.New("boom"))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "hexreport", entry.Service)
	assert.Equal(t, "1.0.0", entry.Version)
	assert.Equal(t, "Rendered 121 cells", entry.Message)
	assert.Equal(t, "corr-123", entry.CorrelationID)
	assert.Equal(t, "req-456", entry.RequestID)
	assert.Equal(t, "renderBoard", entry.Fields["tool"])
	assert.Equal(t, "boom", entry.Fields["error"])
	assert.NotEmpty(t, entry.Timestamp)
	assert.NotEmpty(t, entry.Caller)
}

func TestStructuredLoggerLevelsAndIsolation(t *testing.T) {
	var buf bytes.Buffer
	parent := NewStructuredLoggerWithWriter(&buf, "svc", "", "warn")

	parent.Info("skipped")
	assert.Zero(t, buf.Len())

	child := parent.WithField("match", "m1")
	child.Warn("kept")
	parent.Warn("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second LogEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "m1", first.Fields["match"])
	assert.Nil(t, second.Fields, "child fields must not leak into the parent")
}

func TestLoggerAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewLoggerAdapter(NewLoggerWithWriter(&buf, "[TEST] ", "info"))

	ctx := ContextWithCorrelationID(context.Background(), "corr-789")
	adapter.WithContext(ctx).WithFields(map[string]interface{}{"tool": "moveList"}).
		Info("handled %s", "request")

	out := buf.String()
	assert.Contains(t, out, "handled request [correlation_id=corr-789 tool=moveList]")
}

func TestNewLoggerFromConfig(t *testing.T) {
	var buf bytes.Buffer

	text := NewLoggerFromConfig(&Config{Level: "info", Format: FormatText, Output: &buf})
	_, ok := text.(*LoggerAdapter)
	assert.True(t, ok)

	structured := NewLoggerFromConfig(&Config{Level: "info", Format: FormatJSON, Service: "svc", Output: &buf})
	_, ok = structured.(*StructuredLogger)
	assert.True(t, ok)

	t.Setenv("HEXREPORT_LOG_FORMAT", "TEXT")
	fromEnv := NewLoggerFromConfig(&Config{Level: "info", Output: &buf})
	_, ok = fromEnv.(*LoggerAdapter)
	assert.True(t, ok)
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Error("nothing happens %d", 1)
	logger.WithField("k", "v").Warn("still nothing")
}
