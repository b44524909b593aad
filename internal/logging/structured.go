package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"
)

// StructuredLogger writes one JSON object per entry.
type StructuredLogger struct {
	level   Level
	service string
	version string
	mu      *sync.Mutex
	levelMu sync.RWMutex
	out     io.Writer
	fields  map[string]interface{}
}

// LogEntry is the JSON shape of a structured log line.
type LogEntry struct {
	Timestamp     string                 `json:"timestamp"`
	Level         string                 `json:"level"`
	Service       string                 `json:"service"`
	Version       string                 `json:"version,omitempty"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	RequestID     string                 `json:"request_id,omitempty"`
	Caller        string                 `json:"caller,omitempty"`
	Fields        map[string]interface{} `json:"fields,omitempty"`
}

// NewStructuredLogger logs to stderr.
func NewStructuredLogger(service, version, level string) *StructuredLogger {
	return NewStructuredLoggerWithWriter(os.Stderr, service, version, level)
}

// NewStructuredLoggerWithWriter logs to w.
func NewStructuredLoggerWithWriter(w io.Writer, service, version, level string) *StructuredLogger {
	return &StructuredLogger{
		level:   ParseLevel(level),
		service: service,
		version: version,
		mu:      &sync.Mutex{},
		out:     w,
		fields:  make(map[string]interface{}),
	}
}

func (l *StructuredLogger) derive(extra map[string]interface{}) *StructuredLogger {
	child := &StructuredLogger{
		level:   l.GetLevel(),
		service: l.service,
		version: l.version,
		mu:      l.mu,
		out:     l.out,
		fields:  make(map[string]interface{}, len(l.fields)+len(extra)),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range extra {
		child.fields[k] = v
	}
	return child
}

// WithContext returns a logger carrying the correlation and request IDs
// stored in ctx.
func (l *StructuredLogger) WithContext(ctx context.Context) ContextLogger {
	extra := make(map[string]interface{}, 2)
	if id, ok := CorrelationIDFromContext(ctx); ok {
		extra["correlation_id"] = id
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		extra["request_id"] = id
	}
	return l.derive(extra)
}

func (l *StructuredLogger) WithFields(fields map[string]interface{}) ContextLogger {
	return l.derive(fields)
}

func (l *StructuredLogger) WithField(key string, value interface{}) ContextLogger {
	return l.derive(map[string]interface{}{key: value})
}

func (l *StructuredLogger) log(level Level, message string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	msg, kv := splitArgs(message, args)
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Service:   l.service,
		Version:   l.version,
		Message:   msg,
	}

	if len(kv) > 0 || len(l.fields) > 0 {
		entry.Fields = make(map[string]interface{})
	}
	for k, v := range l.fields {
		switch k {
		case "correlation_id":
			entry.CorrelationID, _ = v.(string)
		case "request_id":
			entry.RequestID, _ = v.(string)
		default:
			entry.Fields[k] = v
		}
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			entry.Fields[key] = jsonSafe(kv[i+1])
		}
	}
	if len(kv)%2 == 1 {
		entry.Fields["extra"] = jsonSafe(kv[len(kv)-1])
	}
	if len(entry.Fields) == 0 {
		entry.Fields = nil
	}

	if _, file, line, ok := runtime.Caller(2); ok {
		entry.Caller = fmt.Sprintf("%s:%d", file, line)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := json.NewEncoder(l.out).Encode(entry); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %s: %s (json encoding failed: %v)\n",
			entry.Timestamp, entry.Level, entry.Message, err)
	}
}

// jsonSafe turns errors into their message; encoding/json would
// otherwise write them as empty objects.
func jsonSafe(v interface{}) interface{} {
	if err, ok := v.(error); ok && err != nil {
		return err.Error()
	}
	return v
}

func (l *StructuredLogger) Debug(message string, args ...interface{}) {
	l.log(DebugLevel, message, args...)
}

func (l *StructuredLogger) Info(message string, args ...interface{}) {
	l.log(InfoLevel, message, args...)
}

func (l *StructuredLogger) Warn(message string, args ...interface{}) {
	l.log(WarnLevel, message, args...)
}

func (l *StructuredLogger) Error(message string, args ...interface{}) {
	l.log(ErrorLevel, message, args...)
}

func (l *StructuredLogger) SetLevel(level Level) {
	l.levelMu.Lock()
	defer l.levelMu.Unlock()
	l.level = level
}

func (l *StructuredLogger) GetLevel() Level {
	l.levelMu.RLock()
	defer l.levelMu.RUnlock()
	return l.level
}

func (l *StructuredLogger) shouldLog(level Level) bool {
	return level >= l.GetLevel()
}
