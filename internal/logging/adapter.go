package logging

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// LoggerAdapter gives the text Logger the ContextLogger interface. Fields
// are appended to each message as [k=v ...].
type LoggerAdapter struct {
	*Logger
	fields map[string]interface{}
}

func NewLoggerAdapter(logger *Logger) *LoggerAdapter {
	return &LoggerAdapter{
		Logger: logger,
		fields: make(map[string]interface{}),
	}
}

func (l *LoggerAdapter) with(extra map[string]interface{}) *LoggerAdapter {
	child := &LoggerAdapter{
		Logger: l.Logger,
		fields: make(map[string]interface{}, len(l.fields)+len(extra)),
	}
	for k, v := range l.fields {
		child.fields[k] = v
	}
	for k, v := range extra {
		child.fields[k] = v
	}
	return child
}

func (l *LoggerAdapter) WithContext(ctx context.Context) ContextLogger {
	extra := make(map[string]interface{}, 2)
	if id, ok := CorrelationIDFromContext(ctx); ok {
		extra["correlation_id"] = id
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		extra["request_id"] = id
	}
	return l.with(extra)
}

func (l *LoggerAdapter) WithField(key string, value interface{}) ContextLogger {
	return l.with(map[string]interface{}{key: value})
}

func (l *LoggerAdapter) WithFields(fields map[string]interface{}) ContextLogger {
	return l.with(fields)
}

func (l *LoggerAdapter) Debug(format string, args ...interface{}) {
	l.Logger.output(DebugLevel, format, l.fieldSuffix(), args...)
}

func (l *LoggerAdapter) Info(format string, args ...interface{}) {
	l.Logger.output(InfoLevel, format, l.fieldSuffix(), args...)
}

func (l *LoggerAdapter) Warn(format string, args ...interface{}) {
	l.Logger.output(WarnLevel, format, l.fieldSuffix(), args...)
}

func (l *LoggerAdapter) Error(format string, args ...interface{}) {
	l.Logger.output(ErrorLevel, format, l.fieldSuffix(), args...)
}

func (l *LoggerAdapter) fieldSuffix() string {
	if len(l.fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, l.fields[k])
	}
	return " [" + strings.Join(parts, " ") + "]"
}
