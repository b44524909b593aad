package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a level name to a Level. Unknown names mean info.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is the plain text logger, one line per entry.
type Logger struct {
	logger *log.Logger
	level  Level
	mu     sync.RWMutex
}

func NewLogger(prefix string, level string) *Logger {
	return NewLoggerWithWriter(os.Stderr, prefix, level)
}

func NewLoggerWithWriter(w io.Writer, prefix string, level string) *Logger {
	return &Logger{
		logger: log.New(w, prefix, log.LstdFlags|log.Lmicroseconds),
		level:  ParseLevel(level),
	}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) shouldLog(level Level) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *Logger) output(level Level, format, suffix string, v ...interface{}) {
	if !l.shouldLog(level) {
		return
	}
	msg, kv := splitArgs(format, v)
	line := "[" + level.String() + "] " + msg + suffix
	for k := 0; k+1 < len(kv); k += 2 {
		line += fmt.Sprintf(" %v=%v", kv[k], kv[k+1])
	}
	if len(kv)%2 == 1 {
		line += fmt.Sprintf(" extra=%v", kv[len(kv)-1])
	}
	l.logger.Print(line)
}

func (l *Logger) Debug(format string, v ...interface{}) { l.output(DebugLevel, format, "", v...) }
func (l *Logger) Info(format string, v ...interface{})  { l.output(InfoLevel, format, "", v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.output(WarnLevel, format, "", v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.output(ErrorLevel, format, "", v...) }

// splitArgs separates printf arguments from trailing key/value pairs.
// Arguments fill the message's format verbs first; whatever is left
// over is treated as key/value pairs.
func splitArgs(message string, args []interface{}) (string, []interface{}) {
	if len(args) == 0 {
		return message, nil
	}
	verbs := countVerbs(message)
	if verbs == 0 || len(args) < verbs {
		return message, args
	}
	return fmt.Sprintf(message, args[:verbs]...), args[verbs:]
}

func countVerbs(message string) int {
	n := 0
	for i := 0; i < len(message)-1; i++ {
		if message[i] != '%' {
			continue
		}
		if message[i+1] == '%' {
			i++
			continue
		}
		n++
	}
	return n
}
