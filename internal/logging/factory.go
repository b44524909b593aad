package logging

import (
	"io"
	"os"
	"strings"
)

// LogFormat represents the log output format.
type LogFormat string

const (
	// FormatText is the traditional text format.
	FormatText LogFormat = "text"
	// FormatJSON is structured JSON format.
	FormatJSON LogFormat = "json"
)

// Config represents logging configuration.
type Config struct {
	Level   string
	Format  LogFormat
	Service string
	Version string
	Prefix  string
	Output  io.Writer
}

// NewLoggerFromConfig builds a logger. Format falls back to
// HEXREPORT_LOG_FORMAT and then to JSON; output falls back to stderr.
func NewLoggerFromConfig(cfg *Config) ContextLogger {
	format := LogFormat(strings.ToLower(string(cfg.Format)))
	if format == "" {
		format = LogFormat(strings.ToLower(os.Getenv("HEXREPORT_LOG_FORMAT")))
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if format == FormatText {
		return NewLoggerAdapter(NewLoggerWithWriter(out, cfg.Prefix, cfg.Level))
	}
	return NewStructuredLoggerWithWriter(out, cfg.Service, cfg.Version, cfg.Level)
}

// Nop returns a logger that discards everything.
func Nop() ContextLogger {
	return NewLoggerAdapter(NewLoggerWithWriter(io.Discard, "", "error"))
}
