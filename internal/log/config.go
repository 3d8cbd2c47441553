package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Config represents logging configuration.
type Config struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"`
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "auto",
	}
}

// ParseLevel parses string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether level names a known level.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// ValidFormat reports whether format names a known format.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case "", "auto", "text", "json":
		return true
	}
	return false
}

// NewFromConfig builds a logger writing to w. The "auto" format is text when
// w is a terminal and JSON otherwise.
func NewFromConfig(cfg Config, w io.Writer) Logger {
	level := ParseLevel(cfg.Level)

	switch resolveFormat(cfg.Format, w) {
	case "text":
		return NewTextLogger(w, level)
	default:
		return NewJSONLogger(w, level)
	}
}

// Configure sets up the default logger on stderr based on config.
func Configure(cfg Config) Logger {
	l := NewFromConfig(cfg, os.Stderr)
	SetDefault(l)
	return l
}

func resolveFormat(format string, w io.Writer) string {
	switch strings.ToLower(format) {
	case "text":
		return "text"
	case "json":
		return "json"
	}
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return "text"
		}
	}
	return "json"
}
