// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Builds loggers for stderr (commands) or a private file (TUI).

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// New creates a logger writing to w with the given level and format.
// level: debug, info, warn, error (default: info)
// format: text, json (default: text)
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Init configures the default slog logger to write to stderr.
func Init(level, format string) *slog.Logger {
	l := New(level, format, os.Stderr)
	slog.SetDefault(l)
	return l
}

// InitFile configures the default logger to append to path, so that log
// output never lands on the terminal while the TUI owns it. The previous
// file, if any, is closed.
func InitFile(path, level, format string) (*slog.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	if logFile != nil {
		logFile.Close()
	}
	logFile = f

	l := New(level, format, f)
	slog.SetDefault(l)
	return l, nil
}

// Close closes the log file opened by InitFile and falls back to a logger
// that discards everything.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	}
}

// ParseLevel converts a string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
