// Package logging is the human-readable diagnostic log. Structured,
// machine-readable events go through internal/otel instead.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// Logger is the process logger. It discards output until Init is called,
	// so packages may log unconditionally (the TUI owns the terminal).
	Logger = New(io.Discard, log.InfoLevel)

	logFile *os.File
)

// New creates a logger writing to w at the given level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
}

// Init opens dir/shelf-YYYY-MM-DD.log and points Logger at it.
// level is one of debug, info, warn, error; empty means info.
func Init(dir, level string) error {
	lvl := log.InfoLevel
	if level != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
		lvl = parsed
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("shelf-%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	logFile = f
	Logger = New(f, lvl)
	return nil
}

// Close flushes and closes the log file opened by Init.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	Logger = New(io.Discard, log.InfoLevel)
}

// WithPrefix returns a child logger tagged with prefix.
func WithPrefix(prefix string) *log.Logger {
	return Logger.WithPrefix(prefix)
}
