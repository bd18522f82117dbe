// Package logging builds the structured loggers used across sprout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// New returns a timestamped logger writing to w. An unknown level falls back
// to info and is reported through the returned logger.
func New(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "sprout",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.SetLevel(log.InfoLevel)
		if level != "" {
			logger.Warn("unknown log level, using info", "level", level)
		}
		return logger
	}
	logger.SetLevel(lvl)
	return logger
}

// OpenFile appends to the log file at path, creating its directory. The TUI
// owns the terminal, so interactive runs log here instead of to stderr.
func OpenFile(path, level string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return New(f, level), f, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
