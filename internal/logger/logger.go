// Package logger builds the process-wide slog logger and exposes its level
// for runtime adjustment.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by Init and New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var levelVar slog.LevelVar

// New returns a logger writing to w in the given format. The level is read
// from level on every call, so callers can change it after construction.
func New(w io.Writer, format string, level slog.Leveler) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", format)
	}
}

// Init builds the stdout logger, installs it as the slog default and
// returns it.
func Init(format, level string) (*slog.Logger, error) {
	if err := SetLevelString(level); err != nil {
		return nil, err
	}
	l, err := New(os.Stdout, format, &levelVar)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return l, nil
}

// Level returns the current global level.
func Level() slog.Level { return levelVar.Level() }

// SetLevel updates the level of loggers created by Init.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}

// Discard returns a logger that drops everything. Used by tests and by
// components constructed without a logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
