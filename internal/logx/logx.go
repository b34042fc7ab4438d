// Package logx builds the structured loggers used by the CLI.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipforge/internal/paths"
)

// Field keys shared across log lines.
const (
	FieldRunID   = "run_id"
	FieldCommand = "command"
	FieldClip    = "clip"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	Writer io.Writer
}

// New constructs a slog logger writing to opts.Writer (stderr when nil).
func New(opts Options) (*slog.Logger, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text", "console":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewProjectLogger creates a logger that writes to a timestamped file inside
// the project's logs directory. The returned closer should be closed when
// logging is no longer needed.
func NewProjectLogger(p paths.ProjectPaths, opts Options) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(p.LogsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	opts.Writer = file
	logger, err := New(opts)
	if err != nil {
		file.Close()
		return nil, nil, err
	}
	return logger, file, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
