package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// LoggerOptions selects level, format, and an optional JSON file sink.
type LoggerOptions struct {
	Level  string // debug, info, warn, error
	Format string // json or text
	File   string // optional path; appended as JSON
}

// NewLogger builds the service logger writing to stderr. When opts.File is
// set, records are also appended to that file as JSON. The returned cleanup
// closes the file.
func NewLogger(opts LoggerOptions) (*slog.Logger, func() error, error) {
	return newLogger(os.Stderr, opts)
}

func newLogger(stderr io.Writer, opts LoggerOptions) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var primary slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		primary = slog.NewTextHandler(stderr, handlerOpts)
	} else {
		primary = slog.NewJSONHandler(stderr, handlerOpts)
	}

	if opts.File == "" {
		return slog.New(primary), func() error { return nil }, nil
	}

	file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	fileHandler := slog.NewJSONHandler(file, handlerOpts)
	return slog.New(slogmulti.Fanout(primary, fileHandler)), file.Close, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
