package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"incidentcli/internal/config"
)

// CloseFunc releases what a run logger holds open.
type CloseFunc func() error

func noClose() error { return nil }

// InitializeLogger builds the logger of one merge run and installs it as the
// slog default. Console output goes to stderr so stdout only carries the run
// summary.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, CloseFunc, error) {
	logger, closeLog, err := NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, noClose, err
	}
	slog.SetDefault(logger)
	return logger, closeLog, nil
}

// NewLogger builds a run logger whose console output goes to console.
//
// Output "console" logs only to console. Output "both" writes every record to
// the log file and to console. Output "file" writes every record to the log
// file and echoes warnings and errors to console as text, so a failed run is
// never silent. The log file is appended to; the trace_id attribute tells
// runs apart.
func NewLogger(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, CloseFunc, error) {
	opts := &slog.HandlerOptions{
		AddSource: cfg.Development,
		Level:     parseLogLevel(cfg.Level),
	}

	var handler slog.Handler
	closeLog := CloseFunc(noClose)

	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, noClose, fmt.Errorf("failed to open log file: %w", err)
		}
		closeLog = file.Close

		echo := newFormatHandler("text", console, &slog.HandlerOptions{Level: slog.LevelWarn})
		if strings.ToLower(cfg.Output) == "both" {
			echo = newFormatHandler(cfg.Format, console, opts)
		}
		handler = fanoutHandler{newFormatHandler(cfg.Format, file, opts), echo}
	default:
		handler = newFormatHandler(cfg.Format, console, opts)
	}

	return slog.New(&traceHandler{Handler: handler}), closeLog, nil
}

func newFormatHandler(format string, w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if strings.ToLower(format) == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// traceHandler adds the run's trace_id from the context to every record.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID := GetTraceID(ctx); traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// fanoutHandler sends each record to every handler enabled for its level.
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sub := range h {
		if sub.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, sub := range h {
		if sub.Enabled(ctx, r.Level) {
			errs = append(errs, sub.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, sub := range h {
		out[i] = sub.WithAttrs(attrs)
	}
	return out
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, sub := range h {
		out[i] = sub.WithGroup(name)
	}
	return out
}

func parseLogLevel(level string) slog.Level {
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

func openLogFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}
	return file, nil
}
