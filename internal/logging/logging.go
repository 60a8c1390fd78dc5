// Package logging wraps slog.Logger with taxoclass-specific context and
// domain-aware helpers, in the style of a thin structured-logging shim
// layered over the standard library.
package logging

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger so call sites get domain-specific helpers
// without losing direct access to the underlying slog API.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler. A nil handler falls back to
// a text handler writing to stderr at info level.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSON creates a Logger that emits JSON-formatted records to stderr.
func NewJSON(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NewText creates a Logger that emits human-readable text records to
// stderr.
func NewText(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// Noop creates a Logger that discards all output, for --quiet runs.
func Noop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(1000)}))}
}

// WithWorker tags subsequent records with the worker index that produced
// them.
func (l *Logger) WithWorker(id int) *Logger {
	return &Logger{Logger: l.Logger.With("worker", id)}
}

// LogBlockLoaded records a block successfully pulled from the sequence
// reader.
func (l *Logger) LogBlockLoaded(ctx context.Context, blockID uint64, fragments int) {
	l.DebugContext(ctx, "block loaded", "block_id", blockID, "fragments", fragments)
}

// LogBlockClassified records a block finishing classification, before it
// is handed to the reorder buffer.
func (l *Logger) LogBlockClassified(ctx context.Context, blockID uint64, classified, total int) {
	l.DebugContext(ctx, "block classified", "block_id", blockID, "classified", classified, "total", total)
}

// LogIndexLoaded records the taxonomy/index load completing at startup.
func (l *Logger) LogIndexLoaded(ctx context.Context, taxa, minimizers int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index load failed", "error", err)
		return
	}
	l.InfoContext(ctx, "index loaded", "taxa", taxa, "minimizers", minimizers)
}

// LogRunComplete records final run totals.
func (l *Logger) LogRunComplete(ctx context.Context, processed, classified uint64) {
	l.InfoContext(ctx, "run complete", "processed", processed, "classified", classified)
}
