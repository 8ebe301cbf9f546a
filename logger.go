package colgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with colgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithColumns adds a column count field to the logger.
func (l *Logger) WithColumns(columns int) *Logger {
	return &Logger{
		Logger: l.Logger.With("columns", columns),
	}
}

// WithRows adds a row count field to the logger.
func (l *Logger) WithRows(rows int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("rows", rows),
	}
}

// LogSearchSorted logs a single-column search operation.
func (l *Logger) LogSearchSorted(ctx context.Context, dataRows, keyRows int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search sorted failed",
			"data_rows", dataRows,
			"key_rows", keyRows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search sorted completed",
			"data_rows", dataRows,
			"key_rows", keyRows,
		)
	}
}

// LogSearchSortedTable logs a multi-column search operation.
func (l *Logger) LogSearchSortedTable(ctx context.Context, columns int, dataRows, keyRows int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "table search sorted failed",
			"columns", columns,
			"data_rows", dataRows,
			"key_rows", keyRows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "table search sorted completed",
			"columns", columns,
			"data_rows", dataRows,
			"key_rows", keyRows,
		)
	}
}
