package ddbgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with ddbgo-specific context.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithHandle adds a handle field to the logger.
func (l *Logger) WithHandle(h Handle) *Logger {
	return &Logger{
		Logger: l.Logger.With("handle", uint64(h)),
	}
}

// LogConnect logs a connection attempt.
func (l *Logger) LogConnect(ctx context.Context, addr string, err error) {
	if err != nil {
		l.WarnContext(ctx, "connect failed",
			"addr", addr,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "connected",
			"addr", addr,
		)
	}
}

// LogRun logs a script execution.
func (l *Logger) LogRun(ctx context.Context, script string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"script", script,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "run completed",
			"script", script,
			"duration", duration,
		)
	}
}

// LogUpload logs an upload of one or more variables.
func (l *Logger) LogUpload(ctx context.Context, names []string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "upload failed",
			"names", names,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "upload completed",
			"count", len(names),
		)
	}
}

// LogFault logs a panic recovered at the bridge boundary.
func (l *Logger) LogFault(ctx context.Context, op string, recovered any, stack []byte) {
	l.ErrorContext(ctx, "recovered fault",
		"op", op,
		"panic", recovered,
		"stack", string(stack),
	)
}

// LogClose logs a failure to close an object whose last handle was released.
func (l *Logger) LogClose(ctx context.Context, kind string, err error) {
	l.WarnContext(ctx, "close failed",
		"kind", kind,
		"error", err,
	)
}
