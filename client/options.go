package client

import (
	"io"
	"log/slog"
	"time"
)

type options struct {
	logger      *slog.Logger
	callTimeout time.Duration
}

func defaultOptions() options {
	return options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures a Connection.
type Option func(*options)

// WithLogger sets the structured logger. Nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCallTimeout bounds every Run, Call and Upload. Zero disables it.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		o.callTimeout = d
	}
}
