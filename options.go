package ddbgo

import (
	"log/slog"
	"time"

	"github.com/hupe1980/ddbgo/checkpoint"
	"github.com/hupe1980/ddbgo/client"
	"github.com/hupe1980/ddbgo/stream"
)

type options struct {
	metricsCollector  MetricsCollector
	logger            *Logger
	dialer            client.Dialer
	feedDialer        stream.Dialer
	callTimeout       time.Duration
	queueCapacity     int
	checkpoints       checkpoint.Store
	maxSubscriptions  int64
	reconnectInterval time.Duration
}

// Option configures a Bridge.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &ddbgo.BasicMetricsCollector{}
//	b := ddbgo.New(ddbgo.WithMetricsCollector(metrics))
//	// ... use b ...
//	stats := metrics.GetStats()
//	fmt.Printf("Runs: %d, Avg latency: %dns\n", stats.RunCount, stats.RunAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithDialer sets the session dialer used by connections. The default is an
// in-process client.LocalEngine owned by the Bridge.
func WithDialer(d client.Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithFeedDialer sets the dialer used by polling clients. The default is an
// in-process stream.Hub owned by the Bridge.
func WithFeedDialer(d stream.Dialer) Option {
	return func(o *options) {
		o.feedDialer = d
	}
}

// WithCallTimeout bounds every Run, Call and Upload. Zero disables it.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		o.callTimeout = d
	}
}

// WithQueueCapacity sets the capacity of subscription queues.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		o.queueCapacity = n
	}
}

// WithCheckpointStore makes polling clients commit delivered offsets and
// resume from them.
func WithCheckpointStore(s checkpoint.Store) Option {
	return func(o *options) {
		o.checkpoints = s
	}
}

// WithMaxSubscriptions bounds the active subscriptions across all polling
// clients of a Bridge. Zero means unbounded.
func WithMaxSubscriptions(n int64) Option {
	return func(o *options) {
		o.maxSubscriptions = n
	}
}

// WithReconnectInterval sets the minimum spacing between reconnect attempts
// across all polling clients of a Bridge. Zero leaves reconnects unpaced.
func WithReconnectInterval(d time.Duration) Option {
	return func(o *options) {
		o.reconnectInterval = d
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		queueCapacity:    stream.DefaultQueueCapacity,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
