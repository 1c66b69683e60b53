package stream

import (
	"io"
	"log/slog"
	"time"

	"github.com/hupe1980/ddbgo/checkpoint"
	"github.com/hupe1980/ddbgo/resource"
)

// DefaultQueueCapacity is the capacity of a subscription queue.
const DefaultQueueCapacity = 4096

type options struct {
	logger            *slog.Logger
	queueCapacity     int
	checkpoints       checkpoint.Store
	controller        *resource.Controller
	maxSubscriptions  int64
	reconnectInterval time.Duration
}

func defaultOptions() options {
	return options{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		queueCapacity: DefaultQueueCapacity,
	}
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the structured logger. Nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithQueueCapacity sets the capacity of every subscription queue. A full
// queue blocks delivery until the consumer polls.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueCapacity = n
		}
	}
}

// WithCheckpointStore commits the last delivered offset per topic and
// resumes subscriptions without an explicit offset from it.
func WithCheckpointStore(s checkpoint.Store) Option {
	return func(o *options) {
		o.checkpoints = s
	}
}

// WithController shares a resource controller between clients. It takes
// precedence over WithMaxSubscriptions and WithReconnectInterval.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithMaxSubscriptions bounds the number of active subscriptions.
func WithMaxSubscriptions(n int64) Option {
	return func(o *options) {
		o.maxSubscriptions = n
	}
}

// WithReconnectInterval sets the minimum spacing between reconnect attempts
// across all subscriptions of the client. Zero leaves reconnects unpaced.
func WithReconnectInterval(d time.Duration) Option {
	return func(o *options) {
		o.reconnectInterval = d
	}
}
