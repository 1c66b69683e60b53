package ddbgo

import (
	"net"
	"strconv"
	"time"

	"github.com/hupe1980/ddbgo/client"
	"github.com/hupe1980/ddbgo/stream"
	"github.com/hupe1980/ddbgo/value"
)

func withConnection[T any](b *Bridge, op string, h Handle, fn func(c *client.Connection) (T, error)) T {
	return guard(b, op, func() (T, error) {
		var zero T
		if err := b.usable(); err != nil {
			return zero, err
		}
		c, err := lookup[*client.Connection](b, h, "Connection")
		if err != nil {
			return zero, err
		}
		return fn(c)
	})
}

// ConnectionNew creates a disconnected connection.
func (b *Bridge) ConnectionNew() Handle {
	return guard(b, "ConnectionNew", func() (Handle, error) {
		c := client.New(b.opts.dialer, client.WithCallTimeout(b.opts.callTimeout))
		return b.putCloser(c)
	})
}

// ConnectionConnect opens a session. It returns false on authentication or
// network failure; there is no retry.
func (b *Bridge) ConnectionConnect(h Handle, host string, port int, user, password string) bool {
	return withConnection(b, "ConnectionConnect", h, func(c *client.Connection) (bool, error) {
		err := c.Connect(b.ctx, host, port, user, password)
		b.opts.logger.WithHandle(h).LogConnect(b.ctx, net.JoinHostPort(host, strconv.Itoa(port)), err)
		return err == nil, err
	})
}

// ConnectionState returns 0 when disconnected and 1 when connected. A
// connection whose session failed in transport reports 0 for good.
func (b *Bridge) ConnectionState(h Handle) int {
	return withConnection(b, "ConnectionState", h, func(c *client.Connection) (int, error) {
		return int(c.State()), nil
	})
}

// ConnectionRun executes script and returns a handle to its result. Remote
// failures return NilHandle with a *client.RemoteError in LastError.
func (b *Bridge) ConnectionRun(h Handle, script string) Handle {
	return b.run("ConnectionRun", h, script, nil)
}

// ConnectionRunWithOption is ConnectionRun with an explicit job priority
// (0 to 9), parallelism (1 to 64) and fetch size (0 or at least 8192).
func (b *Bridge) ConnectionRunWithOption(h Handle, script string, priority, parallelism, fetchSize int) Handle {
	return b.run("ConnectionRunWithOption", h, script, behavior(priority, parallelism, fetchSize))
}

func (b *Bridge) run(op string, h Handle, script string, opts []client.RunOption) Handle {
	return withConnection(b, op, h, func(c *client.Connection) (Handle, error) {
		start := time.Now()
		v, err := c.Run(b.ctx, script, opts...)
		b.recordRun(h, script, start, err)
		if err != nil {
			return NilHandle, err
		}
		return b.put(v), nil
	})
}

// ConnectionCall invokes fn with the elements of the vector behind args as
// arguments. A NilHandle args calls fn without arguments.
func (b *Bridge) ConnectionCall(h Handle, fn string, args Handle) Handle {
	return b.call("ConnectionCall", h, fn, args, nil)
}

// ConnectionCallWithOption is ConnectionCall with the job options of
// ConnectionRunWithOption.
func (b *Bridge) ConnectionCallWithOption(h Handle, fn string, args Handle, priority, parallelism, fetchSize int) Handle {
	return b.call("ConnectionCallWithOption", h, fn, args, behavior(priority, parallelism, fetchSize))
}

func (b *Bridge) call(op string, h Handle, fn string, args Handle, opts []client.RunOption) Handle {
	return withConnection(b, op, h, func(c *client.Connection) (Handle, error) {
		var list []*value.Value
		if args != NilHandle {
			v, err := narrow(b, args, "VECTOR", (*value.Value).AsVector)
			if err != nil {
				return NilHandle, err
			}
			list = make([]*value.Value, v.Len())
			for i := range list {
				list[i] = v.Get(i)
			}
		}

		start := time.Now()
		v, err := c.CallWithOptions(b.ctx, fn, list, opts...)
		b.recordRun(h, fn, start, err)
		if err != nil {
			return NilHandle, err
		}
		return b.put(v), nil
	})
}

func behavior(priority, parallelism, fetchSize int) []client.RunOption {
	return []client.RunOption{
		client.WithPriority(priority),
		client.WithParallelism(parallelism),
		client.WithFetchSize(fetchSize),
	}
}

func (b *Bridge) recordRun(h Handle, script string, start time.Time, err error) {
	d := time.Since(start)
	b.opts.metricsCollector.RecordRun(d, err)
	b.opts.logger.WithHandle(h).LogRun(b.ctx, script, d, err)
}

// ConnectionUpload binds the value behind v to name in the session.
func (b *Bridge) ConnectionUpload(h Handle, name string, v Handle) bool {
	return b.ConnectionUploadAll(h, []string{name}, []Handle{v})
}

// ConnectionUploadAll binds several variables in one round trip.
func (b *Bridge) ConnectionUploadAll(h Handle, names []string, vs []Handle) bool {
	return withConnection(b, "ConnectionUpload", h, func(c *client.Connection) (bool, error) {
		vals, err := b.values(vs)
		if err != nil {
			return false, err
		}
		start := time.Now()
		err = c.UploadAll(b.ctx, names, vals)
		b.opts.metricsCollector.RecordUpload(len(names), time.Since(start), err)
		b.opts.logger.WithHandle(h).LogUpload(b.ctx, names, err)
		return err == nil, err
	})
}

// ConnectionClose ends the session. The handle stays valid until released,
// but the connection cannot connect again.
func (b *Bridge) ConnectionClose(h Handle) bool {
	return guard(b, "ConnectionClose", func() (bool, error) {
		c, err := lookup[*client.Connection](b, h, "Connection")
		if err != nil {
			return false, err
		}
		return true, c.Close()
	})
}

// DefaultActionName is the action used for subscriptions without one.
func (b *Bridge) DefaultActionName() string {
	return stream.DefaultActionName
}

func withPollingClient[T any](b *Bridge, op string, h Handle, fn func(c *stream.Client) (T, error)) T {
	return guard(b, op, func() (T, error) {
		var zero T
		if err := b.usable(); err != nil {
			return zero, err
		}
		c, err := lookup[*stream.Client](b, h, "PollingClient")
		if err != nil {
			return zero, err
		}
		return fn(c)
	})
}

// PollingClientNew creates a streaming client listening on port.
func (b *Bridge) PollingClientNew(listenPort int) Handle {
	return guard(b, "PollingClientNew", func() (Handle, error) {
		c := stream.NewClient(listenPort, b.opts.feedDialer,
			stream.WithLogger(b.opts.logger.Logger),
			stream.WithQueueCapacity(b.opts.queueCapacity),
			stream.WithCheckpointStore(b.opts.checkpoints),
			stream.WithController(b.ctl),
		)
		return b.putCloser(c)
	})
}

// PollingClientSubscribe subscribes to table and returns a handle to the
// subscription's queue. A negative offset starts at the end of the table,
// or after the last checkpointed offset if a checkpoint store is set.
func (b *Bridge) PollingClientSubscribe(h Handle, host string, port int, table, action string, offset int64) Handle {
	return withPollingClient(b, "PollingClientSubscribe", h, func(c *stream.Client) (Handle, error) {
		q, err := c.Subscribe(b.ctx, host, port, table, action, offset)
		if err != nil {
			return NilHandle, err
		}
		return b.put(q), nil
	})
}

// PollingClientUnsubscribe ends delivery for one subscription. Messages
// already queued stay pollable.
func (b *Bridge) PollingClientUnsubscribe(h Handle, host string, port int, table, action string) bool {
	return withPollingClient(b, "PollingClientUnsubscribe", h, func(c *stream.Client) (bool, error) {
		err := c.Unsubscribe(host, port, table, action)
		return err == nil, err
	})
}

// PollingClientClose ends every subscription of the client.
func (b *Bridge) PollingClientClose(h Handle) bool {
	return guard(b, "PollingClientClose", func() (bool, error) {
		c, err := lookup[*stream.Client](b, h, "PollingClient")
		if err != nil {
			return false, err
		}
		return true, c.Close()
	})
}

func (b *Bridge) poll(q Handle, timeoutMillis int) (stream.Message, bool, error) {
	queue, err := lookup[*stream.Queue](b, q, "MessageQueue")
	if err != nil {
		return stream.Message{}, false, err
	}
	start := time.Now()
	m, ok := queue.Poll(time.Duration(timeoutMillis) * time.Millisecond)
	b.opts.metricsCollector.RecordPoll(ok, time.Since(start))
	return m, ok, nil
}

// MessageQueuePoll waits up to timeoutMillis for the next message and stores
// a handle to its body in out. A timeout of zero or less does not block.
func (b *Bridge) MessageQueuePoll(q Handle, out *Handle, timeoutMillis int) bool {
	return guard(b, "MessageQueuePoll", func() (bool, error) {
		m, ok, err := b.poll(q, timeoutMillis)
		if err != nil || !ok {
			return false, err
		}
		*out = b.put(m.Body)
		return true, nil
	})
}

// MessageQueuePollMessage is MessageQueuePoll storing a message handle,
// which exposes the offset and topic besides the body.
func (b *Bridge) MessageQueuePollMessage(q Handle, out *Handle, timeoutMillis int) bool {
	return guard(b, "MessageQueuePollMessage", func() (bool, error) {
		m, ok, err := b.poll(q, timeoutMillis)
		if err != nil || !ok {
			return false, err
		}
		*out = b.put(&m)
		return true, nil
	})
}

// MessageQueueLen returns the number of queued messages.
func (b *Bridge) MessageQueueLen(q Handle) int {
	return guard(b, "MessageQueueLen", func() (int, error) {
		queue, err := lookup[*stream.Queue](b, q, "MessageQueue")
		if err != nil {
			return 0, err
		}
		return queue.Len(), nil
	})
}

// MessageQueueClosed reports whether delivery has ended. Queued messages
// stay pollable.
func (b *Bridge) MessageQueueClosed(q Handle) bool {
	return guard(b, "MessageQueueClosed", func() (bool, error) {
		queue, err := lookup[*stream.Queue](b, q, "MessageQueue")
		if err != nil {
			return false, err
		}
		return queue.Closed(), nil
	})
}

// MessageOffset returns the offset of the message, or -1 for an invalid
// handle.
func (b *Bridge) MessageOffset(h Handle) int64 {
	if m, err := lookup[*stream.Message](b, h, "Message"); err == nil {
		return m.Offset
	}
	return -1
}

// MessageTopic returns the topic the message was delivered on,
// host:port/table/action.
func (b *Bridge) MessageTopic(h Handle) string {
	return guard(b, "MessageTopic", func() (string, error) {
		m, err := lookup[*stream.Message](b, h, "Message")
		if err != nil {
			return "", err
		}
		return m.Topic, nil
	})
}

// MessageBody returns a handle to the message body.
func (b *Bridge) MessageBody(h Handle) Handle {
	return guard(b, "MessageBody", func() (Handle, error) {
		m, err := lookup[*stream.Message](b, h, "Message")
		if err != nil {
			return NilHandle, err
		}
		return b.putValue(m.Body)
	})
}
