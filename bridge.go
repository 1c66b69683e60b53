package ddbgo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"

	"github.com/hupe1980/ddbgo/client"
	"github.com/hupe1980/ddbgo/internal/handle"
	"github.com/hupe1980/ddbgo/resource"
	"github.com/hupe1980/ddbgo/stream"
	"github.com/hupe1980/ddbgo/value"
)

// Handle is an opaque reference to an object owned by a Bridge. The zero
// Handle never refers to anything and is returned on failure.
type Handle uint64

// NilHandle is the zero Handle.
const NilHandle Handle = 0

// Bridge is the flat, handle-based surface. Every entry point recovers
// panics, records failures for LastError and reports them through its
// zero, false or NilHandle result.
//
// A Bridge is safe for concurrent use. The objects behind its handles are
// not: mutations of one container must be serialized by the caller.
type Bridge struct {
	opts    options
	handles *handle.Table
	ctl     *resource.Controller

	engine *client.LocalEngine
	hub    *stream.Hub

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	lastErr error
	closers map[io.Closer]struct{}
	closed  bool
}

// New creates a Bridge.
func New(optFns ...Option) *Bridge {
	opts := applyOptions(optFns)
	ctx, cancel := context.WithCancel(context.Background())

	b := &Bridge{
		opts:    opts,
		handles: handle.New(),
		ctl: resource.NewController(resource.Config{
			MaxSubscriptions:  opts.maxSubscriptions,
			ReconnectInterval: opts.reconnectInterval,
		}),
		ctx:     ctx,
		cancel:  cancel,
		closers: make(map[io.Closer]struct{}),
	}

	if opts.dialer == nil {
		b.engine = client.NewLocalEngine()
		b.opts.dialer = b.engine
	}
	if opts.feedDialer == nil {
		b.hub = stream.NewHub()
		b.opts.feedDialer = b.hub
	}
	return b
}

// Engine returns the in-process engine connections dial when no dialer was
// configured, or nil.
func (b *Bridge) Engine() *client.LocalEngine { return b.engine }

// Hub returns the in-process publisher polling clients subscribe to when no
// feed dialer was configured, or nil.
func (b *Bridge) Hub() *stream.Hub { return b.hub }

// Close flushes every table writer, then closes every connection and
// polling client still referenced by a handle. Handles stay valid but further operations fail with ErrClosed.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	closers := b.closers
	b.closers = nil
	b.mu.Unlock()

	b.cancel()

	// Writers flush through their connections, so they close first.
	var errs []error
	closeAll := func(writers bool) {
		for c := range closers {
			if _, ok := c.(*client.TableWriter); ok != writers {
				continue
			}
			if err := c.Close(); err != nil && !errors.Is(err, stream.ErrClosed) {
				errs = append(errs, err)
			}
		}
	}
	closeAll(true)
	closeAll(false)
	if b.hub != nil {
		errs = append(errs, b.hub.Close())
	}
	return errors.Join(errs...)
}

// LastError returns the error of the most recent failed operation, or nil.
// It is shared by all goroutines using the Bridge.
func (b *Bridge) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// LastErrorMessage returns LastError as text, or "" if there is none.
func (b *Bridge) LastErrorMessage() string {
	if err := b.LastError(); err != nil {
		return err.Error()
	}
	return ""
}

// ClearError resets LastError.
func (b *Bridge) ClearError() {
	b.mu.Lock()
	b.lastErr = nil
	b.mu.Unlock()
}

func (b *Bridge) fail(err error) {
	b.mu.Lock()
	b.lastErr = err
	b.mu.Unlock()
}

// Release gives up one unit of ownership. The object is freed once no
// handle refers to it; views keep their backing storage alive on their own.
func (b *Bridge) Release(h Handle) bool {
	return guard(b, "Release", func() (bool, error) {
		obj, last, err := b.handles.Release(handle.ID(h))
		if err != nil {
			return false, err
		}
		if c, ok := obj.(io.Closer); ok && last {
			b.mu.Lock()
			_, tracked := b.closers[c]
			delete(b.closers, c)
			b.mu.Unlock()
			if tracked {
				if err := c.Close(); err != nil && !errors.Is(err, stream.ErrClosed) {
					b.opts.logger.WithHandle(h).LogClose(b.ctx, kindOf(obj), err)
				}
			}
		}
		b.opts.metricsCollector.RecordHandles(b.handles.Stats().Live)
		return true, nil
	})
}

// Retain issues a second, independently releasable handle to the object
// behind h.
func (b *Bridge) Retain(h Handle) Handle {
	return guard(b, "Retain", func() (Handle, error) {
		id, err := b.handles.Share(handle.ID(h))
		if err != nil {
			return NilHandle, err
		}
		b.opts.metricsCollector.RecordHandles(b.handles.Stats().Live)
		return Handle(id), nil
	})
}

// Refs returns the number of live handles sharing the object behind h.
func (b *Bridge) Refs(h Handle) int {
	return b.handles.Refs(handle.ID(h))
}

// HandleStats returns handle usage counters.
func (b *Bridge) HandleStats() handle.Stats {
	return b.handles.Stats()
}

func (b *Bridge) put(obj any) Handle {
	h := Handle(b.handles.Put(obj))
	b.opts.metricsCollector.RecordHandles(b.handles.Stats().Live)
	return h
}

func (b *Bridge) putValue(v *value.Value) (Handle, error) {
	if v == nil {
		return NilHandle, ErrOutOfRange
	}
	return b.put(v), nil
}

// putCloser stores c and closes it with the Bridge unless released first.
func (b *Bridge) putCloser(c io.Closer) (Handle, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = c.Close()
		return NilHandle, ErrClosed
	}
	b.closers[c] = struct{}{}
	b.mu.Unlock()
	return b.put(c), nil
}

func (b *Bridge) usable() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

func lookup[T any](b *Bridge, h Handle, kind string) (T, error) {
	var zero T
	obj, err := b.handles.Get(handle.ID(h))
	if err != nil {
		return zero, err
	}
	v, ok := obj.(T)
	if !ok {
		return zero, &HandleKindError{Want: kind, Got: kindOf(obj)}
	}
	return v, nil
}

func kindOf(obj any) string {
	switch o := obj.(type) {
	case *value.Value:
		return o.Form().String()
	case *client.Connection:
		return "Connection"
	case *client.TableWriter:
		return "TableWriter"
	case *stream.Client:
		return "PollingClient"
	case *stream.Queue:
		return "MessageQueue"
	case *stream.Message:
		return "Message"
	default:
		return fmt.Sprintf("%T", obj)
	}
}

// guard runs fn as one boundary call. A panic becomes a *PanicError, and
// every failure is recorded for LastError before the zero result is
// returned.
func guard[T any](b *Bridge, op string, fn func() (T, error)) (out T) {
	defer func() {
		if r := recover(); r != nil {
			b.opts.logger.LogFault(b.ctx, op, r, debug.Stack())
			b.fail(&PanicError{Op: op, Value: r})
			var zero T
			out = zero
		}
	}()

	v, err := fn()
	if err != nil {
		b.fail(fmt.Errorf("%s: %w", op, translateError(err)))
		var zero T
		return zero
	}
	return v
}
