package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/hupe1980/ddbgo/value"
)

// Session is an authenticated conversation with an engine.
type Session interface {
	Run(ctx context.Context, script string) (*value.Value, error)
	Call(ctx context.Context, fn string, args []*value.Value) (*value.Value, error)
	Upload(ctx context.Context, vars map[string]*value.Value) error
	Close() error
}

// Dialer opens sessions.
type Dialer interface {
	Dial(ctx context.Context, addr, user, password string) (Session, error)
}

// State is the connection state. A connection moves from Disconnected to
// Connected once; closing it or losing the session ends it for good.
type State int32

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// Connection is a synchronous connection. Calls are serialized; one call
// path per connection.
type Connection struct {
	dialer Dialer
	opts   options

	mu      sync.Mutex
	session Session
	addr    string
	closed  bool
}

// New creates a disconnected connection.
func New(dialer Dialer, optFns ...Option) *Connection {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Connection{dialer: dialer, opts: opts}
}

// State returns the current state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Disconnected
	}
	return Connected
}

// Address returns the address of the current session, or "".
func (c *Connection) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

// Connect opens a session. There is no retry; a failed attempt leaves the
// connection disconnected.
func (c *Connection) Connect(ctx context.Context, host string, port int, user, password string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.session != nil {
		return ErrAlreadyConnected
	}
	if host == "" || port <= 0 || port > 65535 {
		return fmt.Errorf("%w: address %s:%d", ErrInvalidArgument, host, port)
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	s, err := c.dialer.Dial(ctx, addr, user, password)
	if err != nil {
		c.opts.logger.WarnContext(ctx, "connect failed", "addr", addr, "user", user, "error", err)
		return err
	}

	c.session = s
	c.addr = addr
	c.opts.logger.InfoContext(ctx, "connected", "addr", addr, "user", user)
	return nil
}

func (c *Connection) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.callTimeout > 0 {
		return context.WithTimeout(ctx, c.opts.callTimeout)
	}
	return ctx, func() {}
}

// guarded runs fn against the session. Errors and panics of the session
// become *RemoteError, except transport failures, which end the session.
func (c *Connection) guarded(ctx context.Context, what string, fn func(ctx context.Context, s Session) (*value.Value, error)) (out *value.Value, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.session == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = NewRemoteError(what, fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			c.opts.logger.DebugContext(ctx, "call failed", "script", what, "error", err)
		}
	}()

	out, err = fn(ctx, c.session)
	if err != nil && isTransport(err) {
		c.dropLocked(ctx, err)
		if !errors.Is(err, ErrConnectionLost) {
			err = fmt.Errorf("%w: %w", ErrConnectionLost, err)
		}
		return nil, err
	}
	if err != nil {
		var re *RemoteError
		if !errors.As(err, &re) {
			err = NewRemoteError(what, err)
		}
		return nil, err
	}
	if out == nil {
		out = value.NewVoid()
	}
	return out, nil
}

// Run executes script and returns its result. Options reach the session
// through the context; see BehaviorFromContext.
func (c *Connection) Run(ctx context.Context, script string, opts ...RunOption) (*value.Value, error) {
	ctx, err := applyRunOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return c.guarded(ctx, script, func(ctx context.Context, s Session) (*value.Value, error) {
		return s.Run(ctx, script)
	})
}

// Call invokes the function fn with args.
func (c *Connection) Call(ctx context.Context, fn string, args ...*value.Value) (*value.Value, error) {
	return c.CallWithOptions(ctx, fn, args)
}

// CallWithOptions is Call with per-request behavior options.
func (c *Connection) CallWithOptions(ctx context.Context, fn string, args []*value.Value, opts ...RunOption) (*value.Value, error) {
	if fn == "" {
		return nil, fmt.Errorf("%w: empty function name", ErrInvalidArgument)
	}
	ctx, err := applyRunOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return c.guarded(ctx, fn, func(ctx context.Context, s Session) (*value.Value, error) {
		return s.Call(ctx, fn, args)
	})
}

// Upload binds v to name in the session's variable namespace.
func (c *Connection) Upload(ctx context.Context, name string, v *value.Value) error {
	return c.UploadAll(ctx, []string{name}, []*value.Value{v})
}

// UploadAll binds several variables in one round trip.
func (c *Connection) UploadAll(ctx context.Context, names []string, values []*value.Value) error {
	if len(names) != len(values) || len(names) == 0 {
		return fmt.Errorf("%w: %d names for %d values", ErrInvalidArgument, len(names), len(values))
	}
	vars := make(map[string]*value.Value, len(names))
	for i, n := range names {
		if !validIdent(n) || values[i] == nil {
			return fmt.Errorf("%w: variable %q", ErrInvalidArgument, n)
		}
		vars[n] = values[i]
	}
	_, err := c.guarded(ctx, "upload", func(ctx context.Context, s Session) (*value.Value, error) {
		return nil, s.Upload(ctx, vars)
	})
	return err
}

// Close ends the session. The connection cannot connect again; closing it
// twice is a no-op.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	c.opts.logger.Info("disconnected", "addr", c.addr)
	c.addr = ""
	return err
}

func (c *Connection) dropLocked(ctx context.Context, cause error) {
	c.closed = true
	if err := c.session.Close(); err != nil {
		c.opts.logger.DebugContext(ctx, "close after transport failure", "addr", c.addr, "error", err)
	}
	c.session = nil
	c.opts.logger.WarnContext(ctx, "connection lost", "addr", c.addr, "error", cause)
	c.addr = ""
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
