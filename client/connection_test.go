package client

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, e *LocalEngine, opts ...Option) *Connection {
	t.Helper()
	c := New(e, opts...)
	require.NoError(t, c.Connect(context.Background(), "localhost", 8848, "admin", "123456"))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestConnection_StateMachine(t *testing.T) {
	ctx := context.Background()
	e := NewLocalEngine()
	c := New(e)
	assert.Equal(t, Disconnected, c.State())

	_, err := c.Run(ctx, "1")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, c.Upload(ctx, "x", value.NewInt(1)), ErrNotConnected)

	require.NoError(t, c.Connect(ctx, "localhost", 8848, "admin", "123456"))
	assert.Equal(t, Connected, c.State())
	assert.Equal(t, "localhost:8848", c.Address())
	assert.Equal(t, int64(1), e.Sessions())
	assert.ErrorIs(t, c.Connect(ctx, "localhost", 8848, "admin", "123456"), ErrAlreadyConnected)

	require.NoError(t, c.Close())
	assert.Equal(t, Disconnected, c.State())
	assert.Equal(t, int64(0), e.Sessions())
	require.NoError(t, c.Close())

	_, err = c.Run(ctx, "1")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Connect(ctx, "localhost", 8848, "admin", "123456"), ErrClosed)
	assert.Equal(t, Disconnected, c.State())
	assert.Equal(t, int64(0), e.Sessions())
}

func TestConnection_CloseBeforeConnect(t *testing.T) {
	c := New(NewLocalEngine())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Connect(context.Background(), "localhost", 8848, "", ""), ErrClosed)
}

type brokenSession struct {
	err    error
	closes int
}

func (s *brokenSession) Run(context.Context, string) (*value.Value, error) { return nil, s.err }

func (s *brokenSession) Call(context.Context, string, []*value.Value) (*value.Value, error) {
	return nil, s.err
}

func (s *brokenSession) Upload(context.Context, map[string]*value.Value) error { return s.err }

func (s *brokenSession) Close() error {
	s.closes++
	return nil
}

type sessionDialer struct{ s Session }

func (d sessionDialer) Dial(context.Context, string, string, string) (Session, error) {
	return d.s, nil
}

func TestConnection_TransportFailure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		call func(c *Connection) error
	}{
		{"run eof", io.EOF, func(c *Connection) error {
			_, err := c.Run(ctx, "1")
			return err
		}},
		{"call reset", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}, func(c *Connection) error {
			_, err := c.Call(ctx, "f")
			return err
		}},
		{"upload lost", ErrConnectionLost, func(c *Connection) error {
			return c.Upload(ctx, "x", value.NewInt(1))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &brokenSession{err: tt.err}
			c := New(sessionDialer{s})
			require.NoError(t, c.Connect(ctx, "localhost", 8848, "", ""))

			err := tt.call(c)
			assert.ErrorIs(t, err, ErrConnectionLost)
			var re *RemoteError
			assert.False(t, errors.As(err, &re))

			assert.Equal(t, Disconnected, c.State())
			assert.Empty(t, c.Address())
			assert.Equal(t, 1, s.closes)

			_, err = c.Run(ctx, "1")
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, c.Connect(ctx, "localhost", 8848, "", ""), ErrClosed)
			require.NoError(t, c.Close())
			assert.Equal(t, 1, s.closes)
		})
	}
}

func TestConnection_RemoteErrorKeepsSession(t *testing.T) {
	s := &brokenSession{err: errors.New("table not found")}
	c := New(sessionDialer{s})
	require.NoError(t, c.Connect(context.Background(), "localhost", 8848, "", ""))

	_, err := c.Run(context.Background(), "t")
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, Connected, c.State())
	assert.Equal(t, 0, s.closes)
}

func TestConnection_ConnectFailures(t *testing.T) {
	ctx := context.Background()
	e := NewLocalEngine()
	e.AddUser("admin", "123456")

	c := New(e)
	assert.ErrorIs(t, c.Connect(ctx, "localhost", 8848, "admin", "wrong"), ErrAuth)
	assert.Equal(t, Disconnected, c.State())

	assert.ErrorIs(t, c.Connect(ctx, "", 8848, "admin", "123456"), ErrInvalidArgument)
	assert.ErrorIs(t, c.Connect(ctx, "localhost", 0, "admin", "123456"), ErrInvalidArgument)

	require.NoError(t, c.Connect(ctx, "localhost", 8848, "admin", "123456"))
}

func TestConnection_Run(t *testing.T) {
	ctx := context.Background()
	c := connect(t, NewLocalEngine())

	tests := []struct {
		script string
		want   *value.Value
	}{
		{"1", value.NewInt(1)},
		{"5l", value.NewLong(5)},
		{"1.5", value.NewDouble(1.5)},
		{`"abc"`, value.NewString("abc")},
		{"`IBM", value.NewSymbol("IBM")},
		{"true", value.NewBool(true)},
		{"[1,2,3]", value.NewIntVector(1, 2, 3).Value},
		{"size([1,2,3])", value.NewInt(3)},
		{"sum([1.5,2.5])", value.NewDouble(4)},
		{`typestr("x")`, value.NewString("STRING")},
		{"form([1])", value.NewString("VECTOR")},
	}
	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			got, err := c.Run(ctx, tt.script)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s", got)
		})
	}

	v, err := c.Run(ctx, "NULL")
	require.NoError(t, err)
	assert.Equal(t, model.TypeVoid, v.Type())
}

func TestConnection_RemoteErrors(t *testing.T) {
	ctx := context.Background()
	e := NewLocalEngine()
	e.Register("boom", func(context.Context, []*value.Value) (*value.Value, error) {
		panic("engine exploded")
	})
	e.Register("fail", func(context.Context, []*value.Value) (*value.Value, error) {
		return nil, errors.New("table not found")
	})
	c := connect(t, e)

	t.Run("panic", func(t *testing.T) {
		_, err := c.Run(ctx, "boom()")
		var re *RemoteError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "boom()", re.Script)
		assert.Contains(t, err.Error(), "engine exploded")
	})

	t.Run("error", func(t *testing.T) {
		_, err := c.Run(ctx, "fail()")
		var re *RemoteError
		require.ErrorAs(t, err, &re)
		assert.Contains(t, re.Unwrap().Error(), "table not found")
	})

	t.Run("undefined", func(t *testing.T) {
		_, err := c.Run(ctx, "nope")
		assert.ErrorIs(t, err, ErrUndefined)
		_, err = c.Run(ctx, "nope(1)")
		assert.ErrorIs(t, err, ErrUndefined)
	})

	t.Run("syntax", func(t *testing.T) {
		_, err := c.Run(ctx, "size([1,2)")
		assert.ErrorIs(t, err, ErrSyntax)
	})

	assert.Equal(t, Connected, c.State())
}

func TestConnection_Call(t *testing.T) {
	ctx := context.Background()
	e := NewLocalEngine()
	e.Register("add", func(_ context.Context, args []*value.Value) (*value.Value, error) {
		return value.NewLong(args[0].Long() + args[1].Long()), nil
	})
	c := connect(t, e)

	v, err := c.Call(ctx, "add", value.NewLong(2), value.NewLong(3))
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Long())

	_, err = c.Call(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestConnection_UploadSnapshot(t *testing.T) {
	ctx := context.Background()
	e := NewLocalEngine()
	c := connect(t, e)

	prices := value.NewDoubleVector(1, 2, 3)
	require.NoError(t, c.Upload(ctx, "prices", prices.Value))

	prices.SetDoubleAt(0, 100)

	got, err := c.Run(ctx, "prices")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.DoubleAt(0))

	sum, err := c.Run(ctx, "sum(prices)")
	require.NoError(t, err)
	assert.Equal(t, 6.0, sum.Double())

	got.SetDoubleAt(1, 50)
	again, _ := e.Get("prices")
	assert.Equal(t, 2.0, again.DoubleAt(1))

	require.NoError(t, c.UploadAll(ctx, []string{"a", "b"}, []*value.Value{value.NewInt(1), value.NewString("x")}))
	assert.Equal(t, []string{"a", "b", "prices"}, e.Variables())

	_, err = c.Run(ctx, "undef(`a)")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "prices"}, e.Variables())

	assert.ErrorIs(t, c.UploadAll(ctx, []string{"a"}, nil), ErrInvalidArgument)
	assert.ErrorIs(t, c.Upload(ctx, "1bad", value.NewInt(1)), ErrInvalidArgument)
}

func TestConnection_CallTimeout(t *testing.T) {
	e := NewLocalEngine()
	e.Register("slow", func(ctx context.Context, _ []*value.Value) (*value.Value, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c := connect(t, e, WithCallTimeout(10*time.Millisecond))

	_, err := c.Run(context.Background(), "slow()")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Connected, c.State())
}
