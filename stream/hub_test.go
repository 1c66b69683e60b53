package stream

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/hupe1980/ddbgo/codec"
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_Publish(t *testing.T) {
	h := newHub(t)

	off, err := h.Offset("trades")
	require.NoError(t, err)
	assert.Equal(t, int64(0), off)

	insert(t, h, 1, 2)
	start, err := h.Insert("trades", value.NewIntVector(3).Value, value.NewDoubleVector(1).Value)
	require.NoError(t, err)
	assert.Equal(t, int64(2), start)

	_, err = h.Insert("trades", value.NewIntVector(3).Value)
	assert.ErrorIs(t, err, value.ErrShape)

	wrong, err := value.NewTable([]string{"id", "price"}, []*value.Value{
		value.NewLongVector(1).Value, value.NewDoubleVector(1).Value,
	})
	require.NoError(t, err)
	_, err = h.Publish("trades", wrong)
	assert.ErrorIs(t, err, value.ErrShape)

	_, err = h.Offset("missing")
	assert.ErrorIs(t, err, ErrUnknownTable)

	assert.Error(t, h.CreateTable("trades", []string{"x"}, []model.Type{model.TypeInt}))
}

func TestHub_SubscribersDoNotAlias(t *testing.T) {
	h := NewHub(WithHubCodec(codec.Binary{Compression: codec.CompressionZSTD}))
	require.NoError(t, h.CreateTable("t", []string{"sym"}, []model.Type{model.TypeSymbol}))
	ctx := context.Background()

	req := NewRequest(host, port, "t")
	req.Offset = 0
	f1, err := h.Subscribe(ctx, req)
	require.NoError(t, err)
	req.Action = "other"
	f2, err := h.Subscribe(ctx, req)
	require.NoError(t, err)

	_, err = h.Insert("t", value.NewStringVector("IBM").Value)
	require.Error(t, err)

	sym := value.NewVector(model.TypeSymbol, 0, 1)
	require.True(t, sym.AppendString([]string{"IBM"}))
	_, err = h.Insert("t", sym.Value)
	require.NoError(t, err)
	sym.SetStringAt(0, "MSFT")

	m1, err := f1.Recv(ctx)
	require.NoError(t, err)
	m2, err := f2.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "IBM", m1.Body.Get(0).String())

	m1.Body.Get(0).SetString("X")
	m1.Body.SetAt(0, value.NewSymbol("X"))
	assert.Equal(t, "IBM", m2.Body.Get(0).String())
}

func TestHub_FeedLifecycle(t *testing.T) {
	h := newHub(t)
	ctx := context.Background()

	req := NewRequest(host, port, "trades")
	f, err := h.Subscribe(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Subscribers("trades"))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = f.Recv(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, h.Disconnect("trades"))
	_, err = f.Recv(ctx)
	assert.ErrorIs(t, err, ErrConnectionLost)

	require.NoError(t, f.Close())
	assert.Equal(t, 0, h.Subscribers("trades"))

	f, err = h.Subscribe(ctx, req)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	_, err = f.Recv(ctx)
	assert.True(t, errors.Is(err, io.EOF))

	_, err = h.Subscribe(ctx, req)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHub_Auth(t *testing.T) {
	h := newHub(t)
	h.AddUser("admin", "123456")

	req := NewRequest(host, port, "trades")
	_, err := h.Subscribe(context.Background(), req)
	assert.ErrorIs(t, err, ErrAuth)

	req.User, req.Password = "admin", "123456"
	_, err = h.Subscribe(context.Background(), req)
	assert.NoError(t, err)
}

func TestHub_FilterColumn(t *testing.T) {
	h := newHub(t)
	require.NoError(t, h.SetFilterColumn("trades", "price"))
	assert.Error(t, h.SetFilterColumn("trades", "nope"))

	req := NewRequest(host, port, "trades")
	req.Offset = 0
	req.Filter = value.NewDouble(1)
	f, err := h.Subscribe(context.Background(), req)
	require.NoError(t, err)

	insert(t, h, 1, 2, 3)
	m, err := f.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Offset)
}
