package ddbgo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/ddbgo/checkpoint"
	"github.com/hupe1980/ddbgo/client"
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/stream"
	"github.com/hupe1980/ddbgo/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, b *Bridge) Handle {
	t.Helper()
	conn := b.ConnectionNew()
	require.NotEqual(t, NilHandle, conn)
	require.True(t, b.ConnectionConnect(conn, "localhost", 8848, "admin", "123456"), b.LastErrorMessage())
	return conn
}

func TestConnection_States(t *testing.T) {
	b := newBridge(t)

	conn := b.ConnectionNew()
	assert.Equal(t, int(client.Disconnected), b.ConnectionState(conn))

	assert.Equal(t, NilHandle, b.ConnectionRun(conn, "1"))
	assert.ErrorIs(t, b.LastError(), ErrNotConnected)

	assert.False(t, b.ConnectionConnect(conn, "localhost", 0, "", ""))
	assert.Equal(t, int(client.Disconnected), b.ConnectionState(conn))

	require.True(t, b.ConnectionConnect(conn, "localhost", 8848, "", ""))
	assert.Equal(t, int(client.Connected), b.ConnectionState(conn))

	require.True(t, b.ConnectionClose(conn))
	assert.Equal(t, int(client.Disconnected), b.ConnectionState(conn))

	assert.False(t, b.ConnectionConnect(conn, "localhost", 8848, "", ""))
	assert.ErrorIs(t, b.LastError(), ErrClosed)
	assert.Equal(t, NilHandle, b.ConnectionRun(conn, "1"))
	assert.ErrorIs(t, b.LastError(), ErrClosed)
}

type lostSession struct{}

func (lostSession) Run(context.Context, string) (*value.Value, error) {
	return nil, client.ErrConnectionLost
}

func (lostSession) Call(context.Context, string, []*value.Value) (*value.Value, error) {
	return nil, client.ErrConnectionLost
}

func (lostSession) Upload(context.Context, map[string]*value.Value) error {
	return client.ErrConnectionLost
}

func (lostSession) Close() error { return nil }

type lostDialer struct{}

func (lostDialer) Dial(context.Context, string, string, string) (client.Session, error) {
	return lostSession{}, nil
}

func TestConnection_TransportFailureDisconnects(t *testing.T) {
	b := newBridge(t, WithDialer(lostDialer{}))
	conn := connect(t, b)

	assert.Equal(t, NilHandle, b.ConnectionCall(conn, "f", NilHandle))
	assert.ErrorIs(t, b.LastError(), ErrConnectionLost)
	assert.Equal(t, int(client.Disconnected), b.ConnectionState(conn))

	assert.False(t, b.ConnectionConnect(conn, "localhost", 8848, "", ""))
	assert.ErrorIs(t, b.LastError(), ErrClosed)
}

func TestConnection_AuthFailure(t *testing.T) {
	b := newBridge(t)
	b.Engine().AddUser("admin", "123456")

	conn := b.ConnectionNew()
	assert.False(t, b.ConnectionConnect(conn, "localhost", 8848, "admin", "wrong"))
	assert.ErrorIs(t, b.LastError(), client.ErrAuth)
}

func TestConnection_RunAndUpload(t *testing.T) {
	m := &BasicMetricsCollector{}
	b := newBridge(t, WithMetricsCollector(m))
	conn := connect(t, b)

	v := b.VectorNew(int(model.TypeInt), 0, 3)
	require.True(t, b.VectorAppendInt(v, []int32{1, 2, 3}))
	require.True(t, b.ConnectionUpload(conn, "x", v))

	// Later mutations do not reach the uploaded copy.
	require.True(t, b.ValueSetIntAt(v, 0, 100))

	res := b.ConnectionRun(conn, "x")
	require.NotEqual(t, NilHandle, res, b.LastErrorMessage())
	assert.Equal(t, "[1,2,3]", b.ValueGetString(res))

	res = b.ConnectionRun(conn, "sum(x)")
	assert.Equal(t, 6.0, b.ValueGetDouble(res))

	args := b.VectorNew(int(model.TypeAny), 0, 1)
	require.True(t, b.VectorAppend(args, v))
	res = b.ConnectionCall(conn, "size", args)
	assert.Equal(t, int32(3), b.ValueGetInt(res))

	assert.False(t, b.ConnectionUpload(conn, "1bad", v))

	stats := m.GetStats()
	assert.Equal(t, int64(3), stats.RunCount)
	assert.Equal(t, int64(2), stats.UploadCount)
	assert.Equal(t, int64(1), stats.UploadErrors)
}

func TestConnection_RemoteFaults(t *testing.T) {
	b := newBridge(t)
	b.Engine().Register("explode", func(context.Context, []*value.Value) (*value.Value, error) {
		panic("remote crash")
	})
	conn := connect(t, b)

	tests := []struct {
		name   string
		script string
	}{
		{"undefined variable", "nosuchvar"},
		{"syntax", "f(("},
		{"panic in session", "explode(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.ClearError()
			require.NotPanics(t, func() {
				assert.Equal(t, NilHandle, b.ConnectionRun(conn, tt.script))
			})
			var re *client.RemoteError
			require.True(t, errors.As(b.LastError(), &re), "got %v", b.LastError())
			assert.Equal(t, tt.script, re.Script)
		})
	}

	assert.Equal(t, int(client.Connected), b.ConnectionState(conn))
}

func newStreamBridge(t *testing.T, opts ...Option) (*Bridge, *stream.Hub) {
	t.Helper()
	b := newBridge(t, opts...)
	hub := b.Hub()
	require.NoError(t, hub.CreateTable("trades", []string{"id", "price"}, []model.Type{model.TypeInt, model.TypeDouble}))
	return b, hub
}

func publish(t *testing.T, hub *stream.Hub, ids ...int32) {
	t.Helper()
	prices := make([]float64, len(ids))
	for i, id := range ids {
		prices[i] = float64(id) * 1.5
	}
	_, err := hub.Insert("trades", value.NewIntVector(ids...).Value, value.NewDoubleVector(prices...).Value)
	require.NoError(t, err)
}

func TestStreaming_FIFO(t *testing.T) {
	b, hub := newStreamBridge(t)

	pc := b.PollingClientNew(8849)
	q := b.PollingClientSubscribe(pc, "localhost", 8848, "trades", b.DefaultActionName(), 0)
	require.NotEqual(t, NilHandle, q, b.LastErrorMessage())

	publish(t, hub, 1, 2, 3)

	for i := int32(1); i <= 3; i++ {
		var body Handle
		require.True(t, b.MessageQueuePoll(q, &body, 2000))
		assert.Equal(t, i, b.ValueGetInt(b.ValueGet(body, 0)))
		b.Release(body)
	}

	var body Handle
	start := time.Now()
	assert.False(t, b.MessageQueuePoll(q, &body, 50))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, NilHandle, body)

	assert.False(t, b.MessageQueuePoll(q, &body, 0))
}

func TestStreaming_MessageHandle(t *testing.T) {
	b, hub := newStreamBridge(t)

	pc := b.PollingClientNew(8849)
	q := b.PollingClientSubscribe(pc, "localhost", 8848, "trades", "", 0)
	publish(t, hub, 7)

	var msg Handle
	require.True(t, b.MessageQueuePollMessage(q, &msg, 2000))
	assert.Equal(t, int64(0), b.MessageOffset(msg))
	assert.Equal(t, "localhost:8848/trades/goStreamingAPI", b.MessageTopic(msg))
	assert.Equal(t, 10.5, b.ValueGetDouble(b.ValueGet(b.MessageBody(msg), 1)))

	assert.Equal(t, int64(-1), b.MessageOffset(q))
	assert.Empty(t, b.MessageTopic(q))
	assert.ErrorIs(t, b.LastError(), ErrTypeMismatch)
}

func TestStreaming_Unsubscribe(t *testing.T) {
	b, hub := newStreamBridge(t)

	pc := b.PollingClientNew(8849)
	q1 := b.PollingClientSubscribe(pc, "localhost", 8848, "trades", "a", 0)
	q2 := b.PollingClientSubscribe(pc, "localhost", 8848, "trades", "b", 0)
	require.NotEqual(t, NilHandle, q1)
	require.NotEqual(t, NilHandle, q2)

	publish(t, hub, 1)
	require.Eventually(t, func() bool { return b.MessageQueueLen(q1) == 1 }, 2*time.Second, 5*time.Millisecond)

	require.True(t, b.PollingClientUnsubscribe(pc, "localhost", 8848, "trades", "a"))
	assert.True(t, b.MessageQueueClosed(q1))

	var body Handle
	assert.True(t, b.MessageQueuePoll(q1, &body, 0))
	assert.False(t, b.MessageQueuePoll(q1, &body, 10))

	publish(t, hub, 2)
	assert.True(t, b.MessageQueuePoll(q2, &body, 2000))
	assert.True(t, b.MessageQueuePoll(q2, &body, 2000))
	assert.Equal(t, int32(2), b.ValueGetInt(b.ValueGet(body, 0)))

	assert.False(t, b.PollingClientUnsubscribe(pc, "localhost", 8848, "trades", "a"))
	assert.ErrorIs(t, b.LastError(), ErrNotSubscribed)
}

func TestStreaming_MaxSubscriptions(t *testing.T) {
	b, _ := newStreamBridge(t, WithMaxSubscriptions(1))

	pc1 := b.PollingClientNew(8849)
	pc2 := b.PollingClientNew(8850)
	require.NotEqual(t, NilHandle, b.PollingClientSubscribe(pc1, "localhost", 8848, "trades", "a", 0))

	assert.Equal(t, NilHandle, b.PollingClientSubscribe(pc2, "localhost", 8848, "trades", "b", 0))
	assert.ErrorIs(t, b.LastError(), ErrTooManySubscriptions)

	require.True(t, b.PollingClientUnsubscribe(pc1, "localhost", 8848, "trades", "a"))
	assert.NotEqual(t, NilHandle, b.PollingClientSubscribe(pc2, "localhost", 8848, "trades", "b", 0))
}

func TestStreaming_CheckpointResume(t *testing.T) {
	store := checkpoint.NewMemory()
	b, hub := newStreamBridge(t, WithCheckpointStore(store))

	pc := b.PollingClientNew(8849)
	q := b.PollingClientSubscribe(pc, "localhost", 8848, "trades", "", 0)
	publish(t, hub, 1, 2)

	var body Handle
	require.True(t, b.MessageQueuePoll(q, &body, 2000))
	require.True(t, b.MessageQueuePoll(q, &body, 2000))
	require.Eventually(t, func() bool {
		off, err := store.Load(context.Background(), "localhost:8848/trades/goStreamingAPI")
		return err == nil && off == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.True(t, b.PollingClientUnsubscribe(pc, "localhost", 8848, "trades", ""))

	publish(t, hub, 3)

	q = b.PollingClientSubscribe(pc, "localhost", 8848, "trades", "", -1)
	require.NotEqual(t, NilHandle, q, b.LastErrorMessage())
	require.True(t, b.MessageQueuePoll(q, &body, 2000))
	assert.Equal(t, int32(3), b.ValueGetInt(b.ValueGet(body, 0)))
}

func TestStreaming_ReleaseClosesClient(t *testing.T) {
	b, hub := newStreamBridge(t)

	pc := b.PollingClientNew(8849)
	q := b.PollingClientSubscribe(pc, "localhost", 8848, "trades", "", 0)
	require.Equal(t, 1, hub.Subscribers("trades"))

	require.True(t, b.Release(pc))
	require.Eventually(t, func() bool { return b.MessageQueueClosed(q) }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return hub.Subscribers("trades") == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestStreaming_ReconnectIntervalShared(t *testing.T) {
	b := newBridge(t, WithReconnectInterval(75*time.Millisecond), WithMaxSubscriptions(3))

	cfg := b.ctl.Config()
	assert.Equal(t, 75*time.Millisecond, cfg.ReconnectInterval)
	assert.Equal(t, int64(3), cfg.MaxSubscriptions)

	ctx := context.Background()
	start := time.Now()
	require.NoError(t, b.ctl.WaitReconnect(ctx))
	require.NoError(t, b.ctl.WaitReconnect(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}
