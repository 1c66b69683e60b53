package checkpoint

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topic = "localhost:8848/trades/goStreamingAPI"

func TestStores(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemory(),
		"file":   NewFile(t.TempDir()),
		"cached": NewCached(NewMemory()),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Load(ctx, topic)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, topic, 41))
			require.NoError(t, s.Save(ctx, topic, 42))

			off, err := s.Load(ctx, topic)
			require.NoError(t, err)
			assert.Equal(t, int64(42), off)

			_, err = s.Load(ctx, "other:1/t/a")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFile_Topics(t *testing.T) {
	ctx := context.Background()
	f := NewFile(t.TempDir())
	require.NoError(t, f.Save(ctx, topic, 1))
	require.NoError(t, f.Save(ctx, "h:1/b/a", 2))

	topics, err := f.Topics()
	require.NoError(t, err)
	assert.Equal(t, []string{"h:1/b/a", topic}, topics)

	empty, err := NewFile(t.TempDir() + "/missing").Topics()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRecord(t *testing.T) {
	data, err := EncodeRecord(topic, 7)
	require.NoError(t, err)

	r, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, topic, r.Topic)
	assert.Equal(t, int64(7), r.Offset)
	assert.WithinDuration(t, time.Now(), r.Updated, time.Minute)

	_, err = DecodeRecord([]byte("{"))
	assert.Error(t, err)

	name := ObjectName(topic)
	assert.NotContains(t, name, "/")
	back, ok := TopicFromObject(name)
	require.True(t, ok)
	assert.Equal(t, topic, back)

	_, ok = TopicFromObject("README")
	assert.False(t, ok)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory()
	assert.ErrorIs(t, m.Save(ctx, topic, 1), context.Canceled)
	_, err := m.Load(ctx, topic)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingStore struct {
	Store
	loads atomic.Int32
	saves atomic.Int32
	gate  chan struct{}
}

func (c *countingStore) Load(ctx context.Context, topic string) (int64, error) {
	c.loads.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	return c.Store.Load(ctx, topic)
}

func (c *countingStore) Save(ctx context.Context, topic string, offset int64) error {
	c.saves.Add(1)
	return c.Store.Save(ctx, topic, offset)
}

func TestCached_SharedLoad(t *testing.T) {
	ctx := context.Background()
	inner := NewMemory()
	require.NoError(t, inner.Save(ctx, topic, 9))

	counting := &countingStore{Store: inner, gate: make(chan struct{})}
	c := NewCached(counting)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			off, err := c.Load(ctx, topic)
			assert.NoError(t, err)
			assert.Equal(t, int64(9), off)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(counting.gate)
	wg.Wait()

	assert.LessOrEqual(t, counting.loads.Load(), int32(8))
	before := counting.loads.Load()
	_, err := c.Load(ctx, topic)
	require.NoError(t, err)
	assert.Equal(t, before, counting.loads.Load())
}

func TestCached_SaveWritesThrough(t *testing.T) {
	ctx := context.Background()
	counting := &countingStore{Store: NewMemory()}
	c := NewCached(counting)

	require.NoError(t, c.Save(ctx, topic, 3))
	require.NoError(t, c.Save(ctx, topic, 3))
	assert.Equal(t, int32(1), counting.saves.Load())

	c.Invalidate(topic)
	off, err := c.Load(ctx, topic)
	require.NoError(t, err)
	assert.Equal(t, int64(3), off)
	assert.Equal(t, int32(1), counting.loads.Load())
}
