package stream

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/hupe1980/ddbgo/codec"
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
)

// Hub is an in-process publisher of stream tables implementing Dialer.
//
// Published batches are appended to a per-table log in encoded form and
// decoded per subscriber, so subscribers never alias publisher storage.
// Offsets count rows from the creation of the table.
type Hub struct {
	codec codec.Codec

	mu     sync.RWMutex
	tables map[string]*streamTable
	users  map[string]string
	closed bool
}

type batch struct {
	start int64
	rows  int
	data  []byte
}

type streamTable struct {
	name      string
	names     []string
	types     []model.Type
	filterCol int

	mu      sync.Mutex
	batches []batch
	next    int64
	notify  chan struct{}
	feeds   map[*hubFeed]struct{}
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubCodec sets the codec of the message log. Nil keeps codec.Default.
func WithHubCodec(c codec.Codec) HubOption {
	return func(h *Hub) {
		if c != nil {
			h.codec = c
		}
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		codec:  codec.Default,
		tables: make(map[string]*streamTable),
		users:  make(map[string]string),
	}
	for _, fn := range opts {
		fn(h)
	}
	return h
}

// AddUser adds an account. Once an account exists every subscribe is checked.
func (h *Hub) AddUser(user, password string) {
	h.mu.Lock()
	h.users[user] = password
	h.mu.Unlock()
}

// CreateTable creates a stream table with the given schema. The first
// column is the filter column.
func (h *Hub) CreateTable(name string, names []string, types []model.Type) error {
	if _, err := value.NewTableOfTypes(names, types, 0, 0); err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: table %s has no columns", value.ErrShape, name)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if _, ok := h.tables[name]; ok {
		return fmt.Errorf("stream: table %s already exists", name)
	}
	h.tables[name] = &streamTable{
		name:   name,
		names:  append([]string(nil), names...),
		types:  append([]model.Type(nil), types...),
		notify: make(chan struct{}),
		feeds:  make(map[*hubFeed]struct{}),
	}
	return nil
}

func (h *Hub) table(name string) (*streamTable, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil, ErrClosed
	}
	t, ok := h.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// SetFilterColumn selects the column Request.Filter is matched against.
func (h *Hub) SetFilterColumn(table, column string) error {
	t, err := h.table(table)
	if err != nil {
		return err
	}
	for i, n := range t.names {
		if n == column {
			t.mu.Lock()
			t.filterCol = i
			t.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("stream: table %s has no column %s", table, column)
}

// Publish appends rows to the table and returns the offset of the first
// appended row. Column names and types must match the schema.
func (h *Hub) Publish(table string, rows *value.Table) (int64, error) {
	t, err := h.table(table)
	if err != nil {
		return 0, err
	}
	if rows == nil || rows.Columns() != len(t.names) {
		return 0, fmt.Errorf("%w: schema of %s has %d columns", value.ErrShape, table, len(t.names))
	}
	for i := range t.names {
		if rows.ColumnType(i) != t.types[i] {
			return 0, fmt.Errorf("%w: column %d of %s is %s, got %s", value.ErrShape, i, table, t.types[i], rows.ColumnType(i))
		}
	}

	n := rows.Rows()
	t.mu.Lock()
	defer t.mu.Unlock()
	start := t.next
	if n == 0 {
		return start, nil
	}
	data, err := h.codec.Marshal(rows)
	if err != nil {
		return 0, err
	}
	t.batches = append(t.batches, batch{start: start, rows: n, data: data})
	t.next += int64(n)
	close(t.notify)
	t.notify = make(chan struct{})
	return start, nil
}

// Insert publishes one batch given as column vectors in schema order.
func (h *Hub) Insert(table string, columns ...*value.Value) (int64, error) {
	t, err := h.table(table)
	if err != nil {
		return 0, err
	}
	rows, err := value.NewTable(t.names, columns)
	if err != nil {
		return 0, err
	}
	return h.Publish(table, rows)
}

// Offset returns the offset the next published row will get.
func (h *Hub) Offset(table string) (int64, error) {
	t, err := h.table(table)
	if err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next, nil
}

// Subscribers returns the number of open feeds of table.
func (h *Hub) Subscribers(table string) int {
	t, err := h.table(table)
	if err != nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.feeds)
}

// Disconnect drops every feed of table with ErrConnectionLost, as a
// network failure would.
func (h *Hub) Disconnect(table string) error {
	t, err := h.table(table)
	if err != nil {
		return err
	}
	t.mu.Lock()
	feeds := make([]*hubFeed, 0, len(t.feeds))
	for f := range t.feeds {
		feeds = append(feeds, f)
	}
	t.mu.Unlock()
	for _, f := range feeds {
		f.drop(ErrConnectionLost)
	}
	return nil
}

// Close ends every feed with io.EOF and rejects further use.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	tables := h.tables
	h.mu.Unlock()

	for _, t := range tables {
		t.mu.Lock()
		feeds := make([]*hubFeed, 0, len(t.feeds))
		for f := range t.feeds {
			feeds = append(feeds, f)
		}
		t.mu.Unlock()
		for _, f := range feeds {
			f.drop(io.EOF)
		}
	}
	return nil
}

// Subscribe opens a feed on req.Table.
func (h *Hub) Subscribe(ctx context.Context, req Request) (Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	want, known := h.users[req.User]
	restricted := len(h.users) > 0
	h.mu.RUnlock()
	if restricted && (!known || want != req.Password) {
		return nil, fmt.Errorf("%w: user %q", ErrAuth, req.User)
	}

	t, err := h.table(req.Table)
	if err != nil {
		return nil, err
	}

	f := &hubFeed{
		codec: h.codec,
		table: t,
		topic: req.Topic(),
		asTbl: req.MsgAsTable,
		done:  make(chan struct{}),
	}
	if req.Filter != nil {
		f.filter = value.NewSet(req.Filter.Type(), req.Filter.Size())
		f.filter.Append(req.Filter)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case req.Offset < 0:
		f.pos = t.next
	case req.Offset > t.next:
		return nil, fmt.Errorf("%w: %d > %d", ErrOffsetOutOfRange, req.Offset, t.next)
	default:
		f.pos = req.Offset
	}
	f.filterCol = t.filterCol
	t.feeds[f] = struct{}{}
	return f, nil
}

type hubFeed struct {
	codec     codec.Codec
	table     *streamTable
	topic     string
	asTbl     bool
	filter    *value.Set
	filterCol int

	pos     int64
	pending []Message

	dropOnce sync.Once
	done     chan struct{}
	err      error
}

func (f *hubFeed) drop(err error) {
	f.dropOnce.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Recv returns the next message, waiting for the publisher if needed.
func (f *hubFeed) Recv(ctx context.Context) (Message, error) {
	for len(f.pending) == 0 {
		select {
		case <-f.done:
			return Message{}, f.err
		default:
		}

		b, notify, ok := f.nextBatch()
		if !ok {
			select {
			case <-notify:
				continue
			case <-f.done:
				return Message{}, f.err
			case <-ctx.Done():
				return Message{}, ctx.Err()
			}
		}
		if err := f.expand(b); err != nil {
			return Message{}, err
		}
	}

	m := f.pending[0]
	f.pending[0] = Message{}
	f.pending = f.pending[1:]
	return m, nil
}

// nextBatch finds the batch holding f.pos, or returns the channel that is
// closed on the next publish.
func (f *hubFeed) nextBatch() (batch, <-chan struct{}, bool) {
	t := f.table
	t.mu.Lock()
	defer t.mu.Unlock()
	i := sort.Search(len(t.batches), func(i int) bool {
		b := t.batches[i]
		return b.start+int64(b.rows) > f.pos
	})
	if i == len(t.batches) {
		return batch{}, t.notify, false
	}
	return t.batches[i], nil, true
}

func (f *hubFeed) expand(b batch) error {
	var decoded *value.Value
	if err := f.codec.Unmarshal(b.data, &decoded); err != nil {
		return fmt.Errorf("stream: decode batch at %d: %w", b.start, err)
	}
	rows := decoded.AsTable()
	if rows == nil {
		return fmt.Errorf("stream: batch at %d is %s, not a table", b.start, decoded.Form())
	}

	first := int(f.pos - b.start)
	f.pos = b.start + int64(b.rows)

	var keep []int
	filterCol := rows.Column(f.filterCol)
	for i := first; i < b.rows; i++ {
		if f.filter == nil || f.filter.ContainKey(filterCol.Get(i)) {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil
	}

	if f.asTbl {
		body, err := selectRows(rows, keep)
		if err != nil {
			return err
		}
		f.pending = append(f.pending, Message{
			Offset: b.start + int64(keep[len(keep)-1]),
			Topic:  f.topic,
			Body:   body.Value,
		})
		return nil
	}

	for _, i := range keep {
		cells := make([]*value.Value, rows.Columns())
		for c := range cells {
			cells[c] = rows.Column(c).Get(i)
		}
		f.pending = append(f.pending, Message{
			Offset: b.start + int64(i),
			Topic:  f.topic,
			Body:   value.NewAnyVector(cells...).Value,
		})
	}
	return nil
}

func selectRows(t *value.Table, rows []int) (*value.Table, error) {
	names := make([]string, t.Columns())
	cols := make([]*value.Value, t.Columns())
	for c := range cols {
		names[c] = t.ColumnName(c)
		src := t.Column(c)
		dst := value.NewVector(t.ColumnType(c), 0, len(rows))
		for _, r := range rows {
			dst.Append(src.Get(r))
		}
		cols[c] = dst.Value
	}
	return value.NewTable(names, cols)
}

// Close detaches the feed from its table.
func (f *hubFeed) Close() error {
	f.drop(io.EOF)
	t := f.table
	t.mu.Lock()
	delete(t.feeds, f)
	t.mu.Unlock()
	return nil
}

var _ Dialer = (*Hub)(nil)
