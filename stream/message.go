package stream

import (
	"fmt"
	"time"

	"github.com/hupe1980/ddbgo/value"
)

const (
	// DefaultActionName is the action used when a subscriber names none.
	DefaultActionName = "goStreamingAPI"

	// DefaultReconnectTimeout is the pause between reconnect attempts.
	DefaultReconnectTimeout = 100 * time.Millisecond

	// OffsetEnd subscribes from the current end of the stream table.
	OffsetEnd int64 = -1
)

// Message is one delta delivered by a subscription. Offset is the position
// of the (last) row in the stream table. Body is an ANY vector holding one
// row, or a table of rows when the request asked for MsgAsTable.
type Message struct {
	Offset int64
	Topic  string
	Body   *value.Value
}

// Request describes a subscription.
type Request struct {
	Host   string
	Port   int
	Table  string
	Action string

	// Offset is the first row to deliver; negative means from the end.
	Offset int64

	// MsgAsTable delivers each published batch as one table message.
	MsgAsTable bool

	// Reconnect re-subscribes after the feed is lost, resuming after the
	// last delivered offset, pausing ReconnectTimeout between attempts.
	Reconnect        bool
	ReconnectTimeout time.Duration

	// Filter restricts delivery to rows whose filter column value is in it.
	Filter *value.Value

	User     string
	Password string
}

// NewRequest returns a request with default action, offset and timeouts.
func NewRequest(host string, port int, table string) Request {
	return Request{
		Host:             host,
		Port:             port,
		Table:            table,
		Action:           DefaultActionName,
		Offset:           OffsetEnd,
		ReconnectTimeout: DefaultReconnectTimeout,
	}
}

// Topic returns host:port/table/action.
func (r Request) Topic() string {
	return Topic(r.Host, r.Port, r.Table, r.Action)
}

// Topic builds a subscription key.
func Topic(host string, port int, table, action string) string {
	if action == "" {
		action = DefaultActionName
	}
	return fmt.Sprintf("%s:%d/%s/%s", host, port, table, action)
}

func (r *Request) normalize() error {
	if r.Host == "" || r.Port <= 0 || r.Port > 65535 {
		return fmt.Errorf("%w: address %s:%d", ErrInvalidRequest, r.Host, r.Port)
	}
	if r.Table == "" {
		return fmt.Errorf("%w: empty table name", ErrInvalidRequest)
	}
	if r.Action == "" {
		r.Action = DefaultActionName
	}
	if r.Offset < 0 {
		r.Offset = OffsetEnd
	}
	if r.ReconnectTimeout <= 0 {
		r.ReconnectTimeout = DefaultReconnectTimeout
	}
	if r.Filter != nil && !r.Filter.IsVector() && !r.Filter.IsScalar() {
		return fmt.Errorf("%w: filter must be a scalar or vector, got %s", ErrInvalidRequest, r.Filter.Form())
	}
	return nil
}
