package ddbgo

import (
	"github.com/hupe1980/ddbgo/client"
	"github.com/hupe1980/ddbgo/value"
)

func withTableWriter[T any](b *Bridge, op string, h Handle, fn func(w *client.TableWriter) (T, error)) T {
	return guard(b, op, func() (T, error) {
		var zero T
		if err := b.usable(); err != nil {
			return zero, err
		}
		w, err := lookup[*client.TableWriter](b, h, "TableWriter")
		if err != nil {
			return zero, err
		}
		return fn(w)
	})
}

// TableWriterNew creates a writer appending to the table bound to table in
// the session of conn. Rows are inserted batchSize at a time; the rest is
// flushed when the writer is released or the Bridge closes.
func (b *Bridge) TableWriterNew(conn Handle, table string, batchSize int) Handle {
	return withConnection(b, "TableWriterNew", conn, func(c *client.Connection) (Handle, error) {
		w, err := client.NewTableWriter(b.ctx, c, table, batchSize)
		if err != nil {
			return NilHandle, err
		}
		return b.putCloser(w)
	})
}

// TableWriterAppendRow buffers the elements of the vector behind row as one
// table row. A full batch is inserted before it returns.
func (b *Bridge) TableWriterAppendRow(h Handle, row Handle) bool {
	return withTableWriter(b, "TableWriterAppendRow", h, func(w *client.TableWriter) (bool, error) {
		v, err := narrow(b, row, "VECTOR", (*value.Value).AsVector)
		if err != nil {
			return false, err
		}
		cells := make([]*value.Value, v.Len())
		for i := range cells {
			cells[i] = v.Get(i)
		}
		err = w.AppendRow(b.ctx, cells...)
		return err == nil, err
	})
}

// TableWriterFlush inserts the buffered rows.
func (b *Bridge) TableWriterFlush(h Handle) bool {
	return withTableWriter(b, "TableWriterFlush", h, func(w *client.TableWriter) (bool, error) {
		err := w.Flush(b.ctx)
		return err == nil, err
	})
}

// TableWriterSize returns the number of buffered rows, or -1 for an invalid
// handle.
func (b *Bridge) TableWriterSize(h Handle) int {
	if w, err := lookup[*client.TableWriter](b, h, "TableWriter"); err == nil {
		return w.Size()
	}
	return -1
}

// TableWriterInserted returns the number of rows inserted so far.
func (b *Bridge) TableWriterInserted(h Handle) int64 {
	return withTableWriter(b, "TableWriterInserted", h, func(w *client.TableWriter) (int64, error) {
		return w.Inserted(), nil
	})
}
