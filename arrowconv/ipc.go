package arrowconv

import (
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hupe1980/ddbgo/value"
)

// ErrEmptyStream is returned by ReadIPC for a stream without batches.
var ErrEmptyStream = errors.New("arrowconv: stream has no record batches")

// WriteIPC writes t to w as an Arrow IPC stream of one record batch.
func WriteIPC(w io.Writer, t *value.Table) error {
	rec, err := ToRecord(t, nil)
	if err != nil {
		return err
	}
	defer rec.Release()

	wr := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(memory.DefaultAllocator))
	if err := wr.Write(rec); err != nil {
		_ = wr.Close()
		return fmt.Errorf("arrowconv: write batch: %w", err)
	}
	return wr.Close()
}

// ReadIPC reads an Arrow IPC stream. All batches are concatenated into one
// table.
func ReadIPC(r io.Reader) (*value.Table, error) {
	rd, err := ipc.NewReader(r, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, fmt.Errorf("arrowconv: open stream: %w", err)
	}
	defer rd.Release()

	var out *value.Table
	for rd.Next() {
		t, err := FromRecord(rd.Record())
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = t
			continue
		}
		if !out.AppendRows(t) {
			return nil, fmt.Errorf("%w: batch schema changed", ErrUnsupported)
		}
	}
	if err := rd.Err(); err != nil {
		return nil, fmt.Errorf("arrowconv: read batch: %w", err)
	}
	if out == nil {
		return nil, ErrEmptyStream
	}
	return out, nil
}
