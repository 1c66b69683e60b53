package client

import (
	"context"
	"fmt"

	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
)

// TableWriter buffers rows for a table bound in the session and inserts
// them with tableInsert once batchSize rows are pending. Partitioned tables
// are not supported.
//
// A TableWriter is not safe for concurrent use.
type TableWriter struct {
	conn      *Connection
	table     string
	batchSize int

	buf      *value.Table
	inserted int64
	closed   bool
}

// NewTableWriter reads the schema of table through conn. The table must be
// bound in the session before the writer is created.
func NewTableWriter(ctx context.Context, conn *Connection, table string, batchSize int) (*TableWriter, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size %d", ErrInvalidArgument, batchSize)
	}
	if !validIdent(table) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidArgument, table)
	}

	schema, err := conn.Run(ctx, "schema("+table+")")
	if err != nil {
		return nil, err
	}
	buf, err := bufferFromSchema(schema, batchSize)
	if err != nil {
		return nil, fmt.Errorf("schema of %s: %w", table, err)
	}
	return &TableWriter{conn: conn, table: table, batchSize: batchSize, buf: buf}, nil
}

// bufferFromSchema builds an empty table from the colDefs of a schema
// dictionary.
func bufferFromSchema(schema *value.Value, capacity int) (*value.Table, error) {
	d := schema.AsDictionary()
	if d == nil {
		return nil, fmt.Errorf("%w: schema is a %s", ErrInvalidArgument, schema.Form())
	}
	defs := d.MemberByName("colDefs").AsTable()
	if defs == nil || !defs.Contain("name") || !defs.Contain("typeInt") {
		return nil, fmt.Errorf("%w: schema without colDefs", ErrInvalidArgument)
	}

	names := defs.ColumnByName("name")
	types := defs.ColumnByName("typeInt")
	extra := defs.ColumnByName("extra")
	cols := make([]*value.Value, defs.Rows())
	colNames := make([]string, defs.Rows())
	for i := range cols {
		colNames[i] = names.StringAt(i)
		typ := model.Type(types.IntAt(i))
		if typ.Category() == model.CategoryDenary {
			scale := 0
			if extra != nil && !extra.IsNullAt(i) {
				scale = int(extra.IntAt(i))
			}
			vec, err := value.NewDecimalVector(typ, scale, 0, capacity)
			if err != nil {
				return nil, err
			}
			cols[i] = vec.Value
			continue
		}
		if !typ.Valid() {
			return nil, fmt.Errorf("%w: column %s has type %d", ErrInvalidArgument, colNames[i], typ)
		}
		cols[i] = value.NewVector(typ, 0, capacity).Value
	}
	return value.NewTable(colNames, cols)
}

// Table returns the name of the target table.
func (w *TableWriter) Table() string { return w.table }

// Size returns the number of buffered rows.
func (w *TableWriter) Size() int { return w.buf.Rows() }

// Inserted returns the number of rows the engine acknowledged.
func (w *TableWriter) Inserted() int64 { return w.inserted }

// AppendRow buffers one row of scalar cells, converted to the column types.
// A full buffer is flushed; a failed flush keeps the rows buffered.
func (w *TableWriter) AppendRow(ctx context.Context, row ...*value.Value) error {
	if w.closed {
		return ErrClosed
	}
	if len(row) != w.buf.Columns() {
		return fmt.Errorf("%w: table %s has %d columns, got %d", ErrInvalidArgument, w.table, w.buf.Columns(), len(row))
	}
	if !w.buf.AppendRow(row) {
		return fmt.Errorf("%w: row does not match the schema of %s", ErrInvalidArgument, w.table)
	}
	if w.buf.Rows() >= w.batchSize {
		return w.Flush(ctx)
	}
	return nil
}

// Flush inserts the buffered rows.
func (w *TableWriter) Flush(ctx context.Context) error {
	if w.buf.Rows() == 0 {
		return nil
	}
	n, err := w.conn.Call(ctx, "tableInsert", value.NewString(w.table), w.buf.Value)
	if err != nil {
		return err
	}
	w.inserted += n.Long()
	w.buf = w.buf.Instance(w.batchSize)
	return nil
}

// Close flushes the remaining rows. The writer rejects rows afterwards.
func (w *TableWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.Flush(context.Background())
}
