package value

import (
	"errors"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/ddbgo/model"
)

var (
	// ErrShape is returned when table columns disagree in length or count.
	ErrShape = errors.New("value: inconsistent table shape")
	// ErrDuplicateColumn is returned when a column name is reused.
	ErrDuplicateColumn = errors.New("value: duplicate column name")
)

// Table narrows a table Value: ordered, uniquely named columns sharing a
// row count.
type Table struct {
	*Value
}

type tableData struct {
	name  string
	names []string
	cols  []*Value
	index map[string]int
}

func (t *tableData) rows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].vec.len()
}

func (t *tableData) reindex() {
	t.index = make(map[string]int, len(t.names))
	for i, n := range t.names {
		t.index[n] = i
	}
}

// AsTable narrows v, or returns nil if v is not a table.
func (v *Value) AsTable() *Table {
	if v == nil || v.form != model.FormTable {
		return nil
	}
	return &Table{Value: v}
}

func newTableValue(names []string, cols []*Value) *Table {
	d := &tableData{names: names, cols: cols}
	d.reindex()
	return &Table{Value: &Value{form: model.FormTable, typ: model.TypeAny, tbl: d}}
}

// NewTable builds a table from copies of the given vectors.
func NewTable(names []string, cols []*Value) (*Table, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrShape, len(names), len(cols))
	}
	seen := make(map[string]struct{}, len(names))
	owned := make([]*Value, len(cols))
	for i, c := range cols {
		if _, dup := seen[names[i]]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, names[i])
		}
		seen[names[i]] = struct{}{}
		if c == nil || c.vec == nil || c.form == model.FormMatrix {
			return nil, fmt.Errorf("%w: column %q is not a vector", ErrShape, names[i])
		}
		if i > 0 && c.Size() != cols[0].Size() {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrShape, names[i], c.Size(), cols[0].Size())
		}
		owned[i] = c.Clone()
		owned[i].form = model.FormVector
	}
	return newTableValue(append([]string(nil), names...), owned), nil
}

// NewTableOfTypes builds a table with size zero-valued rows and room for
// capacity rows.
func NewTableOfTypes(names []string, types []model.Type, size, capacity int) (*Table, error) {
	if len(names) != len(types) {
		return nil, fmt.Errorf("%w: %d names for %d types", ErrShape, len(names), len(types))
	}
	cols := make([]*Value, len(types))
	for i, typ := range types {
		cols[i] = NewVector(typ, size, capacity).Value
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
		seen[n] = struct{}{}
	}
	return newTableValue(append([]string(nil), names...), cols), nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.tbl.name }

// SetName sets the table name.
func (t *Table) SetName(name string) { t.tbl.name = name }

// Columns returns the column count.
func (t *Table) Columns() int { return len(t.tbl.cols) }

// Rows returns the row count.
func (t *Table) Rows() int { return t.tbl.rows() }

// Sizeable reports whether the table can grow.
func (t *Table) Sizeable() bool { return true }

// ColumnName returns the name of column i, or "" when out of range.
func (t *Table) ColumnName(i int) string {
	if i < 0 || i >= len(t.tbl.names) {
		return ""
	}
	return t.tbl.names[i]
}

// SetColumnName renames column i. Names must stay unique.
func (t *Table) SetColumnName(i int, name string) bool {
	if i < 0 || i >= len(t.tbl.names) {
		return false
	}
	if j, ok := t.tbl.index[name]; ok {
		return j == i
	}
	delete(t.tbl.index, t.tbl.names[i])
	t.tbl.names[i] = name
	t.tbl.index[name] = i
	return true
}

// ColumnType returns the element type of column i, or VOID.
func (t *Table) ColumnType(i int) model.Type {
	if i < 0 || i >= len(t.tbl.cols) {
		return model.TypeVoid
	}
	return t.tbl.cols[i].typ
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	if i, ok := t.tbl.index[name]; ok {
		return i
	}
	return -1
}

// Contain reports whether a column is named name.
func (t *Table) Contain(name string) bool {
	_, ok := t.tbl.index[name]
	return ok
}

// Column returns a view of column i, or nil when out of range. The view
// tracks the column's length, so rows appended to the table later are
// visible through it.
func (t *Table) Column(i int) *Vector {
	if i < 0 || i >= len(t.tbl.cols) {
		return nil
	}
	col := t.tbl.cols[i]
	return &Vector{Value: &Value{
		form: model.FormVector,
		typ:  col.typ,
		vec: &vectorData{
			col:    col.vec.col,
			off:    col.vec.off,
			view:   true,
			live:   true,
			parent: t.Value,
			name:   t.tbl.names[i],
		},
	}}
}

// ColumnByName returns a view of the named column, or nil.
func (t *Table) ColumnByName(name string) *Vector {
	return t.Column(t.ColumnIndex(name))
}

// Member returns a view of the named column, or VOID when absent.
func (t *Table) Member(key *Value) *Value {
	if key == nil {
		return NewVoid()
	}
	col := t.ColumnByName(key.StringAt(0))
	if col == nil {
		return NewVoid()
	}
	return col.Value
}

// Drop removes the columns at the given positions in one step. Positions
// refer to the table before the call; any position out of range leaves the
// table unchanged.
func (t *Table) Drop(indexes []int) bool {
	drop := roaring.New()
	for _, i := range indexes {
		if i < 0 || i >= len(t.tbl.cols) {
			return false
		}
		drop.Add(uint32(i))
	}
	names := make([]string, 0, len(t.tbl.names))
	cols := make([]*Value, 0, len(t.tbl.cols))
	for i := range t.tbl.cols {
		if drop.Contains(uint32(i)) {
			continue
		}
		names = append(names, t.tbl.names[i])
		cols = append(cols, t.tbl.cols[i])
	}
	t.tbl.names, t.tbl.cols = names, cols
	t.tbl.reindex()
	return true
}

// Window returns a copy of the columns [colStart, colStart+colLen) and rows
// [rowStart, rowStart+rowLen). It returns nil when out of range.
func (t *Table) Window(colStart, colLen, rowStart, rowLen int) *Table {
	if colStart < 0 || colLen < 0 || colStart+colLen > t.Columns() {
		return nil
	}
	if rowStart < 0 || rowLen < 0 || rowStart+rowLen > t.Rows() {
		return nil
	}
	names := make([]string, colLen)
	cols := make([]*Value, colLen)
	for k := 0; k < colLen; k++ {
		src := t.tbl.cols[colStart+k]
		names[k] = t.tbl.names[colStart+k]
		cols[k] = newVectorValue(model.FormVector, src.typ, src.vec.col.slice(src.vec.off+rowStart, rowLen))
	}
	out := newTableValue(names, cols)
	out.tbl.name = t.tbl.name
	return out
}

// Instance returns an empty table with the same schema and room for
// capacity rows.
func (t *Table) Instance(capacity int) *Table {
	cols := make([]*Value, len(t.tbl.cols))
	for i, c := range t.tbl.cols {
		cols[i] = newVectorValue(model.FormVector, c.typ, c.vec.col.like(0, capacity))
	}
	out := newTableValue(append([]string(nil), t.tbl.names...), cols)
	out.tbl.name = t.tbl.name
	return out
}

// Row returns row i as a dictionary from column name to cell, or VOID when
// out of range.
func (t *Table) Row(i int) *Value {
	if i < 0 || i >= t.Rows() {
		return NewVoid()
	}
	d := NewDictionary(model.TypeString, model.TypeAny)
	for k, c := range t.tbl.cols {
		d.Set(NewString(t.tbl.names[k]), c.Get(i))
	}
	return d.Value
}

// StringAt renders row i as comma-separated cells.
func (t *Table) StringAt(i int) string {
	if i < 0 || i >= t.Rows() {
		return ""
	}
	cells := make([]string, len(t.tbl.cols))
	for k, c := range t.tbl.cols {
		cells[k] = c.StringAt(i)
	}
	return strings.Join(cells, ",")
}

// Keys returns the column names as a STRING vector.
func (t *Table) Keys() *Value {
	return NewStringVector(t.tbl.names...).Value
}

// Values returns copies of the columns as an ANY vector.
func (t *Table) Values() *Value {
	out := NewVector(model.TypeAny, 0, len(t.tbl.cols))
	for _, c := range t.tbl.cols {
		out.Append(c)
	}
	return out.Value
}

// AppendRows appends the rows of other, whose columns must match in count
// and type. On failure the table is left as it was.
func (t *Table) AppendRows(other *Table) bool {
	if other == nil || other.Columns() != t.Columns() {
		return false
	}
	for i, c := range t.tbl.cols {
		if !c.AsVector().growable() || !compatible(c.typ, other.tbl.cols[i].typ) {
			return false
		}
	}

	n := other.Rows()
	lens := make([]int, len(t.tbl.cols))
	for i, c := range t.tbl.cols {
		lens[i] = c.vec.col.len()
		c.vec.col.reserve(lens[i] + n)
	}
	for i, c := range t.tbl.cols {
		src := other.tbl.cols[i].vec
		for r := 0; r < n; r++ {
			sc, j, ok := src.locate(r)
			if !ok {
				t.truncate(lens)
				return false
			}
			c.vec.col.appendFrom(sc, j)
		}
	}
	return true
}

// AppendRow appends one row of scalar cells, converting each to its column
// type. ANY columns take any value and array columns take a vector as the
// row's cell. On failure the table is left as it was.
func (t *Table) AppendRow(cells []*Value) bool {
	if len(cells) != t.Columns() {
		return false
	}
	for i, c := range t.tbl.cols {
		e := cells[i]
		if e == nil || !c.AsVector().growable() {
			return false
		}
		switch {
		case c.typ == model.TypeAny, c.typ.IsArray():
		case e.vec == nil || e.form != model.FormScalar || !compatible(c.typ, e.typ):
			return false
		}
	}
	for i, c := range t.tbl.cols {
		n := c.vec.col.len()
		c.vec.col.resize(n + 1)
		c.SetAt(n, cells[i])
	}
	return true
}

func (t *Table) truncate(lens []int) {
	for i, c := range t.tbl.cols {
		c.vec.col.resize(lens[i])
	}
}

func (t *Table) clone() *Table {
	cols := make([]*Value, len(t.tbl.cols))
	for i, c := range t.tbl.cols {
		cols[i] = c.Clone()
	}
	out := newTableValue(append([]string(nil), t.tbl.names...), cols)
	out.tbl.name = t.tbl.name
	return out
}

func (t *Table) render() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.tbl.names, ","))
	for i := 0; i < t.Rows(); i++ {
		sb.WriteByte('\n')
		sb.WriteString(t.StringAt(i))
	}
	return sb.String()
}
