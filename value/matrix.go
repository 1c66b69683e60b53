package value

import (
	"strings"

	"github.com/hupe1980/ddbgo/model"
)

// Matrix narrows a matrix Value. Cells are stored column-major.
type Matrix struct {
	*Value
}

// AsMatrix narrows v, or returns nil if v is not a matrix.
func (v *Value) AsMatrix() *Matrix {
	if v == nil || v.form != model.FormMatrix {
		return nil
	}
	return &Matrix{Value: v}
}

// NewMatrix returns a cols x rows matrix of zero values.
func NewMatrix(typ model.Type, cols, rows int) *Matrix {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	v := newVectorValue(model.FormMatrix, typ, newColumn(typ, cols*rows, cols*rows))
	v.vec.cols, v.vec.rows = cols, rows
	return &Matrix{Value: v}
}

// Columns returns the column count.
func (m *Matrix) Columns() int { return m.vec.cols }

// Rows returns the row count.
func (m *Matrix) Rows() int { return m.vec.rows }

// Reshape changes the dimensions. The element sequence is kept; growing
// fills with nulls. It fails if cols*rows exceeds the capacity.
func (m *Matrix) Reshape(cols, rows int) bool {
	if cols < 0 || rows < 0 || cols*rows > m.vec.col.cap() {
		return false
	}
	old := m.vec.col.len()
	m.vec.col.resize(cols * rows)
	for i := old; i < cols*rows; i++ {
		m.vec.col.setNull(i)
	}
	m.vec.cols, m.vec.rows = cols, rows
	return true
}

// Column returns a view of column c, or nil when out of range.
func (m *Matrix) Column(c int) *Vector {
	if c < 0 || c >= m.vec.cols {
		return nil
	}
	view := &Value{
		form: model.FormVector,
		typ:  m.typ,
		vec: &vectorData{
			col:    m.vec.col,
			off:    c * m.vec.rows,
			n:      m.vec.rows,
			view:   true,
			parent: m.Value,
		},
	}
	return &Vector{Value: view}
}

// SetColumn overwrites column c with the elements of src, which must hold
// exactly Rows() elements of a compatible type.
func (m *Matrix) SetColumn(c int, src *Value) bool {
	if c < 0 || c >= m.vec.cols || src == nil || src.vec == nil {
		return false
	}
	if src.vec.len() != m.vec.rows || !compatible(m.typ, src.typ) {
		return false
	}
	base := c * m.vec.rows
	for r := 0; r < m.vec.rows; r++ {
		s, j, _ := src.vec.locate(r)
		m.vec.col.setFrom(base+r, s, j)
	}
	return true
}

// Cell returns the element at (c, r) as a scalar, or VOID when out of range.
func (m *Matrix) Cell(c, r int) *Value {
	i, ok := m.cellIndex(c, r)
	if !ok {
		return NewVoid()
	}
	return m.vec.col.valueAt(i)
}

// CellString renders the element at (c, r).
func (m *Matrix) CellString(c, r int) string {
	i, ok := m.cellIndex(c, r)
	if !ok {
		return ""
	}
	return m.vec.col.stringAt(i)
}

func (m *Matrix) cellIndex(c, r int) (int, bool) {
	if c < 0 || c >= m.vec.cols || r < 0 || r >= m.vec.rows {
		return 0, false
	}
	return c*m.vec.rows + r, true
}

// StringAt renders cell i of the column-major storage, so cell (c, r) is
// i = c*Rows()+r. It returns "" when out of range.
func (m *Matrix) StringAt(i int) string {
	if i < 0 || i >= m.vec.cols*m.vec.rows {
		return ""
	}
	return m.vec.col.stringAt(i)
}

// RowLabel returns the row label vector, or nil.
func (m *Matrix) RowLabel() *Value { return m.vec.rowLabel }

// ColumnLabel returns the column label vector, or nil.
func (m *Matrix) ColumnLabel() *Value { return m.vec.colLabel }

// SetRowLabel attaches a row label vector of length Rows(). Nil clears it.
func (m *Matrix) SetRowLabel(label *Value) bool {
	if label != nil && (label.vec == nil || label.Size() != m.vec.rows) {
		return false
	}
	m.vec.rowLabel = label
	return true
}

// SetColumnLabel attaches a column label vector of length Columns(). Nil
// clears it.
func (m *Matrix) SetColumnLabel(label *Value) bool {
	if label != nil && (label.vec == nil || label.Size() != m.vec.cols) {
		return false
	}
	m.vec.colLabel = label
	return true
}

// Instance returns a new matrix of the same type and row count with cols
// columns.
func (m *Matrix) Instance(cols int) *Matrix {
	out := NewMatrix(m.typ, cols, m.vec.rows)
	out.vec.col.scale = m.vec.col.scale
	return out
}

func (m *Matrix) render() string {
	var sb strings.Builder
	for r := 0; r < m.vec.rows; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < m.vec.cols; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(m.CellString(c, r))
		}
	}
	return sb.String()
}
