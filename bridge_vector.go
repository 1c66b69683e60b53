package ddbgo

import (
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
)

func narrow[F any](b *Bridge, h Handle, kind string, as func(*value.Value) *F) (*F, error) {
	v, err := lookup[*value.Value](b, h, kind)
	if err != nil {
		return nil, err
	}
	f := as(v)
	if f == nil {
		return nil, &HandleKindError{Want: kind, Got: v.Form().String()}
	}
	return f, nil
}

func withVector[T any](b *Bridge, op string, h Handle, fn func(v *value.Vector) T) T {
	return guard(b, op, func() (T, error) {
		v, err := narrow(b, h, "VECTOR", (*value.Value).AsVector)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(v), nil
	})
}

func (b *Bridge) deriveVector(op string, h Handle, fn func(v *value.Vector) *value.Value) Handle {
	return guard(b, op, func() (Handle, error) {
		v, err := narrow(b, h, "VECTOR", (*value.Value).AsVector)
		if err != nil {
			return NilHandle, err
		}
		return b.putValue(fn(v))
	})
}

// VectorNew creates a vector of size zero-valued elements with room for
// capacity elements.
func (b *Bridge) VectorNew(typ, size, capacity int) Handle {
	return b.newValue("VectorNew", func() *value.Value {
		return value.NewVector(model.Type(typ), size, capacity).Value
	})
}

func (b *Bridge) VectorName(h Handle) string {
	return withVector(b, "VectorName", h, (*value.Vector).Name)
}

func (b *Bridge) VectorSetName(h Handle, name string) bool {
	return withVector(b, "VectorSetName", h, func(v *value.Vector) bool { v.SetName(name); return true })
}

func (b *Bridge) VectorLen(h Handle) int {
	return withVector(b, "VectorLen", h, (*value.Vector).Len)
}

func (b *Bridge) VectorCap(h Handle) int {
	return withVector(b, "VectorCap", h, (*value.Vector).Cap)
}

// VectorReserve grows the capacity to at least n and returns it.
func (b *Bridge) VectorReserve(h Handle, n int) int {
	return withVector(b, "VectorReserve", h, func(v *value.Vector) int { return v.Reserve(n) })
}

func (b *Bridge) VectorClear(h Handle) bool {
	return withVector(b, "VectorClear", h, (*value.Vector).Clear)
}

func (b *Bridge) VectorInitialize(h Handle) bool {
	return withVector(b, "VectorInitialize", h, func(v *value.Vector) bool { v.Initialize(); return true })
}

func (b *Bridge) VectorUnitLength(h Handle) int {
	return withVector(b, "VectorUnitLength", h, (*value.Vector).UnitLength)
}

func (b *Bridge) VectorIsView(h Handle) bool {
	return withVector(b, "VectorIsView", h, (*value.Vector).IsView)
}

// VectorAppend appends the scalar or vector behind elem.
func (b *Bridge) VectorAppend(h, elem Handle) bool {
	return guard(b, "VectorAppend", func() (bool, error) {
		v, err := narrow(b, h, "VECTOR", (*value.Value).AsVector)
		if err != nil {
			return false, err
		}
		e, err := lookup[*value.Value](b, elem, "VALUE")
		if err != nil {
			return false, err
		}
		return v.Append(e), nil
	})
}

func (b *Bridge) VectorAppendBool(h Handle, buf []bool) bool {
	return withVector(b, "VectorAppendBool", h, func(v *value.Vector) bool { return v.AppendBool(buf) })
}

func (b *Bridge) VectorAppendChar(h Handle, buf []int8) bool {
	return withVector(b, "VectorAppendChar", h, func(v *value.Vector) bool { return v.AppendChar(buf) })
}

func (b *Bridge) VectorAppendShort(h Handle, buf []int16) bool {
	return withVector(b, "VectorAppendShort", h, func(v *value.Vector) bool { return v.AppendShort(buf) })
}

func (b *Bridge) VectorAppendInt(h Handle, buf []int32) bool {
	return withVector(b, "VectorAppendInt", h, func(v *value.Vector) bool { return v.AppendInt(buf) })
}

func (b *Bridge) VectorAppendLong(h Handle, buf []int64) bool {
	return withVector(b, "VectorAppendLong", h, func(v *value.Vector) bool { return v.AppendLong(buf) })
}

func (b *Bridge) VectorAppendFloat(h Handle, buf []float32) bool {
	return withVector(b, "VectorAppendFloat", h, func(v *value.Vector) bool { return v.AppendFloat(buf) })
}

func (b *Bridge) VectorAppendDouble(h Handle, buf []float64) bool {
	return withVector(b, "VectorAppendDouble", h, func(v *value.Vector) bool { return v.AppendDouble(buf) })
}

func (b *Bridge) VectorAppendString(h Handle, buf []string) bool {
	return withVector(b, "VectorAppendString", h, func(v *value.Vector) bool { return v.AppendString(buf) })
}

func (b *Bridge) VectorAppendBinary(h Handle, buf [][16]byte) bool {
	return withVector(b, "VectorAppendBinary", h, func(v *value.Vector) bool { return v.AppendBinary(buf) })
}

// VectorGetInts copies len(out) elements starting at start.
func (b *Bridge) VectorGetInts(h Handle, start int, out []int32) bool {
	return withVector(b, "VectorGetInts", h, func(v *value.Vector) bool { return v.Ints(start, out) })
}

func (b *Bridge) VectorGetLongs(h Handle, start int, out []int64) bool {
	return withVector(b, "VectorGetLongs", h, func(v *value.Vector) bool { return v.Longs(start, out) })
}

func (b *Bridge) VectorGetDoubles(h Handle, start int, out []float64) bool {
	return withVector(b, "VectorGetDoubles", h, func(v *value.Vector) bool { return v.Doubles(start, out) })
}

func (b *Bridge) VectorGetStrings(h Handle, start int, out []string) bool {
	return withVector(b, "VectorGetStrings", h, func(v *value.Vector) bool { return v.Strings(start, out) })
}

func (b *Bridge) VectorSet(h Handle, i int, elem Handle) bool {
	return withTwo(b, "VectorSet", h, elem, func(v, e *value.Value) bool { return v.SetAt(i, e) })
}

func (b *Bridge) VectorRemove(h Handle, i int) bool {
	return withVector(b, "VectorRemove", h, func(v *value.Vector) bool { return v.Remove(i) })
}

// VectorRemoveIndexes removes a batch of positions, all resolved against
// the vector before any removal.
func (b *Bridge) VectorRemoveIndexes(h Handle, indexes []int) bool {
	return withVector(b, "VectorRemoveIndexes", h, func(v *value.Vector) bool { return v.RemoveIndexes(indexes) })
}

// VectorRemoveByIndex is VectorRemoveIndexes with an integral index vector.
func (b *Bridge) VectorRemoveByIndex(h, index Handle) bool {
	return guard(b, "VectorRemoveByIndex", func() (bool, error) {
		v, err := narrow(b, h, "VECTOR", (*value.Value).AsVector)
		if err != nil {
			return false, err
		}
		idx, err := lookup[*value.Value](b, index, "VECTOR")
		if err != nil {
			return false, err
		}
		return v.RemoveByIndex(idx), nil
	})
}

// VectorSubVector returns a view aliasing n elements starting at start.
func (b *Bridge) VectorSubVector(h Handle, start, n int) Handle {
	return b.deriveVector("VectorSubVector", h, func(v *value.Vector) *value.Value {
		if sub := v.SubVector(start, n); sub != nil {
			return sub.Value
		}
		return nil
	})
}

func (b *Bridge) VectorReverse(h Handle) bool {
	return withVector(b, "VectorReverse", h, func(v *value.Vector) bool { v.Reverse(); return true })
}

func (b *Bridge) VectorReverseRange(h Handle, start, n int) bool {
	return withVector(b, "VectorReverseRange", h, func(v *value.Vector) bool { return v.ReverseRange(start, n) })
}

// VectorAddIndex adds offset to n integral elements starting at start.
func (b *Bridge) VectorAddIndex(h Handle, start, n int, offset int64) bool {
	return withVector(b, "VectorAddIndex", h, func(v *value.Vector) bool { return v.AddIndex(start, n, offset) })
}

// VectorInstance returns an empty vector of the same type.
func (b *Bridge) VectorInstance(h Handle, capacity int) Handle {
	return b.deriveVector("VectorInstance", h, func(v *value.Vector) *value.Value { return v.Instance(capacity).Value })
}

func (b *Bridge) VectorValidIndex(h Handle, i int) bool {
	return withVector(b, "VectorValidIndex", h, func(v *value.Vector) bool { return v.ValidIndex(i) })
}

func (b *Bridge) VectorFill(h Handle, start, n int, elem Handle) bool {
	return withTwo(b, "VectorFill", h, elem, func(v, e *value.Value) bool {
		vec := v.AsVector()
		return vec != nil && vec.Fill(start, n, e)
	})
}

// VectorReplace replaces every element equal to old and returns the count.
func (b *Bridge) VectorReplace(h, old, repl Handle) int {
	return guard(b, "VectorReplace", func() (int, error) {
		v, err := narrow(b, h, "VECTOR", (*value.Value).AsVector)
		if err != nil {
			return 0, err
		}
		vs, err := b.values([]Handle{old, repl})
		if err != nil {
			return 0, err
		}
		return v.Replace(vs[0], vs[1]), nil
	})
}

func (b *Bridge) VectorNext(h Handle, steps int) bool {
	return withVector(b, "VectorNext", h, func(v *value.Vector) bool { v.Next(steps); return true })
}

func (b *Bridge) VectorPrev(h Handle, steps int) bool {
	return withVector(b, "VectorPrev", h, func(v *value.Vector) bool { v.Prev(steps); return true })
}

func (b *Bridge) VectorNeg(h Handle) bool {
	return withVector(b, "VectorNeg", h, (*value.Vector).Neg)
}

func (b *Bridge) VectorColumnLabel(h Handle) Handle {
	return b.deriveVector("VectorColumnLabel", h, (*value.Vector).ColumnLabel)
}

func (b *Bridge) VectorSetColumnLabel(h, label Handle) bool {
	return withTwo(b, "VectorSetColumnLabel", h, label, func(v, l *value.Value) bool {
		vec := v.AsVector()
		if vec == nil {
			return false
		}
		vec.SetColumnLabel(l)
		return true
	})
}

func withMatrix[T any](b *Bridge, op string, h Handle, fn func(m *value.Matrix) T) T {
	return guard(b, op, func() (T, error) {
		m, err := narrow(b, h, "MATRIX", (*value.Value).AsMatrix)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(m), nil
	})
}

func (b *Bridge) deriveMatrix(op string, h Handle, fn func(m *value.Matrix) *value.Value) Handle {
	return guard(b, op, func() (Handle, error) {
		m, err := narrow(b, h, "MATRIX", (*value.Value).AsMatrix)
		if err != nil {
			return NilHandle, err
		}
		return b.putValue(fn(m))
	})
}

// MatrixNew creates a zero-filled cols x rows matrix.
func (b *Bridge) MatrixNew(typ, cols, rows int) Handle {
	return b.newValue("MatrixNew", func() *value.Value {
		return value.NewMatrix(model.Type(typ), cols, rows).Value
	})
}

func (b *Bridge) MatrixColumns(h Handle) int {
	return withMatrix(b, "MatrixColumns", h, (*value.Matrix).Columns)
}

func (b *Bridge) MatrixRows(h Handle) int {
	return withMatrix(b, "MatrixRows", h, (*value.Matrix).Rows)
}

// MatrixReshape fails if cols*rows exceeds the capacity.
func (b *Bridge) MatrixReshape(h Handle, cols, rows int) bool {
	return withMatrix(b, "MatrixReshape", h, func(m *value.Matrix) bool { return m.Reshape(cols, rows) })
}

// MatrixColumn returns column c as a view.
func (b *Bridge) MatrixColumn(h Handle, c int) Handle {
	return b.deriveMatrix("MatrixColumn", h, func(m *value.Matrix) *value.Value {
		if col := m.Column(c); col != nil {
			return col.Value
		}
		return nil
	})
}

func (b *Bridge) MatrixSetColumn(h Handle, c int, src Handle) bool {
	return withTwo(b, "MatrixSetColumn", h, src, func(v, s *value.Value) bool {
		m := v.AsMatrix()
		return m != nil && m.SetColumn(c, s)
	})
}

func (b *Bridge) MatrixCell(h Handle, c, r int) Handle {
	return b.deriveMatrix("MatrixCell", h, func(m *value.Matrix) *value.Value { return m.Cell(c, r) })
}

func (b *Bridge) MatrixCellString(h Handle, c, r int) string {
	return withMatrix(b, "MatrixCellString", h, func(m *value.Matrix) string { return m.CellString(c, r) })
}

// MatrixStringAt renders cell i of the column-major storage.
func (b *Bridge) MatrixStringAt(h Handle, i int) string {
	return withMatrix(b, "MatrixStringAt", h, func(m *value.Matrix) string { return m.StringAt(i) })
}

func (b *Bridge) MatrixRowLabel(h Handle) Handle {
	return b.deriveMatrix("MatrixRowLabel", h, (*value.Matrix).RowLabel)
}

func (b *Bridge) MatrixColumnLabel(h Handle) Handle {
	return b.deriveMatrix("MatrixColumnLabel", h, (*value.Matrix).ColumnLabel)
}

func (b *Bridge) MatrixSetRowLabel(h, label Handle) bool {
	return withTwo(b, "MatrixSetRowLabel", h, label, func(v, l *value.Value) bool {
		m := v.AsMatrix()
		return m != nil && m.SetRowLabel(l)
	})
}

func (b *Bridge) MatrixSetColumnLabel(h, label Handle) bool {
	return withTwo(b, "MatrixSetColumnLabel", h, label, func(v, l *value.Value) bool {
		m := v.AsMatrix()
		return m != nil && m.SetColumnLabel(l)
	})
}

func (b *Bridge) MatrixInstance(h Handle, cols int) Handle {
	return b.deriveMatrix("MatrixInstance", h, func(m *value.Matrix) *value.Value { return m.Instance(cols).Value })
}
