package value

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/ddbgo/model"
)

// Vector narrows a vector-shaped Value (vector, pair or matrix).
type Vector struct {
	*Value
}

// AsVector narrows v, or returns nil if v is not vector-shaped.
func (v *Value) AsVector() *Vector {
	if v == nil {
		return nil
	}
	switch v.form {
	case model.FormVector, model.FormPair, model.FormMatrix:
		return &Vector{Value: v}
	}
	return nil
}

// NewVector returns a vector of size zero-valued elements with room for
// capacity elements.
func NewVector(typ model.Type, size, capacity int) *Vector {
	return &Vector{Value: newVectorValue(model.FormVector, typ, newColumn(typ, size, capacity))}
}

// NewBoolVector returns a BOOL vector holding vals.
func NewBoolVector(vals ...bool) *Vector {
	v := NewVector(model.TypeBool, 0, len(vals))
	v.AppendBool(vals)
	return v
}

// NewIntVector returns an INT vector holding vals.
func NewIntVector(vals ...int32) *Vector {
	v := NewVector(model.TypeInt, 0, len(vals))
	v.AppendInt(vals)
	return v
}

// NewLongVector returns a LONG vector holding vals.
func NewLongVector(vals ...int64) *Vector {
	v := NewVector(model.TypeLong, 0, len(vals))
	v.AppendLong(vals)
	return v
}

// NewDoubleVector returns a DOUBLE vector holding vals.
func NewDoubleVector(vals ...float64) *Vector {
	v := NewVector(model.TypeDouble, 0, len(vals))
	v.AppendDouble(vals)
	return v
}

// NewStringVector returns a STRING vector holding vals.
func NewStringVector(vals ...string) *Vector {
	v := NewVector(model.TypeString, 0, len(vals))
	v.AppendString(vals)
	return v
}

// NewAnyVector returns an ANY vector holding copies of vals.
func NewAnyVector(vals ...*Value) *Vector {
	v := NewVector(model.TypeAny, 0, len(vals))
	for _, e := range vals {
		v.Append(e)
	}
	return v
}

// Name returns the vector name.
func (v *Vector) Name() string { return v.vec.name }

// SetName sets the vector name.
func (v *Vector) SetName(name string) { v.vec.name = name }

// Len returns the number of elements.
func (v *Vector) Len() int { return v.vec.len() }

// Cap returns the capacity. A view's capacity is its length.
func (v *Vector) Cap() int {
	if v.vec.view {
		return v.vec.len()
	}
	return v.vec.col.cap()
}

// IsView reports whether v aliases another vector's storage.
func (v *Vector) IsView() bool { return v.vec.view }

// Parent returns the value a view was cut from, or nil for owners.
func (v *Vector) Parent() *Value { return v.vec.parent }

// UnitLength returns the element width in bytes (0 for variable width).
func (v *Vector) UnitLength() int { return v.typ.UnitLength() }

// ColumnLabel returns the categorical label vector, or nil.
func (v *Vector) ColumnLabel() *Value { return v.vec.label }

// SetColumnLabel attaches a label vector.
func (v *Vector) SetColumnLabel(label *Value) { v.vec.label = label }

func (v *Vector) growable() bool {
	return !v.vec.view && v.form == model.FormVector
}

// Reserve grows the capacity to at least n and returns the resulting
// capacity.
func (v *Vector) Reserve(n int) int {
	if !v.growable() {
		return v.Cap()
	}
	return v.vec.col.reserve(n)
}

// Clear removes all elements. Views cannot be cleared.
func (v *Vector) Clear() bool {
	if !v.growable() {
		return false
	}
	v.vec.col.resize(0)
	return true
}

// Initialize resets every element to its zero value.
func (v *Vector) Initialize() {
	zero := newColumn(v.typ, 1, 1)
	for i := 0; i < v.Len(); i++ {
		col, j, ok := v.vec.locate(i)
		if ok {
			col.setFrom(j, zero, 0)
		}
	}
}

// compatible reports whether elements of type src may be stored into a
// dst-typed column without an explicit conversion by the caller.
func compatible(dst, src model.Type) bool {
	if dst == src || dst == model.TypeAny || src == model.TypeVoid {
		return true
	}
	if dst.Storage() == src.Storage() {
		return true
	}
	dc, sc := dst.Category(), src.Category()
	switch {
	case dc == model.CategoryLiteral && sc == model.CategoryLiteral:
		return true
	case dst.IsNumeric() && src.IsNumeric():
		return dc != model.CategoryTemporal && sc != model.CategoryTemporal
	}
	return false
}

// Append appends a scalar, or every element of a vector. An array vector
// takes a plain vector or scalar as one new row. It returns false for views,
// incompatible types and container forms.
func (v *Vector) Append(e *Value) bool {
	if e == nil || !v.growable() {
		return false
	}
	if v.typ == model.TypeAny {
		v.vec.col.resize(v.Len() + 1)
		v.vec.col.any[v.Len()-1] = e.Clone()
		return true
	}
	if v.typ.IsArray() && !e.typ.IsArray() {
		if e.vec == nil || !compatible(v.typ.ElementType(), e.typ) {
			return false
		}
		col := v.vec.col
		col.resize(col.len() + 1)
		col.setArray(col.len()-1, e)
		return true
	}
	if e.vec == nil || !compatible(v.typ, e.typ) {
		return false
	}
	n := e.vec.len()
	v.vec.col.reserve(v.Len() + n)
	for i := 0; i < n; i++ {
		src, j, ok := e.vec.locate(i)
		if !ok {
			return false
		}
		v.vec.col.appendFrom(src, j)
	}
	return true
}

func (v *Vector) appendable(s model.Storage) bool {
	return v.growable() && v.typ.Storage() == s
}

// AppendBool appends buf to a BOOL vector.
func (v *Vector) AppendBool(buf []bool) bool {
	if !v.growable() || v.typ != model.TypeBool {
		return false
	}
	col := v.vec.col
	for _, b := range buf {
		var n int8
		if b {
			n = 1
		}
		col.i8 = append(col.i8, n)
	}
	return true
}

// AppendChar appends buf to a CHAR vector.
func (v *Vector) AppendChar(buf []int8) bool {
	if !v.growable() || v.typ != model.TypeChar {
		return false
	}
	v.vec.col.i8 = append(v.vec.col.i8, buf...)
	return true
}

// AppendShort appends buf to a SHORT vector.
func (v *Vector) AppendShort(buf []int16) bool {
	if !v.appendable(model.StorageInt16) {
		return false
	}
	v.vec.col.i16 = append(v.vec.col.i16, buf...)
	return true
}

// AppendInt appends buf to an INT vector or a 32-bit temporal vector.
func (v *Vector) AppendInt(buf []int32) bool {
	if !v.appendable(model.StorageInt32) {
		return false
	}
	v.vec.col.i32 = append(v.vec.col.i32, buf...)
	return true
}

// AppendLong appends buf to a LONG vector or a 64-bit temporal vector.
func (v *Vector) AppendLong(buf []int64) bool {
	if !v.appendable(model.StorageInt64) {
		return false
	}
	v.vec.col.i64 = append(v.vec.col.i64, buf...)
	return true
}

// AppendFloat appends buf to a FLOAT vector.
func (v *Vector) AppendFloat(buf []float32) bool {
	if !v.appendable(model.StorageFloat32) {
		return false
	}
	v.vec.col.f32 = append(v.vec.col.f32, buf...)
	return true
}

// AppendDouble appends buf to a DOUBLE vector.
func (v *Vector) AppendDouble(buf []float64) bool {
	if !v.appendable(model.StorageFloat64) {
		return false
	}
	v.vec.col.f64 = append(v.vec.col.f64, buf...)
	return true
}

// AppendString appends buf to a STRING, SYMBOL or BLOB vector.
func (v *Vector) AppendString(buf []string) bool {
	if !v.appendable(model.StorageString) {
		return false
	}
	v.vec.col.str = append(v.vec.col.str, buf...)
	return true
}

// AppendBinary appends buf to a UUID, IPADDR or INT128 vector.
func (v *Vector) AppendBinary(buf [][16]byte) bool {
	if !v.appendable(model.StorageBinary16) {
		return false
	}
	v.vec.col.bin = append(v.vec.col.bin, buf...)
	return true
}

// Set copies scalar e into element i.
func (v *Vector) Set(i int, e *Value) bool { return v.SetAt(i, e) }

// Remove deletes element i and shifts the tail left.
func (v *Vector) Remove(i int) bool {
	if !v.growable() || i < 0 || i >= v.Len() {
		return false
	}
	v.vec.col.remove(i)
	return true
}

// RemoveIndexes deletes the given positions. Positions refer to the vector
// before removal; duplicates are ignored. Nothing is removed if any position
// is out of range.
func (v *Vector) RemoveIndexes(indexes []int) bool {
	if !v.growable() {
		return false
	}
	n := v.Len()
	drop := roaring.New()
	for _, i := range indexes {
		if i < 0 || i >= n {
			return false
		}
		drop.Add(uint32(i))
	}
	if drop.IsEmpty() {
		return true
	}
	col := v.vec.col
	w := 0
	for r := 0; r < n; r++ {
		if drop.Contains(uint32(r)) {
			continue
		}
		if w != r {
			col.move(w, r)
		}
		w++
	}
	col.resize(w)
	return true
}

// RemoveByIndex is RemoveIndexes with positions taken from an integral
// scalar or vector.
func (v *Vector) RemoveByIndex(index *Value) bool {
	if index == nil || index.vec == nil || index.typ.Category() != model.CategoryIntegral {
		return false
	}
	positions := make([]int, index.Size())
	for i := range positions {
		if index.IsNullAt(i) {
			return false
		}
		positions[i] = int(index.LongAt(i))
	}
	return v.RemoveIndexes(positions)
}

// SubVector returns a view aliasing elements [start, start+n). It returns nil
// if the range is out of bounds.
func (v *Vector) SubVector(start, n int) *Vector {
	if start < 0 || n < 0 || start+n > v.Len() {
		return nil
	}
	view := &Value{
		form: model.FormVector,
		typ:  v.typ,
		vec: &vectorData{
			col:    v.vec.col,
			off:    v.vec.off + start,
			n:      n,
			view:   true,
			parent: v.Value,
			name:   v.vec.name,
		},
	}
	return &Vector{Value: view}
}

// Reverse reverses the elements in place.
func (v *Vector) Reverse() {
	v.ReverseRange(0, v.Len())
}

// ReverseRange reverses [start, start+n) in place.
func (v *Vector) ReverseRange(start, n int) bool {
	if start < 0 || n < 0 || start+n > v.Len() {
		return false
	}
	for i, j := start, start+n-1; i < j; i, j = i+1, j-1 {
		ci, a, ok1 := v.vec.locate(i)
		_, b, ok2 := v.vec.locate(j)
		if ok1 && ok2 {
			ci.swap(a, b)
		}
	}
	return true
}

// AddIndex adds offset to the non-null elements of [start, start+n). It
// only applies to integral vectors.
func (v *Vector) AddIndex(start, n int, offset int64) bool {
	if v.typ.Category() != model.CategoryIntegral || start < 0 || n < 0 || start+n > v.Len() {
		return false
	}
	for i := start; i < start+n; i++ {
		col, j, ok := v.vec.locate(i)
		if !ok || col.isNull(j) {
			continue
		}
		x, _ := col.int64At(j)
		col.setInt64(j, x+offset)
	}
	return true
}

// Instance returns a new, empty vector of the same type and decimal scale
// with the given capacity.
func (v *Vector) Instance(capacity int) *Vector {
	return &Vector{Value: newVectorValue(model.FormVector, v.typ, v.vec.col.like(0, capacity))}
}

// ValidIndex reports whether i is in bounds and element i is not null.
func (v *Vector) ValidIndex(i int) bool {
	return i >= 0 && i < v.Len() && !v.IsNullAt(i)
}

// Fill copies scalar e into [start, start+n).
func (v *Vector) Fill(start, n int, e *Value) bool {
	if e == nil || start < 0 || n < 0 || start+n > v.Len() {
		return false
	}
	for i := start; i < start+n; i++ {
		v.SetAt(i, e)
	}
	return true
}

// Replace overwrites every element equal to old with repl and returns the
// number of replacements.
func (v *Vector) Replace(old, repl *Value) int {
	if old == nil || repl == nil || old.vec == nil || old.vec.len() == 0 {
		return 0
	}
	oc, oj, _ := old.vec.locate(0)
	target := keyOf(v.typ, oc, oj)
	targetNull := oc.isNull(oj)
	count := 0
	for i := 0; i < v.Len(); i++ {
		col, j, ok := v.vec.locate(i)
		if !ok {
			continue
		}
		if col.isNull(j) {
			if !targetNull {
				continue
			}
		} else if targetNull || col.keyAt(j) != target {
			continue
		}
		v.SetAt(i, repl)
		count++
	}
	return count
}

// Next shifts elements towards the front by steps, filling the tail with
// nulls. A negative step shifts towards the back.
func (v *Vector) Next(steps int) {
	n := v.Len()
	if steps == 0 || n == 0 {
		return
	}
	if steps < 0 {
		v.Prev(-steps)
		return
	}
	for i := 0; i < n; i++ {
		dst, a, _ := v.vec.locate(i)
		if i+steps < n {
			_, b, _ := v.vec.locate(i + steps)
			dst.move(a, b)
		} else {
			dst.setNull(a)
		}
	}
}

// Prev shifts elements towards the back by steps, filling the head with
// nulls.
func (v *Vector) Prev(steps int) {
	n := v.Len()
	if steps == 0 || n == 0 {
		return
	}
	if steps < 0 {
		v.Next(-steps)
		return
	}
	for i := n - 1; i >= 0; i-- {
		dst, a, _ := v.vec.locate(i)
		if i-steps >= 0 {
			_, b, _ := v.vec.locate(i - steps)
			dst.move(a, b)
		} else {
			dst.setNull(a)
		}
	}
}

// Neg negates numeric elements in place. Nulls stay null.
func (v *Vector) Neg() bool {
	c := v.typ.Category()
	if c != model.CategoryIntegral && c != model.CategoryFloating {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		col, j, ok := v.vec.locate(i)
		if !ok || col.isNull(j) {
			continue
		}
		if c == model.CategoryFloating {
			f, _ := col.float64At(j)
			col.setFloat64(j, -f)
			continue
		}
		x, _ := col.int64At(j)
		col.setInt64(j, -x)
	}
	return true
}

// Ints copies [start, start+len(out)) into out.
func (v *Vector) Ints(start int, out []int32) bool {
	if start < 0 || start+len(out) > v.Len() {
		return false
	}
	for k := range out {
		out[k] = v.IntAt(start + k)
	}
	return true
}

// Longs copies [start, start+len(out)) into out.
func (v *Vector) Longs(start int, out []int64) bool {
	if start < 0 || start+len(out) > v.Len() {
		return false
	}
	for k := range out {
		out[k] = v.LongAt(start + k)
	}
	return true
}

// Doubles copies [start, start+len(out)) into out.
func (v *Vector) Doubles(start int, out []float64) bool {
	if start < 0 || start+len(out) > v.Len() {
		return false
	}
	for k := range out {
		out[k] = v.DoubleAt(start + k)
	}
	return true
}

// Strings copies [start, start+len(out)) into out.
func (v *Vector) Strings(start int, out []string) bool {
	if start < 0 || start+len(out) > v.Len() {
		return false
	}
	for k := range out {
		out[k] = v.StringAt(start + k)
	}
	return true
}

func renderList(v *Value) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < v.Size(); i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.StringAt(i))
	}
	sb.WriteByte(']')
	return sb.String()
}
