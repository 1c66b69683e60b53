package value

import (
	"strconv"

	"github.com/hupe1980/ddbgo/model"
)

// Value is the polymorphic unit of data: a closed tagged variant whose form
// and type are fixed at construction. Only the payload mutates.
//
// Scalars, pairs, vectors and matrices share the vectorData payload (a
// scalar is a one-element vector); sets, dictionaries and tables carry their
// own payloads. Methods pattern-match on the form.
//
// A Value is not safe for concurrent mutation; readers may share it.
type Value struct {
	form model.Form
	typ  model.Type
	vec  *vectorData
	set  *setData
	dict *dictData
	tbl  *tableData
}

// vectorData is the payload of the contiguous forms.
type vectorData struct {
	col *column

	// Views alias [off, off+n) of col. parent is the value the view was
	// cut from; it keeps the backing storage reachable but is never
	// mutated through the view. A live view aliases [off, col.len()) and
	// follows the owner as it grows or shrinks.
	off    int
	n      int
	view   bool
	live   bool
	parent *Value

	name  string
	label *Value

	cols, rows         int
	rowLabel, colLabel *Value
}

func (d *vectorData) len() int {
	switch {
	case d.live:
		return max(d.col.len()-d.off, 0)
	case d.view:
		return d.n
	}
	return d.col.len()
}

// locate maps logical index i onto the backing column.
func (d *vectorData) locate(i int) (*column, int, bool) {
	if i < 0 || i >= d.len() {
		return nil, 0, false
	}
	j := d.off + i
	if j >= d.col.len() {
		return nil, 0, false
	}
	return d.col, j, true
}

func newVectorValue(form model.Form, typ model.Type, col *column) *Value {
	return &Value{form: form, typ: typ, vec: &vectorData{col: col}}
}

// NewScalar returns a null scalar of the given type.
func NewScalar(typ model.Type) *Value {
	v := newVectorValue(model.FormScalar, typ, newColumn(typ, 1, 1))
	v.vec.col.setNull(0)
	return v
}

// NewVoid returns the null-typed scalar used for absent lookups.
func NewVoid() *Value {
	return newVectorValue(model.FormScalar, model.TypeVoid, newColumn(model.TypeVoid, 1, 1))
}

// NewBool returns a BOOL scalar.
func NewBool(b bool) *Value {
	v := NewScalar(model.TypeBool)
	v.SetBool(b)
	return v
}

// NewChar returns a CHAR scalar.
func NewChar(c int8) *Value {
	v := NewScalar(model.TypeChar)
	v.vec.col.i8[0] = c
	return v
}

// NewShort returns a SHORT scalar.
func NewShort(n int16) *Value {
	v := NewScalar(model.TypeShort)
	v.vec.col.i16[0] = n
	return v
}

// NewInt returns an INT scalar.
func NewInt(n int32) *Value {
	v := NewScalar(model.TypeInt)
	v.vec.col.i32[0] = n
	return v
}

// NewLong returns a LONG scalar.
func NewLong(n int64) *Value {
	v := NewScalar(model.TypeLong)
	v.vec.col.i64[0] = n
	return v
}

// NewFloat returns a FLOAT scalar.
func NewFloat(f float32) *Value {
	v := NewScalar(model.TypeFloat)
	v.vec.col.f32[0] = f
	return v
}

// NewDouble returns a DOUBLE scalar.
func NewDouble(f float64) *Value {
	v := NewScalar(model.TypeDouble)
	v.vec.col.f64[0] = f
	return v
}

// NewString returns a STRING scalar.
func NewString(s string) *Value {
	v := NewScalar(model.TypeString)
	v.vec.col.str[0] = s
	return v
}

// NewSymbol returns a SYMBOL scalar.
func NewSymbol(s string) *Value {
	v := NewScalar(model.TypeSymbol)
	v.vec.col.str[0] = s
	return v
}

// NewBlob returns a BLOB scalar holding raw bytes.
func NewBlob(b []byte) *Value {
	v := NewScalar(model.TypeBlob)
	v.vec.col.str[0] = string(b)
	return v
}

// NewBinary returns a 16-byte scalar of type UUID, IPADDR or INT128. Other
// types yield a null INT128.
func NewBinary(typ model.Type, b [16]byte) *Value {
	if typ.Storage() != model.StorageBinary16 {
		return NewScalar(model.TypeInt128)
	}
	v := NewScalar(typ)
	v.vec.col.bin[0] = b
	return v
}

// NewPair returns a pair of a's type holding a and b.
func NewPair(a, b *Value) *Value {
	typ := a.Type()
	v := newVectorValue(model.FormPair, typ, newColumn(typ, 2, 2))
	v.SetAt(0, a)
	v.SetAt(1, b)
	return v
}

// Form returns the structural form.
func (v *Value) Form() model.Form { return v.form }

// Type returns the element type. Containers report their element or key type;
// tables report ANY.
func (v *Value) Type() model.Type { return v.typ }

// Category returns the storage class of the element type.
func (v *Value) Category() model.Category { return v.typ.Category() }

// IsScalar reports whether v is a scalar.
func (v *Value) IsScalar() bool { return v.form == model.FormScalar }

// IsPair reports whether v is a pair.
func (v *Value) IsPair() bool { return v.form == model.FormPair }

// IsVector reports whether v is a vector.
func (v *Value) IsVector() bool { return v.form == model.FormVector }

// IsMatrix reports whether v is a matrix.
func (v *Value) IsMatrix() bool { return v.form == model.FormMatrix }

// IsSet reports whether v is a set.
func (v *Value) IsSet() bool { return v.form == model.FormSet }

// IsDictionary reports whether v is a dictionary.
func (v *Value) IsDictionary() bool { return v.form == model.FormDictionary }

// IsTable reports whether v is a table.
func (v *Value) IsTable() bool { return v.form == model.FormTable }

// Size returns the element count: 1 for scalars, the row count for tables.
func (v *Value) Size() int {
	switch v.form {
	case model.FormSet:
		return v.set.keys.len()
	case model.FormDictionary:
		return v.dict.keys.len()
	case model.FormTable:
		return v.tbl.rows()
	default:
		return v.vec.len()
	}
}

// IsNull reports whether a scalar holds its type's null. Containers are
// never null.
func (v *Value) IsNull() bool {
	if v.form != model.FormScalar {
		return false
	}
	return v.IsNullAt(0)
}

// IsNullAt reports whether element i is null. Out-of-range indexes report
// true.
func (v *Value) IsNullAt(i int) bool {
	if v.vec == nil {
		return true
	}
	col, j, ok := v.vec.locate(i)
	if !ok {
		return true
	}
	return col.isNull(j)
}

// SetNull marks a scalar as null.
func (v *Value) SetNull() { v.SetNullAt(0) }

// SetNullAt marks element i as null.
func (v *Value) SetNullAt(i int) bool {
	if v.vec == nil {
		return false
	}
	col, j, ok := v.vec.locate(i)
	if !ok {
		return false
	}
	col.setNull(j)
	return true
}

// Bool returns the scalar as a bool. Nulls read as false.
func (v *Value) Bool() bool { return v.BoolAt(0) }

// BoolAt returns element i as a bool.
func (v *Value) BoolAt(i int) bool {
	n, ok := v.int64At(i)
	return ok && n != 0
}

// Char returns the scalar as a CHAR, or the null sentinel.
func (v *Value) Char() int8 { return v.CharAt(0) }

// CharAt returns element i as a CHAR.
func (v *Value) CharAt(i int) int8 {
	if n, ok := v.int64At(i); ok {
		return int8(n)
	}
	return model.NullInt8
}

// Short returns the scalar as a SHORT, or the null sentinel.
func (v *Value) Short() int16 { return v.ShortAt(0) }

// ShortAt returns element i as a SHORT.
func (v *Value) ShortAt(i int) int16 {
	if n, ok := v.int64At(i); ok {
		return int16(n)
	}
	return model.NullInt16
}

// Int returns the scalar as an INT, or the null sentinel.
func (v *Value) Int() int32 { return v.IntAt(0) }

// IntAt returns element i as an INT.
func (v *Value) IntAt(i int) int32 {
	if n, ok := v.int64At(i); ok {
		return int32(n)
	}
	return model.NullInt32
}

// Long returns the scalar as a LONG, or the null sentinel.
func (v *Value) Long() int64 { return v.LongAt(0) }

// LongAt returns element i as a LONG.
func (v *Value) LongAt(i int) int64 {
	if n, ok := v.int64At(i); ok {
		return n
	}
	return model.NullInt64
}

// Index returns the scalar as an index (INT width), or the null sentinel.
func (v *Value) Index() int { return int(v.Int()) }

// Float returns the scalar as a FLOAT, or the null sentinel.
func (v *Value) Float() float32 { return v.FloatAt(0) }

// FloatAt returns element i as a FLOAT.
func (v *Value) FloatAt(i int) float32 {
	if f, ok := v.float64At(i); ok {
		return float32(f)
	}
	return model.NullFloat32
}

// Double returns the scalar as a DOUBLE, or the null sentinel.
func (v *Value) Double() float64 { return v.DoubleAt(0) }

// DoubleAt returns element i as a DOUBLE.
func (v *Value) DoubleAt(i int) float64 {
	if f, ok := v.float64At(i); ok {
		return f
	}
	return model.NullFloat64
}

// StringAt renders element i. Nulls render as the empty string.
func (v *Value) StringAt(i int) string {
	if v.vec == nil {
		return ""
	}
	col, j, ok := v.vec.locate(i)
	if !ok {
		return ""
	}
	return col.stringAt(j)
}

// Binary returns the scalar's 16 bytes.
func (v *Value) Binary() [16]byte { return v.BinaryAt(0) }

// BinaryAt returns element i as 16 bytes; non-binary types read as zero.
func (v *Value) BinaryAt(i int) [16]byte {
	if v.vec == nil {
		return [16]byte{}
	}
	col, j, ok := v.vec.locate(i)
	if !ok {
		return [16]byte{}
	}
	return col.binaryAt(j)
}

// Get returns element i as a new scalar (a column view for tables, the
// element itself for ANY vectors). Out of range yields VOID.
func (v *Value) Get(i int) *Value {
	switch v.form {
	case model.FormTable:
		return v.AsTable().Row(i)
	case model.FormSet, model.FormDictionary:
		keys := v.Keys()
		return keys.Get(i)
	}
	col, j, ok := v.vec.locate(i)
	if !ok {
		return NewVoid()
	}
	if col.typ.Storage() == model.StorageAny && col.any[j] != nil {
		return col.any[j]
	}
	return col.valueAt(j)
}

func (v *Value) int64At(i int) (int64, bool) {
	if v.vec == nil {
		return 0, false
	}
	col, j, ok := v.vec.locate(i)
	if !ok {
		return 0, false
	}
	return col.int64At(j)
}

func (v *Value) float64At(i int) (float64, bool) {
	if v.vec == nil {
		return 0, false
	}
	col, j, ok := v.vec.locate(i)
	if !ok {
		return 0, false
	}
	return col.float64At(j)
}

// SetBool sets a scalar.
func (v *Value) SetBool(b bool) { v.SetBoolAt(0, b) }

// SetChar sets a scalar.
func (v *Value) SetChar(c int8) { v.SetLongAt(0, int64(c)) }

// SetShort sets a scalar.
func (v *Value) SetShort(n int16) { v.SetLongAt(0, int64(n)) }

// SetInt sets a scalar.
func (v *Value) SetInt(n int32) { v.SetLongAt(0, int64(n)) }

// SetLong sets a scalar.
func (v *Value) SetLong(n int64) { v.SetLongAt(0, n) }

// SetFloat sets a scalar.
func (v *Value) SetFloat(f float32) { v.SetDoubleAt(0, float64(f)) }

// SetDouble sets a scalar.
func (v *Value) SetDouble(f float64) { v.SetDoubleAt(0, f) }

// SetString sets a scalar.
func (v *Value) SetString(s string) { v.SetStringAt(0, s) }

// SetBinary sets a scalar.
func (v *Value) SetBinary(b [16]byte) { v.SetBinaryAt(0, b) }

// SetBoolAt sets element i.
func (v *Value) SetBoolAt(i int, b bool) bool {
	var n int64
	if b {
		n = 1
	}
	return v.SetLongAt(i, n)
}

// SetCharAt sets element i.
func (v *Value) SetCharAt(i int, c int8) bool { return v.SetLongAt(i, int64(c)) }

// SetShortAt sets element i.
func (v *Value) SetShortAt(i int, n int16) bool { return v.SetLongAt(i, int64(n)) }

// SetIntAt sets element i.
func (v *Value) SetIntAt(i int, n int32) bool { return v.SetLongAt(i, int64(n)) }

// SetLongAt sets element i, converting into the element type.
func (v *Value) SetLongAt(i int, n int64) bool {
	col, j, ok := v.slot(i)
	if !ok {
		return false
	}
	col.setInt64(j, n)
	return true
}

// SetFloatAt sets element i.
func (v *Value) SetFloatAt(i int, f float32) bool { return v.SetDoubleAt(i, float64(f)) }

// SetDoubleAt sets element i, converting into the element type.
func (v *Value) SetDoubleAt(i int, f float64) bool {
	col, j, ok := v.slot(i)
	if !ok {
		return false
	}
	col.setFloat64(j, f)
	return true
}

// SetStringAt sets element i, parsing into the element type.
func (v *Value) SetStringAt(i int, s string) bool {
	col, j, ok := v.slot(i)
	if !ok {
		return false
	}
	col.setString(j, s)
	return true
}

// SetBinaryAt sets element i from 16 bytes.
func (v *Value) SetBinaryAt(i int, b [16]byte) bool {
	col, j, ok := v.slot(i)
	if !ok {
		return false
	}
	return col.setBinary(j, b)
}

// SetAt copies scalar e into element i, converting between types.
func (v *Value) SetAt(i int, e *Value) bool {
	if e == nil {
		return false
	}
	col, j, ok := v.slot(i)
	if !ok {
		return false
	}
	if col.typ.Storage() == model.StorageAny {
		col.any[j] = e.Clone()
		return true
	}
	if col.typ.Storage() == model.StorageArray {
		col.setArray(j, e)
		return true
	}
	if e.vec == nil || e.vec.len() == 0 {
		return false
	}
	src, k, _ := e.vec.locate(0)
	col.setFrom(j, src, k)
	return true
}

func (v *Value) slot(i int) (*column, int, bool) {
	if v.vec == nil {
		return nil, 0, false
	}
	return v.vec.locate(i)
}

// span prepares [start, start+n) for a bulk write. Owned vectors grow up to
// their capacity; views, scalars and matrices must already cover the range.
func (v *Value) span(start, n int) bool {
	if v.vec == nil || start < 0 || n < 0 {
		return false
	}
	end := start + n
	if end <= v.vec.len() {
		return true
	}
	if v.vec.view || v.form != model.FormVector || end > v.vec.col.cap() {
		return false
	}
	v.vec.col.resize(end)
	return true
}

// SetBoolSlice writes buf starting at start.
func (v *Value) SetBoolSlice(start int, buf []bool) bool {
	if !v.span(start, len(buf)) {
		return false
	}
	for k, b := range buf {
		v.SetBoolAt(start+k, b)
	}
	return true
}

// SetCharSlice writes buf starting at start.
func (v *Value) SetCharSlice(start int, buf []int8) bool {
	if !v.span(start, len(buf)) {
		return false
	}
	for k, c := range buf {
		if c == model.NullInt8 {
			v.SetNullAt(start + k)
			continue
		}
		v.SetLongAt(start+k, int64(c))
	}
	return true
}

// SetShortSlice writes buf starting at start.
func (v *Value) SetShortSlice(start int, buf []int16) bool {
	if !v.span(start, len(buf)) {
		return false
	}
	for k, n := range buf {
		if n == model.NullInt16 {
			v.SetNullAt(start + k)
			continue
		}
		v.SetLongAt(start+k, int64(n))
	}
	return true
}

// SetIntSlice writes buf starting at start.
func (v *Value) SetIntSlice(start int, buf []int32) bool {
	if !v.span(start, len(buf)) {
		return false
	}
	for k, n := range buf {
		if n == model.NullInt32 {
			v.SetNullAt(start + k)
			continue
		}
		v.SetLongAt(start+k, int64(n))
	}
	return true
}

// SetLongSlice writes buf starting at start.
func (v *Value) SetLongSlice(start int, buf []int64) bool {
	if !v.span(start, len(buf)) {
		return false
	}
	for k, n := range buf {
		if n == model.NullInt64 {
			v.SetNullAt(start + k)
			continue
		}
		v.SetLongAt(start+k, n)
	}
	return true
}

// SetFloatSlice writes buf starting at start.
func (v *Value) SetFloatSlice(start int, buf []float32) bool {
	if !v.span(start, len(buf)) {
		return false
	}
	for k, f := range buf {
		if f == model.NullFloat32 {
			v.SetNullAt(start + k)
			continue
		}
		v.SetDoubleAt(start+k, float64(f))
	}
	return true
}

// SetDoubleSlice writes buf starting at start.
func (v *Value) SetDoubleSlice(start int, buf []float64) bool {
	if !v.span(start, len(buf)) {
		return false
	}
	for k, f := range buf {
		if f == model.NullFloat64 {
			v.SetNullAt(start + k)
			continue
		}
		v.SetDoubleAt(start+k, f)
	}
	return true
}

// SetStringSlice writes buf starting at start.
func (v *Value) SetStringSlice(start int, buf []string) bool {
	if !v.span(start, len(buf)) {
		return false
	}
	for k, s := range buf {
		v.SetStringAt(start+k, s)
	}
	return true
}

// SetBinarySlice writes buf starting at start. The element type must be a
// 16-byte type or a literal.
func (v *Value) SetBinarySlice(start int, buf [][16]byte) bool {
	switch v.typ.Storage() {
	case model.StorageBinary16, model.StorageString, model.StorageAny:
	default:
		return false
	}
	if !v.span(start, len(buf)) {
		return false
	}
	for k, b := range buf {
		v.SetBinaryAt(start+k, b)
	}
	return true
}

// Clone returns a deep copy. Views become independent owners.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	switch v.form {
	case model.FormSet:
		return v.AsSet().clone().Value
	case model.FormDictionary:
		return v.AsDictionary().clone().Value
	case model.FormTable:
		return v.AsTable().clone().Value
	}
	n := v.vec.len()
	col := v.vec.col.slice(v.vec.off, n)
	out := newVectorValue(v.form, v.typ, col)
	out.vec.name = v.vec.name
	out.vec.cols, out.vec.rows = v.vec.cols, v.vec.rows
	if v.vec.label != nil {
		out.vec.label = v.vec.label.Clone()
	}
	if v.vec.rowLabel != nil {
		out.vec.rowLabel = v.vec.rowLabel.Clone()
	}
	if v.vec.colLabel != nil {
		out.vec.colLabel = v.vec.colLabel.Clone()
	}
	if v.form == model.FormScalar && n == 0 {
		out.vec.col.resize(1)
		out.vec.col.setNull(0)
	}
	return out
}

// Equal reports whether v and o have the same form, type and elements.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.form != o.form || v.typ != o.typ || v.Size() != o.Size() {
		return false
	}
	switch v.form {
	case model.FormSet, model.FormDictionary, model.FormTable:
		return v.Script() == o.Script()
	}
	for i := 0; i < v.Size(); i++ {
		a, j, _ := v.vec.locate(i)
		b, k, _ := o.vec.locate(i)
		if !a.equalAt(j, b, k) {
			return false
		}
	}
	return true
}

// String renders the value for display.
func (v *Value) String() string {
	switch v.form {
	case model.FormScalar:
		return v.StringAt(0)
	case model.FormPair:
		return v.StringAt(0) + ":" + v.StringAt(1)
	case model.FormVector:
		return renderList(v)
	case model.FormMatrix:
		return v.AsMatrix().render()
	case model.FormSet:
		return "set(" + renderList(v.AsSet().Keys()) + ")"
	case model.FormDictionary:
		return v.AsDictionary().render()
	case model.FormTable:
		return v.AsTable().render()
	}
	return ""
}

// GoString helps debugging output.
func (v *Value) GoString() string {
	return "value.Value{" + v.form.String() + " " + v.typ.String() + " " + strconv.Quote(v.String()) + "}"
}
