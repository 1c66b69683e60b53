package value

import (
	"math"
	"strconv"

	"github.com/hupe1980/ddbgo/model"
	"github.com/shopspring/decimal"
)

// column is the raw typed storage block shared by scalars, pairs, vectors
// and matrices. Exactly one slice is in use, selected by typ.Storage().
type column struct {
	typ   model.Type
	i8    []int8
	i16   []int16
	i32   []int32
	i64   []int64
	f32   []float32
	f64   []float64
	str   []string
	bin   [][16]byte
	any   []*Value
	dec   []decimal.NullDecimal
	arr   []*column
	nvoid int

	// scale is the number of fractional digits of a decimal column, or -1
	// when each element keeps its own.
	scale int32
}

func newColumn(typ model.Type, size, capacity int) *column {
	if size < 0 {
		size = 0
	}
	if capacity < size {
		capacity = size
	}
	c := &column{typ: typ, scale: -1}
	switch typ.Storage() {
	case model.StorageInt8:
		c.i8 = make([]int8, size, capacity)
	case model.StorageInt16:
		c.i16 = make([]int16, size, capacity)
	case model.StorageInt32:
		c.i32 = make([]int32, size, capacity)
	case model.StorageInt64:
		c.i64 = make([]int64, size, capacity)
	case model.StorageFloat32:
		c.f32 = make([]float32, size, capacity)
	case model.StorageFloat64:
		c.f64 = make([]float64, size, capacity)
	case model.StorageString:
		c.str = make([]string, size, capacity)
	case model.StorageBinary16:
		c.bin = make([][16]byte, size, capacity)
	case model.StorageAny:
		c.any = make([]*Value, size, capacity)
		for i := range c.any {
			c.any[i] = NewVoid()
		}
	case model.StorageDecimal:
		c.dec = make([]decimal.NullDecimal, size, capacity)
		for i := range c.dec {
			c.dec[i] = decimal.NullDecimal{Valid: true}
		}
	case model.StorageArray:
		c.arr = make([]*column, size, capacity)
		for i := range c.arr {
			c.arr[i] = newColumn(typ.ElementType(), 0, 0)
		}
	default:
		c.nvoid = size
	}
	return c
}

// like returns an empty column of the same type and scale.
func (c *column) like(size, capacity int) *column {
	out := newColumn(c.typ, size, capacity)
	out.scale = c.scale
	return out
}

func (c *column) len() int {
	switch c.typ.Storage() {
	case model.StorageInt8:
		return len(c.i8)
	case model.StorageInt16:
		return len(c.i16)
	case model.StorageInt32:
		return len(c.i32)
	case model.StorageInt64:
		return len(c.i64)
	case model.StorageFloat32:
		return len(c.f32)
	case model.StorageFloat64:
		return len(c.f64)
	case model.StorageString:
		return len(c.str)
	case model.StorageBinary16:
		return len(c.bin)
	case model.StorageAny:
		return len(c.any)
	case model.StorageDecimal:
		return len(c.dec)
	case model.StorageArray:
		return len(c.arr)
	default:
		return c.nvoid
	}
}

func (c *column) cap() int {
	switch c.typ.Storage() {
	case model.StorageInt8:
		return cap(c.i8)
	case model.StorageInt16:
		return cap(c.i16)
	case model.StorageInt32:
		return cap(c.i32)
	case model.StorageInt64:
		return cap(c.i64)
	case model.StorageFloat32:
		return cap(c.f32)
	case model.StorageFloat64:
		return cap(c.f64)
	case model.StorageString:
		return cap(c.str)
	case model.StorageBinary16:
		return cap(c.bin)
	case model.StorageAny:
		return cap(c.any)
	case model.StorageDecimal:
		return cap(c.dec)
	case model.StorageArray:
		return cap(c.arr)
	default:
		return c.nvoid
	}
}

func grow[T any](s []T, capacity int) []T {
	if cap(s) >= capacity {
		return s
	}
	out := make([]T, len(s), capacity)
	copy(out, s)
	return out
}

func resize[T any](s []T, n int) []T {
	if n <= len(s) {
		var zero T
		for i := n; i < len(s); i++ {
			s[i] = zero
		}
		return s[:n]
	}
	s = grow(s, n)
	return s[:n]
}

// reserve grows the capacity to at least n and returns the new capacity.
func (c *column) reserve(n int) int {
	switch c.typ.Storage() {
	case model.StorageInt8:
		c.i8 = grow(c.i8, n)
	case model.StorageInt16:
		c.i16 = grow(c.i16, n)
	case model.StorageInt32:
		c.i32 = grow(c.i32, n)
	case model.StorageInt64:
		c.i64 = grow(c.i64, n)
	case model.StorageFloat32:
		c.f32 = grow(c.f32, n)
	case model.StorageFloat64:
		c.f64 = grow(c.f64, n)
	case model.StorageString:
		c.str = grow(c.str, n)
	case model.StorageBinary16:
		c.bin = grow(c.bin, n)
	case model.StorageAny:
		c.any = grow(c.any, n)
	case model.StorageDecimal:
		c.dec = grow(c.dec, n)
	case model.StorageArray:
		c.arr = grow(c.arr, n)
	}
	return c.cap()
}

// resize truncates or zero-extends the column to n elements.
func (c *column) resize(n int) {
	old := c.len()
	switch c.typ.Storage() {
	case model.StorageInt8:
		c.i8 = resize(c.i8, n)
	case model.StorageInt16:
		c.i16 = resize(c.i16, n)
	case model.StorageInt32:
		c.i32 = resize(c.i32, n)
	case model.StorageInt64:
		c.i64 = resize(c.i64, n)
	case model.StorageFloat32:
		c.f32 = resize(c.f32, n)
	case model.StorageFloat64:
		c.f64 = resize(c.f64, n)
	case model.StorageString:
		c.str = resize(c.str, n)
	case model.StorageBinary16:
		c.bin = resize(c.bin, n)
	case model.StorageAny:
		c.any = resize(c.any, n)
		for i := old; i < n; i++ {
			c.any[i] = NewVoid()
		}
	case model.StorageDecimal:
		c.dec = resize(c.dec, n)
		for i := old; i < n; i++ {
			c.dec[i] = decimal.NullDecimal{Valid: true}
		}
	case model.StorageArray:
		c.arr = resize(c.arr, n)
		for i := old; i < n; i++ {
			c.arr[i] = newColumn(c.typ.ElementType(), 0, 0)
		}
	default:
		c.nvoid = n
	}
}

func (c *column) isNull(i int) bool {
	switch c.typ.Storage() {
	case model.StorageInt8:
		return c.i8[i] == model.NullInt8
	case model.StorageInt16:
		return c.i16[i] == model.NullInt16
	case model.StorageInt32:
		return c.i32[i] == model.NullInt32
	case model.StorageInt64:
		return c.i64[i] == model.NullInt64
	case model.StorageFloat32:
		return c.f32[i] == model.NullFloat32
	case model.StorageFloat64:
		return c.f64[i] == model.NullFloat64
	case model.StorageString:
		return c.str[i] == ""
	case model.StorageBinary16:
		return c.bin[i] == [16]byte{}
	case model.StorageAny:
		return c.any[i] == nil || c.any[i].IsNull()
	case model.StorageDecimal:
		return !c.dec[i].Valid
	case model.StorageArray:
		return c.arr[i] == nil
	default:
		return true
	}
}

func (c *column) setNull(i int) {
	switch c.typ.Storage() {
	case model.StorageInt8:
		c.i8[i] = model.NullInt8
	case model.StorageInt16:
		c.i16[i] = model.NullInt16
	case model.StorageInt32:
		c.i32[i] = model.NullInt32
	case model.StorageInt64:
		c.i64[i] = model.NullInt64
	case model.StorageFloat32:
		c.f32[i] = model.NullFloat32
	case model.StorageFloat64:
		c.f64[i] = model.NullFloat64
	case model.StorageString:
		c.str[i] = ""
	case model.StorageBinary16:
		c.bin[i] = [16]byte{}
	case model.StorageAny:
		c.any[i] = NewVoid()
	case model.StorageDecimal:
		c.dec[i] = decimal.NullDecimal{}
	case model.StorageArray:
		c.arr[i] = nil
	}
}

// int64At reads element i as an integer. ok is false for nulls.
func (c *column) int64At(i int) (int64, bool) {
	if c.isNull(i) {
		return 0, false
	}
	switch c.typ.Storage() {
	case model.StorageInt8:
		return int64(c.i8[i]), true
	case model.StorageInt16:
		return int64(c.i16[i]), true
	case model.StorageInt32:
		return int64(c.i32[i]), true
	case model.StorageInt64:
		return c.i64[i], true
	case model.StorageFloat32:
		return int64(math.Round(float64(c.f32[i]))), true
	case model.StorageFloat64:
		return int64(math.Round(c.f64[i])), true
	case model.StorageString:
		if n, err := strconv.ParseInt(c.str[i], 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(c.str[i], 64); err == nil {
			return int64(math.Round(f)), true
		}
		return 0, false
	case model.StorageAny:
		return c.any[i].Long(), true
	case model.StorageDecimal:
		return c.dec[i].Decimal.Round(0).IntPart(), true
	default:
		return 0, false
	}
}

// float64At reads element i as a float. ok is false for nulls.
func (c *column) float64At(i int) (float64, bool) {
	if c.isNull(i) {
		return 0, false
	}
	switch c.typ.Storage() {
	case model.StorageFloat32:
		return float64(c.f32[i]), true
	case model.StorageFloat64:
		return c.f64[i], true
	case model.StorageString:
		f, err := strconv.ParseFloat(c.str[i], 64)
		return f, err == nil
	case model.StorageAny:
		return c.any[i].Double(), true
	case model.StorageDecimal:
		return c.dec[i].Decimal.InexactFloat64(), true
	case model.StorageArray:
		return 0, false
	default:
		n, ok := c.int64At(i)
		return float64(n), ok
	}
}

func (c *column) binaryAt(i int) [16]byte {
	switch c.typ.Storage() {
	case model.StorageBinary16:
		return c.bin[i]
	case model.StorageString:
		b, _ := parseBinary(c.typ, c.str[i])
		return b
	case model.StorageAny:
		return c.any[i].Binary()
	}
	return [16]byte{}
}

// stringAt renders element i using the column type's formatting rules.
func (c *column) stringAt(i int) string {
	if c.typ.Storage() == model.StorageString {
		return c.str[i]
	}
	if c.typ.Storage() == model.StorageAny {
		return c.any[i].String()
	}
	if c.isNull(i) {
		return ""
	}
	switch c.typ.Storage() {
	case model.StorageDecimal:
		return c.decimalString(c.dec[i].Decimal)
	case model.StorageArray:
		return c.arr[i].render()
	}
	switch c.typ {
	case model.TypeBool:
		if c.i8[i] != 0 {
			return "true"
		}
		return "false"
	case model.TypeFloat:
		return strconv.FormatFloat(float64(c.f32[i]), 'g', -1, 32)
	case model.TypeDouble:
		return strconv.FormatFloat(c.f64[i], 'g', -1, 64)
	case model.TypeUUID, model.TypeIPAddr, model.TypeInt128:
		return formatBinary(c.typ, c.bin[i])
	}
	n, _ := c.int64At(i)
	if c.typ.Category() == model.CategoryTemporal {
		return formatTemporal(c.typ, n)
	}
	return strconv.FormatInt(n, 10)
}

func (c *column) setInt64(i int, v int64) {
	switch c.typ.Storage() {
	case model.StorageInt8:
		if c.typ == model.TypeBool && v != 0 {
			v = 1
		}
		c.i8[i] = int8(v)
	case model.StorageInt16:
		c.i16[i] = int16(v)
	case model.StorageInt32:
		c.i32[i] = int32(v)
	case model.StorageInt64:
		c.i64[i] = v
	case model.StorageFloat32:
		c.f32[i] = float32(v)
	case model.StorageFloat64:
		c.f64[i] = float64(v)
	case model.StorageString:
		c.str[i] = strconv.FormatInt(v, 10)
	case model.StorageAny:
		c.any[i] = NewLong(v)
	case model.StorageDecimal:
		c.setDecimal(i, decimal.NewFromInt(v))
	case model.StorageArray:
		c.arr[i] = newColumn(c.typ.ElementType(), 1, 1)
		c.arr[i].setInt64(0, v)
	}
}

func (c *column) setFloat64(i int, v float64) {
	switch c.typ.Storage() {
	case model.StorageFloat32:
		c.f32[i] = float32(v)
	case model.StorageFloat64:
		c.f64[i] = v
	case model.StorageString:
		c.str[i] = strconv.FormatFloat(v, 'g', -1, 64)
	case model.StorageAny:
		c.any[i] = NewDouble(v)
	case model.StorageDecimal:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			c.setNull(i)
			return
		}
		c.setDecimal(i, decimal.NewFromFloat(v))
	case model.StorageArray:
		c.arr[i] = newColumn(c.typ.ElementType(), 1, 1)
		c.arr[i].setFloat64(0, v)
	case model.StorageBinary16:
	default:
		c.setInt64(i, int64(math.Round(v)))
	}
}

func (c *column) setString(i int, s string) {
	switch c.typ.Storage() {
	case model.StorageString:
		c.str[i] = s
	case model.StorageBinary16:
		b, err := parseBinary(c.typ, s)
		if err != nil {
			c.setNull(i)
			return
		}
		c.bin[i] = b
	case model.StorageAny:
		c.any[i] = NewString(s)
	case model.StorageDecimal:
		d, err := decimal.NewFromString(s)
		if err != nil {
			c.setNull(i)
			return
		}
		c.setDecimal(i, d)
	case model.StorageArray:
		a, err := parseArray(c.typ.ElementType(), s)
		if err != nil {
			c.setNull(i)
			return
		}
		c.arr[i] = a
	default:
		p, err := Parse(c.typ, s)
		if err != nil || p.IsNull() {
			c.setNull(i)
			return
		}
		c.setFrom(i, p.vec.col, 0)
	}
}

func (c *column) setBinary(i int, b [16]byte) bool {
	switch c.typ.Storage() {
	case model.StorageBinary16:
		c.bin[i] = b
	case model.StorageString:
		c.str[i] = formatBinary(model.TypeInt128, b)
	case model.StorageAny:
		c.any[i] = NewBinary(model.TypeInt128, b)
	default:
		return false
	}
	return true
}

// setFrom copies element j of src into slot i, converting between storage
// classes where needed.
func (c *column) setFrom(i int, src *column, j int) {
	if src.isNull(j) && src.typ.Storage() != model.StorageAny {
		c.setNull(i)
		return
	}
	if c.typ.Storage() == src.typ.Storage() {
		switch c.typ.Storage() {
		case model.StorageInt8:
			c.i8[i] = src.i8[j]
		case model.StorageInt16:
			c.i16[i] = src.i16[j]
		case model.StorageInt32:
			c.i32[i] = src.i32[j]
		case model.StorageInt64:
			c.i64[i] = src.i64[j]
		case model.StorageFloat32:
			c.f32[i] = src.f32[j]
		case model.StorageFloat64:
			c.f64[i] = src.f64[j]
		case model.StorageString:
			c.str[i] = src.str[j]
		case model.StorageBinary16:
			c.bin[i] = src.bin[j]
		case model.StorageAny:
			c.any[i] = src.any[j].Clone()
		case model.StorageDecimal:
			c.setDecimal(i, src.dec[j].Decimal)
		case model.StorageArray:
			c.arr[i] = src.arr[j].convert(c.typ.ElementType())
		}
		return
	}
	switch c.typ.Storage() {
	case model.StorageAny:
		c.any[i] = src.valueAt(j)
	case model.StorageDecimal:
		c.setDecimalFrom(i, src, j)
	case model.StorageArray:
		c.setArrayFrom(i, src, j)
	case model.StorageString:
		c.str[i] = src.stringAt(j)
	case model.StorageBinary16:
		c.bin[i] = src.binaryAt(j)
	case model.StorageFloat32, model.StorageFloat64:
		f, ok := src.float64At(j)
		if !ok {
			c.setNull(i)
			return
		}
		c.setFloat64(i, f)
	default:
		if src.typ.Storage() == model.StorageString {
			c.setString(i, src.str[j])
			return
		}
		n, ok := src.int64At(j)
		if !ok {
			c.setNull(i)
			return
		}
		c.setInt64(i, n)
	}
}

// valueAt returns element i as a new scalar. Any elements are cloned.
func (c *column) valueAt(i int) *Value {
	if c.typ.Storage() == model.StorageAny {
		if c.any[i] == nil {
			return NewVoid()
		}
		return c.any[i].Clone()
	}
	if c.typ.Storage() == model.StorageArray {
		if c.arr[i] == nil {
			return NewVoid()
		}
		return newVectorValue(model.FormVector, c.typ.ElementType(), c.arr[i].slice(0, c.arr[i].len()))
	}
	v := newVectorValue(model.FormScalar, c.typ, c.like(1, 1))
	v.vec.col.setFrom(0, c, i)
	return v
}

// appendFrom appends element j of src.
func (c *column) appendFrom(src *column, j int) {
	n := c.len()
	c.resize(n + 1)
	c.setFrom(n, src, j)
}

func (c *column) appendNull() {
	n := c.len()
	c.resize(n + 1)
	c.setNull(n)
}

// remove deletes element i and shifts the tail left.
func (c *column) remove(i int) {
	n := c.len()
	for j := i; j < n-1; j++ {
		c.move(j, j+1)
	}
	c.resize(n - 1)
}

// move copies element src over element dst within the same column.
func (c *column) move(dst, src int) {
	switch c.typ.Storage() {
	case model.StorageInt8:
		c.i8[dst] = c.i8[src]
	case model.StorageInt16:
		c.i16[dst] = c.i16[src]
	case model.StorageInt32:
		c.i32[dst] = c.i32[src]
	case model.StorageInt64:
		c.i64[dst] = c.i64[src]
	case model.StorageFloat32:
		c.f32[dst] = c.f32[src]
	case model.StorageFloat64:
		c.f64[dst] = c.f64[src]
	case model.StorageString:
		c.str[dst] = c.str[src]
	case model.StorageBinary16:
		c.bin[dst] = c.bin[src]
	case model.StorageAny:
		c.any[dst] = c.any[src]
	case model.StorageDecimal:
		c.dec[dst] = c.dec[src]
	case model.StorageArray:
		c.arr[dst] = c.arr[src]
	}
}

func (c *column) swap(i, j int) {
	switch c.typ.Storage() {
	case model.StorageInt8:
		c.i8[i], c.i8[j] = c.i8[j], c.i8[i]
	case model.StorageInt16:
		c.i16[i], c.i16[j] = c.i16[j], c.i16[i]
	case model.StorageInt32:
		c.i32[i], c.i32[j] = c.i32[j], c.i32[i]
	case model.StorageInt64:
		c.i64[i], c.i64[j] = c.i64[j], c.i64[i]
	case model.StorageFloat32:
		c.f32[i], c.f32[j] = c.f32[j], c.f32[i]
	case model.StorageFloat64:
		c.f64[i], c.f64[j] = c.f64[j], c.f64[i]
	case model.StorageString:
		c.str[i], c.str[j] = c.str[j], c.str[i]
	case model.StorageBinary16:
		c.bin[i], c.bin[j] = c.bin[j], c.bin[i]
	case model.StorageAny:
		c.any[i], c.any[j] = c.any[j], c.any[i]
	case model.StorageDecimal:
		c.dec[i], c.dec[j] = c.dec[j], c.dec[i]
	case model.StorageArray:
		c.arr[i], c.arr[j] = c.arr[j], c.arr[i]
	}
}

// slice returns a deep copy of [start, start+n).
func (c *column) slice(start, n int) *column {
	out := c.like(n, n)
	for i := 0; i < n; i++ {
		out.setFrom(i, c, start+i)
	}
	return out
}

// convert returns a deep copy of c with element type typ.
func (c *column) convert(typ model.Type) *column {
	n := c.len()
	out := newColumn(typ, n, n)
	if typ.Storage() == c.typ.Storage() {
		out.scale = c.scale
	}
	for i := 0; i < n; i++ {
		out.setFrom(i, c, i)
	}
	return out
}

func (c *column) equalAt(i int, o *column, j int) bool {
	if c.isNull(i) || o.isNull(j) {
		return c.isNull(i) && o.isNull(j)
	}
	return c.keyAt(i) == o.keyAt(j)
}
