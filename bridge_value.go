package ddbgo

import (
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
)

func withValue[T any](b *Bridge, op string, h Handle, fn func(v *value.Value) T) T {
	return guard(b, op, func() (T, error) {
		v, err := lookup[*value.Value](b, h, "VALUE")
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(v), nil
	})
}

// newValue stores the result of a constructor.
func (b *Bridge) newValue(op string, fn func() *value.Value) Handle {
	return guard(b, op, func() (Handle, error) {
		return b.putValue(fn())
	})
}

// derive stores a value obtained from the value behind h.
func (b *Bridge) derive(op string, h Handle, fn func(v *value.Value) *value.Value) Handle {
	return guard(b, op, func() (Handle, error) {
		v, err := lookup[*value.Value](b, h, "VALUE")
		if err != nil {
			return NilHandle, err
		}
		return b.putValue(fn(v))
	})
}

// values resolves a list of handles.
func (b *Bridge) values(hs []Handle) ([]*value.Value, error) {
	out := make([]*value.Value, len(hs))
	for i, h := range hs {
		v, err := lookup[*value.Value](b, h, "VALUE")
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// withTwo resolves two value handles.
func withTwo[T any](b *Bridge, op string, h, other Handle, fn func(v, o *value.Value) T) T {
	return guard(b, op, func() (T, error) {
		vs, err := b.values([]Handle{h, other})
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(vs[0], vs[1]), nil
	})
}

func (b *Bridge) ValueNewBool(x bool) Handle {
	return b.newValue("ValueNewBool", func() *value.Value { return value.NewBool(x) })
}

func (b *Bridge) ValueNewChar(x int8) Handle {
	return b.newValue("ValueNewChar", func() *value.Value { return value.NewChar(x) })
}

func (b *Bridge) ValueNewShort(x int16) Handle {
	return b.newValue("ValueNewShort", func() *value.Value { return value.NewShort(x) })
}

func (b *Bridge) ValueNewInt(x int32) Handle {
	return b.newValue("ValueNewInt", func() *value.Value { return value.NewInt(x) })
}

func (b *Bridge) ValueNewLong(x int64) Handle {
	return b.newValue("ValueNewLong", func() *value.Value { return value.NewLong(x) })
}

func (b *Bridge) ValueNewFloat(x float32) Handle {
	return b.newValue("ValueNewFloat", func() *value.Value { return value.NewFloat(x) })
}

func (b *Bridge) ValueNewDouble(x float64) Handle {
	return b.newValue("ValueNewDouble", func() *value.Value { return value.NewDouble(x) })
}

func (b *Bridge) ValueNewString(x string) Handle {
	return b.newValue("ValueNewString", func() *value.Value { return value.NewString(x) })
}

func (b *Bridge) ValueNewSymbol(x string) Handle {
	return b.newValue("ValueNewSymbol", func() *value.Value { return value.NewSymbol(x) })
}

func (b *Bridge) ValueNewBlob(x []byte) Handle {
	return b.newValue("ValueNewBlob", func() *value.Value { return value.NewBlob(x) })
}

// ValueNewBinary creates a UUID, IPADDR or INT128 scalar.
func (b *Bridge) ValueNewBinary(typ int, x [16]byte) Handle {
	return b.newValue("ValueNewBinary", func() *value.Value { return value.NewBinary(model.Type(typ), x) })
}

// ValueNewVoid creates the null-typed value.
func (b *Bridge) ValueNewVoid() Handle {
	return b.newValue("ValueNewVoid", value.NewVoid)
}

// ValueNewScalar creates a null scalar of the given type.
func (b *Bridge) ValueNewScalar(typ int) Handle {
	return b.newValue("ValueNewScalar", func() *value.Value { return value.NewScalar(model.Type(typ)) })
}

func (b *Bridge) ValueNewDate(y, m, d int) Handle {
	return b.newValue("ValueNewDate", func() *value.Value { return value.NewDate(y, m, d) })
}

func (b *Bridge) ValueNewMonth(y, m int) Handle {
	return b.newValue("ValueNewMonth", func() *value.Value { return value.NewMonth(y, m) })
}

func (b *Bridge) ValueNewTime(h, m, s, ms int) Handle {
	return b.newValue("ValueNewTime", func() *value.Value { return value.NewTime(h, m, s, ms) })
}

func (b *Bridge) ValueNewMinute(h, m int) Handle {
	return b.newValue("ValueNewMinute", func() *value.Value { return value.NewMinute(h, m) })
}

func (b *Bridge) ValueNewSecond(h, m, s int) Handle {
	return b.newValue("ValueNewSecond", func() *value.Value { return value.NewSecond(h, m, s) })
}

func (b *Bridge) ValueNewNanoTime(h, m, s, ns int) Handle {
	return b.newValue("ValueNewNanoTime", func() *value.Value { return value.NewNanoTime(h, m, s, ns) })
}

func (b *Bridge) ValueNewDateTime(y, mo, d, h, mi, s int) Handle {
	return b.newValue("ValueNewDateTime", func() *value.Value { return value.NewDateTime(y, mo, d, h, mi, s) })
}

func (b *Bridge) ValueNewDateHour(y, mo, d, h int) Handle {
	return b.newValue("ValueNewDateHour", func() *value.Value { return value.NewDateHour(y, mo, d, h) })
}

func (b *Bridge) ValueNewTimestamp(y, mo, d, h, mi, s, ms int) Handle {
	return b.newValue("ValueNewTimestamp", func() *value.Value { return value.NewTimestamp(y, mo, d, h, mi, s, ms) })
}

func (b *Bridge) ValueNewNanoTimestamp(y, mo, d, h, mi, s, ns int) Handle {
	return b.newValue("ValueNewNanoTimestamp", func() *value.Value { return value.NewNanoTimestamp(y, mo, d, h, mi, s, ns) })
}

// ValueParse parses text as a scalar of the given type.
func (b *Bridge) ValueParse(typ int, text string) Handle {
	return guard(b, "ValueParse", func() (Handle, error) {
		v, err := value.Parse(model.Type(typ), text)
		if err != nil {
			return NilHandle, err
		}
		return b.put(v), nil
	})
}

// ValueNewPair creates a pair from two scalars of the same type.
func (b *Bridge) ValueNewPair(first, second Handle) Handle {
	return guard(b, "ValueNewPair", func() (Handle, error) {
		vs, err := b.values([]Handle{first, second})
		if err != nil {
			return NilHandle, err
		}
		return b.putValue(value.NewPair(vs[0], vs[1]))
	})
}

// ValueForm returns the form code, or -1 for an invalid handle.
func (b *Bridge) ValueForm(h Handle) int {
	if v, err := lookup[*value.Value](b, h, "VALUE"); err == nil {
		return int(v.Form())
	}
	return -1
}

// ValueType returns the type code, or -1 for an invalid handle.
func (b *Bridge) ValueType(h Handle) int {
	if v, err := lookup[*value.Value](b, h, "VALUE"); err == nil {
		return int(v.Type())
	}
	return -1
}

func (b *Bridge) ValueCategory(h Handle) int {
	return withValue(b, "ValueCategory", h, func(v *value.Value) int { return int(v.Category()) })
}

func (b *Bridge) ValueSize(h Handle) int {
	return withValue(b, "ValueSize", h, (*value.Value).Size)
}

func (b *Bridge) ValueIsScalar(h Handle) bool {
	return withValue(b, "ValueIsScalar", h, (*value.Value).IsScalar)
}

func (b *Bridge) ValueIsPair(h Handle) bool {
	return withValue(b, "ValueIsPair", h, (*value.Value).IsPair)
}

func (b *Bridge) ValueIsVector(h Handle) bool {
	return withValue(b, "ValueIsVector", h, (*value.Value).IsVector)
}

func (b *Bridge) ValueIsMatrix(h Handle) bool {
	return withValue(b, "ValueIsMatrix", h, (*value.Value).IsMatrix)
}

func (b *Bridge) ValueIsSet(h Handle) bool {
	return withValue(b, "ValueIsSet", h, (*value.Value).IsSet)
}

func (b *Bridge) ValueIsDictionary(h Handle) bool {
	return withValue(b, "ValueIsDictionary", h, (*value.Value).IsDictionary)
}

func (b *Bridge) ValueIsTable(h Handle) bool {
	return withValue(b, "ValueIsTable", h, (*value.Value).IsTable)
}

func (b *Bridge) ValueGetBool(h Handle) bool {
	return withValue(b, "ValueGetBool", h, (*value.Value).Bool)
}

func (b *Bridge) ValueGetChar(h Handle) int8 {
	return withValue(b, "ValueGetChar", h, (*value.Value).Char)
}

func (b *Bridge) ValueGetShort(h Handle) int16 {
	return withValue(b, "ValueGetShort", h, (*value.Value).Short)
}

func (b *Bridge) ValueGetInt(h Handle) int32 {
	return withValue(b, "ValueGetInt", h, (*value.Value).Int)
}

func (b *Bridge) ValueGetLong(h Handle) int64 {
	return withValue(b, "ValueGetLong", h, (*value.Value).Long)
}

func (b *Bridge) ValueGetIndex(h Handle) int {
	return withValue(b, "ValueGetIndex", h, (*value.Value).Index)
}

func (b *Bridge) ValueGetFloat(h Handle) float32 {
	return withValue(b, "ValueGetFloat", h, (*value.Value).Float)
}

func (b *Bridge) ValueGetDouble(h Handle) float64 {
	return withValue(b, "ValueGetDouble", h, (*value.Value).Double)
}

// ValueGetString renders the value as text.
func (b *Bridge) ValueGetString(h Handle) string {
	return withValue(b, "ValueGetString", h, (*value.Value).String)
}

func (b *Bridge) ValueGetBinary(h Handle) [16]byte {
	return withValue(b, "ValueGetBinary", h, (*value.Value).Binary)
}

func (b *Bridge) ValueGetBoolAt(h Handle, i int) bool {
	return withValue(b, "ValueGetBoolAt", h, func(v *value.Value) bool { return v.BoolAt(i) })
}

func (b *Bridge) ValueGetCharAt(h Handle, i int) int8 {
	return withValue(b, "ValueGetCharAt", h, func(v *value.Value) int8 { return v.CharAt(i) })
}

func (b *Bridge) ValueGetShortAt(h Handle, i int) int16 {
	return withValue(b, "ValueGetShortAt", h, func(v *value.Value) int16 { return v.ShortAt(i) })
}

func (b *Bridge) ValueGetIntAt(h Handle, i int) int32 {
	return withValue(b, "ValueGetIntAt", h, func(v *value.Value) int32 { return v.IntAt(i) })
}

func (b *Bridge) ValueGetLongAt(h Handle, i int) int64 {
	return withValue(b, "ValueGetLongAt", h, func(v *value.Value) int64 { return v.LongAt(i) })
}

func (b *Bridge) ValueGetFloatAt(h Handle, i int) float32 {
	return withValue(b, "ValueGetFloatAt", h, func(v *value.Value) float32 { return v.FloatAt(i) })
}

func (b *Bridge) ValueGetDoubleAt(h Handle, i int) float64 {
	return withValue(b, "ValueGetDoubleAt", h, func(v *value.Value) float64 { return v.DoubleAt(i) })
}

func (b *Bridge) ValueGetStringAt(h Handle, i int) string {
	return withValue(b, "ValueGetStringAt", h, func(v *value.Value) string { return v.StringAt(i) })
}

func (b *Bridge) ValueGetBinaryAt(h Handle, i int) [16]byte {
	return withValue(b, "ValueGetBinaryAt", h, func(v *value.Value) [16]byte { return v.BinaryAt(i) })
}

// ValueGet returns element i as a new handle. Elements of ANY vectors are
// returned aliased.
func (b *Bridge) ValueGet(h Handle, i int) Handle {
	return b.derive("ValueGet", h, func(v *value.Value) *value.Value { return v.Get(i) })
}

func (b *Bridge) ValueSetBool(h Handle, x bool) bool {
	return withValue(b, "ValueSetBool", h, func(v *value.Value) bool { return v.SetBoolAt(0, x) })
}

func (b *Bridge) ValueSetChar(h Handle, x int8) bool {
	return withValue(b, "ValueSetChar", h, func(v *value.Value) bool { return v.SetCharAt(0, x) })
}

func (b *Bridge) ValueSetShort(h Handle, x int16) bool {
	return withValue(b, "ValueSetShort", h, func(v *value.Value) bool { return v.SetShortAt(0, x) })
}

func (b *Bridge) ValueSetInt(h Handle, x int32) bool {
	return withValue(b, "ValueSetInt", h, func(v *value.Value) bool { return v.SetIntAt(0, x) })
}

func (b *Bridge) ValueSetLong(h Handle, x int64) bool {
	return withValue(b, "ValueSetLong", h, func(v *value.Value) bool { return v.SetLongAt(0, x) })
}

func (b *Bridge) ValueSetFloat(h Handle, x float32) bool {
	return withValue(b, "ValueSetFloat", h, func(v *value.Value) bool { return v.SetFloatAt(0, x) })
}

func (b *Bridge) ValueSetDouble(h Handle, x float64) bool {
	return withValue(b, "ValueSetDouble", h, func(v *value.Value) bool { return v.SetDoubleAt(0, x) })
}

func (b *Bridge) ValueSetString(h Handle, x string) bool {
	return withValue(b, "ValueSetString", h, func(v *value.Value) bool { return v.SetStringAt(0, x) })
}

func (b *Bridge) ValueSetBinary(h Handle, x [16]byte) bool {
	return withValue(b, "ValueSetBinary", h, func(v *value.Value) bool { return v.SetBinaryAt(0, x) })
}

func (b *Bridge) ValueSetBoolAt(h Handle, i int, x bool) bool {
	return withValue(b, "ValueSetBoolAt", h, func(v *value.Value) bool { return v.SetBoolAt(i, x) })
}

func (b *Bridge) ValueSetCharAt(h Handle, i int, x int8) bool {
	return withValue(b, "ValueSetCharAt", h, func(v *value.Value) bool { return v.SetCharAt(i, x) })
}

func (b *Bridge) ValueSetShortAt(h Handle, i int, x int16) bool {
	return withValue(b, "ValueSetShortAt", h, func(v *value.Value) bool { return v.SetShortAt(i, x) })
}

func (b *Bridge) ValueSetIntAt(h Handle, i int, x int32) bool {
	return withValue(b, "ValueSetIntAt", h, func(v *value.Value) bool { return v.SetIntAt(i, x) })
}

func (b *Bridge) ValueSetLongAt(h Handle, i int, x int64) bool {
	return withValue(b, "ValueSetLongAt", h, func(v *value.Value) bool { return v.SetLongAt(i, x) })
}

func (b *Bridge) ValueSetFloatAt(h Handle, i int, x float32) bool {
	return withValue(b, "ValueSetFloatAt", h, func(v *value.Value) bool { return v.SetFloatAt(i, x) })
}

func (b *Bridge) ValueSetDoubleAt(h Handle, i int, x float64) bool {
	return withValue(b, "ValueSetDoubleAt", h, func(v *value.Value) bool { return v.SetDoubleAt(i, x) })
}

func (b *Bridge) ValueSetStringAt(h Handle, i int, x string) bool {
	return withValue(b, "ValueSetStringAt", h, func(v *value.Value) bool { return v.SetStringAt(i, x) })
}

func (b *Bridge) ValueSetBinaryAt(h Handle, i int, x [16]byte) bool {
	return withValue(b, "ValueSetBinaryAt", h, func(v *value.Value) bool { return v.SetBinaryAt(i, x) })
}

// ValueSetAt stores the scalar behind elem at index i.
func (b *Bridge) ValueSetAt(h Handle, i int, elem Handle) bool {
	return withTwo(b, "ValueSetAt", h, elem, func(v, e *value.Value) bool { return v.SetAt(i, e) })
}

// ValueSetBoolSlice writes buf starting at start. It fails if start+len(buf)
// exceeds the capacity.
func (b *Bridge) ValueSetBoolSlice(h Handle, start int, buf []bool) bool {
	return withValue(b, "ValueSetBoolSlice", h, func(v *value.Value) bool { return v.SetBoolSlice(start, buf) })
}

func (b *Bridge) ValueSetCharSlice(h Handle, start int, buf []int8) bool {
	return withValue(b, "ValueSetCharSlice", h, func(v *value.Value) bool { return v.SetCharSlice(start, buf) })
}

func (b *Bridge) ValueSetShortSlice(h Handle, start int, buf []int16) bool {
	return withValue(b, "ValueSetShortSlice", h, func(v *value.Value) bool { return v.SetShortSlice(start, buf) })
}

func (b *Bridge) ValueSetIntSlice(h Handle, start int, buf []int32) bool {
	return withValue(b, "ValueSetIntSlice", h, func(v *value.Value) bool { return v.SetIntSlice(start, buf) })
}

func (b *Bridge) ValueSetLongSlice(h Handle, start int, buf []int64) bool {
	return withValue(b, "ValueSetLongSlice", h, func(v *value.Value) bool { return v.SetLongSlice(start, buf) })
}

func (b *Bridge) ValueSetFloatSlice(h Handle, start int, buf []float32) bool {
	return withValue(b, "ValueSetFloatSlice", h, func(v *value.Value) bool { return v.SetFloatSlice(start, buf) })
}

func (b *Bridge) ValueSetDoubleSlice(h Handle, start int, buf []float64) bool {
	return withValue(b, "ValueSetDoubleSlice", h, func(v *value.Value) bool { return v.SetDoubleSlice(start, buf) })
}

func (b *Bridge) ValueSetStringSlice(h Handle, start int, buf []string) bool {
	return withValue(b, "ValueSetStringSlice", h, func(v *value.Value) bool { return v.SetStringSlice(start, buf) })
}

func (b *Bridge) ValueSetBinarySlice(h Handle, start int, buf [][16]byte) bool {
	return withValue(b, "ValueSetBinarySlice", h, func(v *value.Value) bool { return v.SetBinarySlice(start, buf) })
}

func (b *Bridge) ValueIsNull(h Handle) bool {
	return withValue(b, "ValueIsNull", h, (*value.Value).IsNull)
}

func (b *Bridge) ValueIsNullAt(h Handle, i int) bool {
	return withValue(b, "ValueIsNullAt", h, func(v *value.Value) bool { return v.IsNullAt(i) })
}

func (b *Bridge) ValueSetNull(h Handle) bool {
	return withValue(b, "ValueSetNull", h, func(v *value.Value) bool { return v.SetNullAt(0) })
}

func (b *Bridge) ValueSetNullAt(h Handle, i int) bool {
	return withValue(b, "ValueSetNullAt", h, func(v *value.Value) bool { return v.SetNullAt(i) })
}

// ValueHash hashes the value into [0, buckets). It returns -1 when buckets
// is not positive.
func (b *Bridge) ValueHash(h Handle, buckets int) int {
	return withValue(b, "ValueHash", h, func(v *value.Value) int { return v.Hash(buckets) })
}

func (b *Bridge) ValueHashAt(h Handle, i, buckets int) int {
	return withValue(b, "ValueHashAt", h, func(v *value.Value) int { return v.HashAt(i, buckets) })
}

// ValueHashSlice hashes len(out) elements starting at start.
func (b *Bridge) ValueHashSlice(h Handle, start, buckets int, out []int32) bool {
	return withValue(b, "ValueHashSlice", h, func(v *value.Value) bool { return v.HashSlice(start, buckets, out) })
}

// ValueScript renders the value as a script literal.
func (b *Bridge) ValueScript(h Handle) string {
	return withValue(b, "ValueScript", h, (*value.Value).Script)
}

// ValueClone returns a deep copy that shares no storage with h.
func (b *Bridge) ValueClone(h Handle) Handle {
	return b.derive("ValueClone", h, (*value.Value).Clone)
}

func (b *Bridge) ValueEqual(h, other Handle) bool {
	return withTwo(b, "ValueEqual", h, other, (*value.Value).Equal)
}

// ValueKeys returns the members of a set, the keys of a dictionary or the
// column names of a table.
func (b *Bridge) ValueKeys(h Handle) Handle {
	return b.derive("ValueKeys", h, (*value.Value).Keys)
}

// ValueValues returns the values of a dictionary or the columns of a table.
func (b *Bridge) ValueValues(h Handle) Handle {
	return b.derive("ValueValues", h, (*value.Value).Values)
}

// EpochMillis returns the current time in milliseconds since the epoch.
func (b *Bridge) EpochMillis() int64 {
	return value.EpochMillis()
}
