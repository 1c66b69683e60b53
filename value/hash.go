package value

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/ddbgo/internal/hash"
	"github.com/hupe1980/ddbgo/model"
)

// elemKey is the canonical, comparable identity of one element. Two elements
// of the same key type are equal iff their keys are equal.
type elemKey struct {
	n int64
	s string
	b [16]byte
}

func (c *column) keyAt(i int) elemKey {
	switch c.typ.Storage() {
	case model.StorageInt8:
		return elemKey{n: int64(c.i8[i])}
	case model.StorageInt16:
		return elemKey{n: int64(c.i16[i])}
	case model.StorageInt32:
		return elemKey{n: int64(c.i32[i])}
	case model.StorageInt64:
		return elemKey{n: c.i64[i]}
	case model.StorageFloat32:
		return elemKey{n: int64(math.Float64bits(float64(c.f32[i])))}
	case model.StorageFloat64:
		return elemKey{n: int64(math.Float64bits(c.f64[i]))}
	case model.StorageString:
		return elemKey{s: c.str[i]}
	case model.StorageBinary16:
		return elemKey{b: c.bin[i]}
	case model.StorageAny:
		if c.any[i] == nil {
			return elemKey{}
		}
		return elemKey{n: int64(c.any[i].typ), s: c.any[i].Script()}
	case model.StorageDecimal:
		if !c.dec[i].Valid {
			return elemKey{}
		}
		return elemKey{n: 1, s: c.dec[i].Decimal.String()}
	case model.StorageArray:
		if c.arr[i] == nil {
			return elemKey{}
		}
		return elemKey{n: 1, s: c.arr[i].render()}
	default:
		return elemKey{}
	}
}

// keyOf returns the key element j of src would have once converted to typ.
func keyOf(typ model.Type, src *column, j int) elemKey {
	if src.typ.Storage() == typ.Storage() {
		return src.keyAt(j)
	}
	tmp := newColumn(typ, 1, 1)
	tmp.setFrom(0, src, j)
	return tmp.keyAt(0)
}

// hashAt buckets element i. Nulls land in bucket 0.
func (c *column) hashAt(i, buckets int) int {
	if buckets <= 0 {
		return -1
	}
	if c.isNull(i) {
		return 0
	}
	var buf [8]byte
	switch c.typ.Storage() {
	case model.StorageInt8, model.StorageInt16, model.StorageInt32, model.StorageInt64:
		n, _ := c.int64At(i)
		return hash.BucketInt(n, buckets)
	case model.StorageFloat32, model.StorageFloat64:
		f, _ := c.float64At(i)
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		return hash.Bucket(buf[:], buckets)
	case model.StorageString:
		return hash.Bucket([]byte(c.str[i]), buckets)
	case model.StorageBinary16:
		return hash.Bucket(c.bin[i][:], buckets)
	case model.StorageAny:
		return hash.Bucket([]byte(c.any[i].Script()), buckets)
	case model.StorageDecimal:
		return hash.Bucket([]byte(c.dec[i].Decimal.String()), buckets)
	case model.StorageArray:
		return hash.Bucket([]byte(c.arr[i].render()), buckets)
	default:
		return 0
	}
}

// Hash returns the bucket of a scalar value, or of the first element of a
// vector. It is -1 when buckets <= 0 or the value has no elements.
func (v *Value) Hash(buckets int) int {
	return v.HashAt(0, buckets)
}

// HashAt returns the bucket of element i.
func (v *Value) HashAt(i, buckets int) int {
	if v.vec == nil {
		if v.form == model.FormSet || v.form == model.FormDictionary || v.form == model.FormTable {
			return hash.Bucket([]byte(v.Script()), buckets)
		}
		return -1
	}
	col, j, ok := v.vec.locate(i)
	if !ok {
		return -1
	}
	return col.hashAt(j, buckets)
}

// HashSlice writes the buckets of elements [start, start+len(out)) to out.
// It returns false if the range is out of bounds or buckets <= 0.
func (v *Value) HashSlice(start, buckets int, out []int32) bool {
	if v.vec == nil || buckets <= 0 || start < 0 || start+len(out) > v.Size() {
		return false
	}
	for k := range out {
		col, j, _ := v.vec.locate(start + k)
		out[k] = int32(col.hashAt(j, buckets))
	}
	return true
}
