package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/hupe1980/ddbgo/internal/hash"
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
	"github.com/shopspring/decimal"
)

const (
	frameMagic   = 0x56424444 // "DDBV"
	frameVersion = 1

	// frameHeaderSize covers [magic u32][version u8][crc32c u32].
	frameHeaderSize = 9

	// maxElements bounds decoded lengths of zero-width (VOID) vectors.
	maxElements = 1 << 31
)

// ErrUnsupported is returned for values the binary codec cannot carry.
var ErrUnsupported = errors.New("codec: unsupported value")

// Encode serializes v into a self-describing frame.
//
// Frame format:
//
//	Magic (4 bytes)
//	Version (1 byte)
//	Checksum (4 bytes) - CRC32C of the block
//	Block:
//	  Compression (1 byte)
//	  RawSize (4 bytes)
//	  StoredSize (4 bytes) - 0 when stored raw
//	  Payload (value tree)
func Encode(v *value.Value, c Compression) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: nil value", ErrUnsupported)
	}
	w := &writer{buf: make([]byte, 0, 64)}
	w.value(v)
	if w.err != nil {
		return nil, w.err
	}

	block, err := compress(w.buf, c)
	if err != nil {
		return nil, err
	}

	out := make([]byte, frameHeaderSize+len(block))
	binary.LittleEndian.PutUint32(out[0:], frameMagic)
	out[4] = frameVersion
	binary.LittleEndian.PutUint32(out[5:], hash.CRC32C(block))
	copy(out[frameHeaderSize:], block)
	return out, nil
}

// Decode parses a frame produced by Encode.
func Decode(data []byte) (*value.Value, error) {
	if len(data) < frameHeaderSize {
		return nil, fmt.Errorf("%w: frame too small", ErrCorrupt)
	}
	if binary.LittleEndian.Uint32(data[0:]) != frameMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if data[4] != frameVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, data[4])
	}
	block := data[frameHeaderSize:]
	if hash.CRC32C(block) != binary.LittleEndian.Uint32(data[5:]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	payload, err := decompress(block)
	if err != nil {
		return nil, err
	}

	r := &reader{buf: payload}
	v := r.value()
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(r.buf) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(r.buf)-r.off)
	}
	return v, nil
}

type writer struct {
	buf []byte
	err error
}

func (w *writer) u8(b byte) { w.buf = append(w.buf, b) }

func (w *writer) u16(n uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, n) }

func (w *writer) u32(n uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, n) }

func (w *writer) u64(n uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, n) }

func (w *writer) uvarint(n int) { w.buf = binary.AppendUvarint(w.buf, uint64(n)) }

func (w *writer) string(s string) {
	w.uvarint(len(s))
	w.buf = append(w.buf, s...)
}

func (w *writer) value(v *value.Value) {
	if w.err != nil {
		return
	}
	w.u8(byte(v.Form()))
	w.u8(byte(v.Type()))
	if v.Type().Category() == model.CategoryDenary && v.Form() <= model.FormMatrix {
		w.u8(byte(v.Scale()))
	}

	switch v.Form() {
	case model.FormScalar:
		w.elements(v, 1)
	case model.FormPair:
		w.elements(v, 2)
	case model.FormVector:
		w.string(v.AsVector().Name())
		w.uvarint(v.Size())
		w.elements(v, v.Size())
	case model.FormMatrix:
		m := v.AsMatrix()
		w.uvarint(m.Columns())
		w.uvarint(m.Rows())
		w.elements(v, m.Columns()*m.Rows())
		w.label(m.RowLabel())
		w.label(m.ColumnLabel())
	case model.FormSet:
		w.value(v.Keys())
	case model.FormDictionary:
		d := v.AsDictionary()
		w.u8(byte(d.ValueType()))
		w.value(d.Keys())
		w.value(d.Values())
	case model.FormTable:
		t := v.AsTable()
		w.string(t.Name())
		w.uvarint(t.Columns())
		for i := 0; i < t.Columns(); i++ {
			w.string(t.ColumnName(i))
			w.value(t.Column(i).Value)
		}
	default:
		w.err = fmt.Errorf("%w: form %s", ErrUnsupported, v.Form())
	}
}

func (w *writer) label(l *value.Value) {
	if l == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.value(l)
}

func (w *writer) elements(v *value.Value, n int) {
	switch v.Type().Storage() {
	case model.StorageInt8:
		for i := 0; i < n; i++ {
			w.u8(byte(v.CharAt(i)))
		}
	case model.StorageInt16:
		for i := 0; i < n; i++ {
			w.u16(uint16(v.ShortAt(i)))
		}
	case model.StorageInt32:
		for i := 0; i < n; i++ {
			w.u32(uint32(v.IntAt(i)))
		}
	case model.StorageInt64:
		for i := 0; i < n; i++ {
			w.u64(uint64(v.LongAt(i)))
		}
	case model.StorageFloat32:
		for i := 0; i < n; i++ {
			w.u32(math.Float32bits(v.FloatAt(i)))
		}
	case model.StorageFloat64:
		for i := 0; i < n; i++ {
			w.u64(math.Float64bits(v.DoubleAt(i)))
		}
	case model.StorageString:
		for i := 0; i < n; i++ {
			w.string(v.StringAt(i))
		}
	case model.StorageBinary16:
		for i := 0; i < n; i++ {
			b := v.BinaryAt(i)
			w.buf = append(w.buf, b[:]...)
		}
	case model.StorageAny, model.StorageArray:
		for i := 0; i < n; i++ {
			w.value(v.Get(i))
		}
	case model.StorageDecimal:
		w.decimals(v, n)
	}
}

// decimals writes fixed-width unscaled integers; the minimum value of the
// width marks null.
func (w *writer) decimals(v *value.Value, n int) {
	scale := int32(v.Scale())
	width := v.Type().UnitLength()
	for i := 0; i < n; i++ {
		d, ok := v.DecimalAt(i)
		if !ok {
			switch width {
			case 4:
				w.u32(uint32(math.MaxInt32) + 1)
			case 8:
				w.u64(uint64(math.MaxInt64) + 1)
			default:
				w.u64(0)
				w.u64(1 << 63)
			}
			continue
		}
		unscaled := d.Shift(scale).BigInt()
		switch width {
		case 4:
			w.u32(uint32(int32(unscaled.Int64())))
		case 8:
			w.u64(uint64(unscaled.Int64()))
		default:
			if unscaled.Sign() < 0 {
				unscaled.Add(unscaled, twoTo128)
			}
			lo := new(big.Int).And(unscaled, maxUint64).Uint64()
			hi := new(big.Int).Rsh(unscaled, 64).Uint64()
			w.u64(lo)
			w.u64(hi)
		}
	}
}

var (
	maxUint64 = new(big.Int).SetUint64(math.MaxUint64)
	twoTo128  = new(big.Int).Lsh(big.NewInt(1), 128)
)

type reader struct {
	buf []byte
	off int
	err error

	// scale of the decimal value being read.
	scale int
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: "+format, append([]any{ErrCorrupt}, args...)...)
	}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.fail("unexpected end of payload")
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() byte {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (r *reader) u16() uint16 {
	if b := r.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (r *reader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (r *reader) u64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (r *reader) uvarint() int {
	if r.err != nil {
		return 0
	}
	n, k := binary.Uvarint(r.buf[r.off:])
	if k <= 0 || n > maxElements {
		r.fail("bad length")
		return 0
	}
	r.off += k
	return int(n)
}

func (r *reader) string() string {
	return string(r.take(r.uvarint()))
}

// count reads an element count and checks it against the remaining payload.
func (r *reader) count(typ model.Type) int {
	n := r.uvarint()
	if width := typ.UnitLength(); width > 0 && n*width > len(r.buf)-r.off {
		r.fail("%d elements exceed payload", n)
		return 0
	}
	return n
}

func (r *reader) value() *value.Value {
	if r.err != nil {
		return nil
	}
	form := model.Form(r.u8())
	typ := model.Type(r.u8())
	if !form.Valid() || !typ.Valid() {
		r.fail("bad form %d or type %d", form, typ)
		return nil
	}
	r.scale = 0
	if typ.Category() == model.CategoryDenary && form <= model.FormMatrix {
		r.scale = int(r.u8())
		if r.scale > typ.MaxScale() {
			r.fail("scale %d out of range for %s", r.scale, typ)
			return nil
		}
	}
	v := r.form(form, typ)
	if v != nil && typ.Category() == model.CategoryDenary && form <= model.FormMatrix {
		v.SetScale(r.scale)
	}
	return v
}

func (r *reader) form(form model.Form, typ model.Type) *value.Value {
	switch form {
	case model.FormScalar:
		if typ == model.TypeVoid {
			return value.NewVoid()
		}
		v := value.NewScalar(typ)
		r.elements(v, 1)
		return v
	case model.FormPair:
		tmp := value.NewVector(typ, 2, 2)
		r.elements(tmp.Value, 2)
		return value.NewPair(tmp.Get(0), tmp.Get(1))
	case model.FormVector:
		name := r.string()
		n := r.count(typ)
		v := value.NewVector(typ, n, n)
		v.SetName(name)
		r.elements(v.Value, n)
		return v.Value
	case model.FormMatrix:
		cols, rows := r.uvarint(), r.uvarint()
		if width := typ.UnitLength(); width > 0 && cols*rows*width > len(r.buf)-r.off {
			r.fail("matrix %dx%d exceeds payload", cols, rows)
			return nil
		}
		m := value.NewMatrix(typ, cols, rows)
		r.elements(m.Value, cols*rows)
		if r.u8() == 1 {
			m.SetRowLabel(r.value())
		}
		if r.u8() == 1 {
			m.SetColumnLabel(r.value())
		}
		return m.Value
	case model.FormSet:
		keys := r.value()
		if r.err != nil {
			return nil
		}
		s := value.NewSet(typ, keys.Size())
		s.Append(keys)
		return s.Value
	case model.FormDictionary:
		valType := model.Type(r.u8())
		keys, vals := r.value(), r.value()
		if r.err != nil {
			return nil
		}
		if !valType.Valid() || keys.Size() != vals.Size() {
			r.fail("bad dictionary")
			return nil
		}
		d := value.NewDictionary(typ, valType)
		if d == nil {
			r.fail("bad dictionary key type %s", typ)
			return nil
		}
		for i := 0; i < keys.Size(); i++ {
			d.Set(keys.Get(i), vals.Get(i))
		}
		return d.Value
	case model.FormTable:
		name := r.string()
		n := r.uvarint()
		if n > len(r.buf)-r.off {
			r.fail("%d columns exceed payload", n)
			return nil
		}
		names := make([]string, n)
		cols := make([]*value.Value, n)
		for i := 0; i < n && r.err == nil; i++ {
			names[i] = r.string()
			cols[i] = r.value()
		}
		if r.err != nil {
			return nil
		}
		t, err := value.NewTable(names, cols)
		if err != nil {
			r.fail("%v", err)
			return nil
		}
		t.SetName(name)
		return t.Value
	}
	return nil
}

func (r *reader) elements(v *value.Value, n int) {
	if r.err != nil || n == 0 {
		return
	}
	switch v.Type().Storage() {
	case model.StorageInt8:
		buf := make([]int8, n)
		for i := range buf {
			buf[i] = int8(r.u8())
		}
		v.SetCharSlice(0, buf)
	case model.StorageInt16:
		buf := make([]int16, n)
		for i := range buf {
			buf[i] = int16(r.u16())
		}
		v.SetShortSlice(0, buf)
	case model.StorageInt32:
		buf := make([]int32, n)
		for i := range buf {
			buf[i] = int32(r.u32())
		}
		v.SetIntSlice(0, buf)
	case model.StorageInt64:
		buf := make([]int64, n)
		for i := range buf {
			buf[i] = int64(r.u64())
		}
		v.SetLongSlice(0, buf)
	case model.StorageFloat32:
		buf := make([]float32, n)
		for i := range buf {
			buf[i] = math.Float32frombits(r.u32())
		}
		v.SetFloatSlice(0, buf)
	case model.StorageFloat64:
		buf := make([]float64, n)
		for i := range buf {
			buf[i] = math.Float64frombits(r.u64())
		}
		v.SetDoubleSlice(0, buf)
	case model.StorageString:
		buf := make([]string, n)
		for i := range buf {
			buf[i] = r.string()
		}
		v.SetStringSlice(0, buf)
	case model.StorageBinary16:
		buf := make([][16]byte, n)
		for i := range buf {
			copy(buf[i][:], r.take(16))
		}
		v.SetBinarySlice(0, buf)
	case model.StorageAny, model.StorageArray:
		for i := 0; i < n && r.err == nil; i++ {
			if e := r.value(); e != nil {
				v.SetAt(i, e)
			}
		}
	case model.StorageDecimal:
		r.decimals(v, n)
	}
}

func (r *reader) decimals(v *value.Value, n int) {
	exp := -int32(r.scale)
	width := v.Type().UnitLength()
	for i := 0; i < n && r.err == nil; i++ {
		var d decimal.Decimal
		switch width {
		case 4:
			u := int32(r.u32())
			if u == math.MinInt32 {
				v.SetNullAt(i)
				continue
			}
			d = decimal.New(int64(u), exp)
		case 8:
			u := int64(r.u64())
			if u == math.MinInt64 {
				v.SetNullAt(i)
				continue
			}
			d = decimal.New(u, exp)
		default:
			lo, hi := r.u64(), r.u64()
			if hi == 1<<63 && lo == 0 {
				v.SetNullAt(i)
				continue
			}
			unscaled := new(big.Int).SetUint64(hi)
			unscaled.Lsh(unscaled, 64).Or(unscaled, new(big.Int).SetUint64(lo))
			if hi>>63 == 1 {
				unscaled.Sub(unscaled, twoTo128)
			}
			d = decimal.NewFromBigInt(unscaled, exp)
		}
		v.SetDecimalAt(i, d)
	}
}
