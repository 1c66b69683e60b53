// Package arrowconv converts tables to and from Apache Arrow records.
//
// Every logical type maps to the closest Arrow type (DATE to date32,
// TIMESTAMP to timestamp[ms], UUID to fixed_size_binary[16], ...). Types
// without an exact Arrow counterpart (SYMBOL, MONTH, MINUTE, DATEHOUR, ...)
// travel as their storage type; the logical type is kept in the field
// metadata under TypeKey so a round trip is lossless. Decimals map to
// decimal128 at the column's scale and array vectors to list columns.
package arrowconv

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
	"github.com/shopspring/decimal"
)

// TypeKey is the field metadata key holding the logical type name.
const TypeKey = "ddbgo.type"

// ErrUnsupported is returned for columns that cannot be converted.
var ErrUnsupported = errors.New("arrowconv: unsupported column type")

var binary16 = &arrow.FixedSizeBinaryType{ByteWidth: 16}

// DataType returns the Arrow type used for a logical type.
func DataType(typ model.Type) (arrow.DataType, error) {
	switch typ {
	case model.TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case model.TypeChar:
		return arrow.PrimitiveTypes.Int8, nil
	case model.TypeShort:
		return arrow.PrimitiveTypes.Int16, nil
	case model.TypeInt, model.TypeMonth, model.TypeMinute, model.TypeDateHour:
		return arrow.PrimitiveTypes.Int32, nil
	case model.TypeLong:
		return arrow.PrimitiveTypes.Int64, nil
	case model.TypeDate:
		return arrow.FixedWidthTypes.Date32, nil
	case model.TypeTime:
		return arrow.FixedWidthTypes.Time32ms, nil
	case model.TypeSecond:
		return arrow.FixedWidthTypes.Time32s, nil
	case model.TypeNanoTime:
		return arrow.FixedWidthTypes.Time64ns, nil
	case model.TypeDateTime:
		return arrow.FixedWidthTypes.Timestamp_s, nil
	case model.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ms, nil
	case model.TypeNanoTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ns, nil
	case model.TypeFloat:
		return arrow.PrimitiveTypes.Float32, nil
	case model.TypeDouble:
		return arrow.PrimitiveTypes.Float64, nil
	case model.TypeString, model.TypeSymbol:
		return arrow.BinaryTypes.String, nil
	case model.TypeBlob:
		return arrow.BinaryTypes.Binary, nil
	case model.TypeUUID, model.TypeIPAddr, model.TypeInt128:
		return binary16, nil
	case model.TypeDecimal32, model.TypeDecimal64, model.TypeDecimal128:
		return &arrow.Decimal128Type{Precision: int32(typ.MaxScale())}, nil
	}
	if typ.IsArray() {
		elem, err := DataType(typ.ElementType())
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elem), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, typ)
}

// columnType is DataType with the scale of a decimal column filled in.
func columnType(v *value.Vector) (arrow.DataType, error) {
	dt, err := DataType(v.Type())
	if err != nil {
		return nil, err
	}
	if d, ok := dt.(*arrow.Decimal128Type); ok {
		d.Scale = int32(v.Scale())
	}
	return dt, nil
}

// Schema returns the Arrow schema of t.
func Schema(t *value.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, t.Columns())
	for i := range fields {
		typ := t.ColumnType(i)
		dt, err := columnType(t.Column(i))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", t.ColumnName(i), err)
		}
		fields[i] = arrow.Field{
			Name:     t.ColumnName(i),
			Type:     dt,
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{TypeKey}, []string{typ.String()}),
		}
	}
	var md *arrow.Metadata
	if t.Name() != "" {
		m := arrow.NewMetadata([]string{"name"}, []string{t.Name()})
		md = &m
	}
	return arrow.NewSchema(fields, md), nil
}

// ToRecord exports t. The caller must Release the record.
// A nil allocator uses memory.DefaultAllocator.
func ToRecord(t *value.Table, alloc memory.Allocator) (arrow.Record, error) {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	schema, err := Schema(t)
	if err != nil {
		return nil, err
	}

	cols := make([]arrow.Array, t.Columns())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i := range cols {
		if cols[i], err = exportColumn(t.Column(i), schema.Field(i).Type, alloc); err != nil {
			return nil, fmt.Errorf("column %s: %w", t.ColumnName(i), err)
		}
	}
	return array.NewRecord(schema, cols, int64(t.Rows())), nil
}

func exportColumn(v *value.Vector, dt arrow.DataType, alloc memory.Allocator) (arrow.Array, error) {
	b := array.NewBuilder(alloc, dt)
	defer b.Release()
	if err := appendColumn(b, v); err != nil {
		return nil, err
	}
	return b.NewArray(), nil
}

func appendColumn(b array.Builder, v *value.Vector) error {
	n := v.Len()
	b.Reserve(n)

	for i := 0; i < n; i++ {
		if v.IsNullAt(i) {
			b.AppendNull()
			continue
		}
		switch b := b.(type) {
		case *array.BooleanBuilder:
			b.Append(v.BoolAt(i))
		case *array.Int8Builder:
			b.Append(v.CharAt(i))
		case *array.Int16Builder:
			b.Append(v.ShortAt(i))
		case *array.Int32Builder:
			b.Append(v.IntAt(i))
		case *array.Int64Builder:
			b.Append(v.LongAt(i))
		case *array.Date32Builder:
			b.Append(arrow.Date32(v.IntAt(i)))
		case *array.Time32Builder:
			b.Append(arrow.Time32(v.IntAt(i)))
		case *array.Time64Builder:
			b.Append(arrow.Time64(v.LongAt(i)))
		case *array.TimestampBuilder:
			if v.Type() == model.TypeDateTime {
				b.Append(arrow.Timestamp(v.IntAt(i)))
			} else {
				b.Append(arrow.Timestamp(v.LongAt(i)))
			}
		case *array.Float32Builder:
			b.Append(v.FloatAt(i))
		case *array.Float64Builder:
			b.Append(v.DoubleAt(i))
		case *array.StringBuilder:
			b.Append(v.StringAt(i))
		case *array.BinaryBuilder:
			b.Append([]byte(v.StringAt(i)))
		case *array.FixedSizeBinaryBuilder:
			raw := v.BinaryAt(i)
			b.Append(raw[:])
		case *array.Decimal128Builder:
			d, _ := v.DecimalAt(i)
			scale := b.Type().(*arrow.Decimal128Type).Scale
			b.Append(decimal128.FromBigInt(d.Shift(scale).BigInt()))
		case *array.ListBuilder:
			b.Append(true)
			if err := appendColumn(b.ValueBuilder(), v.Get(i).AsVector()); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnsupported, b.Type())
		}
	}
	return nil
}

// FromRecord imports rec into a new table that owns its data.
func FromRecord(rec arrow.Record) (*value.Table, error) {
	schema := rec.Schema()
	names := make([]string, rec.NumCols())
	cols := make([]*value.Value, rec.NumCols())
	for i := range cols {
		f := schema.Field(i)
		names[i] = f.Name
		typ, err := logicalType(f)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", f.Name, err)
		}
		vec, err := importColumn(rec.Column(i), typ)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", f.Name, err)
		}
		cols[i] = vec.Value
	}
	t, err := value.NewTable(names, cols)
	if err != nil {
		return nil, err
	}
	if md := schema.Metadata(); md.Len() > 0 {
		if i := md.FindKey("name"); i >= 0 {
			t.SetName(md.Values()[i])
		}
	}
	return t, nil
}

var typesByName = func() map[string]model.Type {
	m := make(map[string]model.Type)
	for t := model.Type(0); t < 128; t++ {
		if t.Valid() {
			m[t.String()] = t
		}
	}
	return m
}()

func logicalType(f arrow.Field) (model.Type, error) {
	if i := f.Metadata.FindKey(TypeKey); i >= 0 {
		if t, ok := typesByName[f.Metadata.Values()[i]]; ok {
			return t, nil
		}
	}
	switch dt := f.Type.(type) {
	case *arrow.BooleanType:
		return model.TypeBool, nil
	case *arrow.Int8Type:
		return model.TypeChar, nil
	case *arrow.Int16Type:
		return model.TypeShort, nil
	case *arrow.Int32Type:
		return model.TypeInt, nil
	case *arrow.Int64Type:
		return model.TypeLong, nil
	case *arrow.Float32Type:
		return model.TypeFloat, nil
	case *arrow.Float64Type:
		return model.TypeDouble, nil
	case *arrow.StringType:
		return model.TypeString, nil
	case *arrow.BinaryType:
		return model.TypeBlob, nil
	case *arrow.Date32Type:
		return model.TypeDate, nil
	case *arrow.Time32Type:
		if dt.Unit == arrow.Second {
			return model.TypeSecond, nil
		}
		return model.TypeTime, nil
	case *arrow.Time64Type:
		return model.TypeNanoTime, nil
	case *arrow.TimestampType:
		switch dt.Unit {
		case arrow.Second:
			return model.TypeDateTime, nil
		case arrow.Millisecond:
			return model.TypeTimestamp, nil
		case arrow.Nanosecond:
			return model.TypeNanoTimestamp, nil
		}
	case *arrow.FixedSizeBinaryType:
		if dt.ByteWidth == 16 {
			return model.TypeUUID, nil
		}
	case *arrow.Decimal128Type:
		switch {
		case dt.Precision <= 9:
			return model.TypeDecimal32, nil
		case dt.Precision <= 18:
			return model.TypeDecimal64, nil
		}
		return model.TypeDecimal128, nil
	case *arrow.ListType:
		elem, err := logicalType(arrow.Field{Type: dt.Elem()})
		if err != nil {
			return model.TypeVoid, err
		}
		if t, ok := model.ArrayOf(elem); ok {
			return t, nil
		}
	}
	return model.TypeVoid, fmt.Errorf("%w: %s", ErrUnsupported, f.Type)
}

func importColumn(arr arrow.Array, typ model.Type) (*value.Vector, error) {
	n := arr.Len()
	vec := value.NewVector(typ, 0, n)

	var ok bool
	switch a := arr.(type) {
	case *array.Boolean:
		buf := make([]bool, n)
		for i := range buf {
			buf[i] = a.Value(i)
		}
		ok = vec.AppendBool(buf)
	case *array.Int8:
		ok = vec.AppendChar(append([]int8(nil), a.Int8Values()...))
	case *array.Int16:
		ok = vec.AppendShort(append([]int16(nil), a.Int16Values()...))
	case *array.Int32:
		ok = vec.AppendInt(append([]int32(nil), a.Int32Values()...))
	case *array.Int64:
		ok = vec.AppendLong(append([]int64(nil), a.Int64Values()...))
	case *array.Date32:
		buf := make([]int32, n)
		for i := range buf {
			buf[i] = int32(a.Value(i))
		}
		ok = vec.AppendInt(buf)
	case *array.Time32:
		buf := make([]int32, n)
		for i := range buf {
			buf[i] = int32(a.Value(i))
		}
		ok = vec.AppendInt(buf)
	case *array.Time64:
		buf := make([]int64, n)
		for i := range buf {
			buf[i] = int64(a.Value(i))
		}
		ok = vec.AppendLong(buf)
	case *array.Timestamp:
		if typ == model.TypeDateTime {
			buf := make([]int32, n)
			for i := range buf {
				buf[i] = int32(a.Value(i))
			}
			ok = vec.AppendInt(buf)
		} else {
			buf := make([]int64, n)
			for i := range buf {
				buf[i] = int64(a.Value(i))
			}
			ok = vec.AppendLong(buf)
		}
	case *array.Float32:
		ok = vec.AppendFloat(append([]float32(nil), a.Float32Values()...))
	case *array.Float64:
		ok = vec.AppendDouble(append([]float64(nil), a.Float64Values()...))
	case *array.String:
		buf := make([]string, n)
		for i := range buf {
			buf[i] = a.Value(i)
		}
		ok = vec.AppendString(buf)
	case *array.Binary:
		buf := make([]string, n)
		for i := range buf {
			buf[i] = string(a.Value(i))
		}
		ok = vec.AppendString(buf)
	case *array.FixedSizeBinary:
		buf := make([][16]byte, n)
		for i := range buf {
			copy(buf[i][:], a.Value(i))
		}
		ok = vec.AppendBinary(buf)
	case *array.Decimal128:
		return importDecimal(a, typ)
	case *array.List:
		return importList(a, typ)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, arr.DataType())
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s into %s", ErrUnsupported, arr.DataType(), typ)
	}

	if arr.NullN() > 0 {
		for i := 0; i < n; i++ {
			if arr.IsNull(i) {
				vec.SetNullAt(i)
			}
		}
	}
	return vec, nil
}

func importDecimal(a *array.Decimal128, typ model.Type) (*value.Vector, error) {
	dt := a.DataType().(*arrow.Decimal128Type)
	if typ.Category() != model.CategoryDenary || dt.Scale < 0 || int(dt.Scale) > typ.MaxScale() {
		return nil, fmt.Errorf("%w: %s into %s", ErrUnsupported, dt, typ)
	}
	vec, err := value.NewDecimalVector(typ, int(dt.Scale), 0, a.Len())
	if err != nil {
		return nil, err
	}
	buf := make([]decimal.Decimal, a.Len())
	for i := range buf {
		buf[i] = decimal.NewFromBigInt(a.Value(i).BigInt(), -dt.Scale)
	}
	vec.AppendDecimal(buf)
	for i := range buf {
		if a.IsNull(i) {
			vec.SetNullAt(i)
		}
	}
	return vec, nil
}

func importList(a *array.List, typ model.Type) (*value.Vector, error) {
	if !typ.IsArray() {
		return nil, fmt.Errorf("%w: %s into %s", ErrUnsupported, a.DataType(), typ)
	}
	values, err := importColumn(a.ListValues(), typ.ElementType())
	if err != nil {
		return nil, err
	}
	vec := value.NewVector(typ, 0, a.Len())
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) {
			vec.Append(value.NewVoid())
			continue
		}
		start, end := a.ValueOffsets(i)
		row := values.SubVector(int(start), int(end-start))
		if row == nil {
			return nil, fmt.Errorf("%w: list offsets out of range", ErrUnsupported)
		}
		vec.Append(row.Value)
	}
	return vec, nil
}
