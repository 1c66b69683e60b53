package codec

import (
	"strings"
	"testing"

	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *value.Table {
	t.Helper()
	n := 64
	syms := make([]string, n)
	prices := make([]float64, n)
	times := value.NewVector(model.TypeTimestamp, 0, n)
	for i := 0; i < n; i++ {
		syms[i] = []string{"AAPL", "MSFT", "GOOG"}[i%3]
		prices[i] = float64(i) / 4
		times.Append(value.NewTimestamp(2024, 1, 2, 9, 30, i%60, 0))
	}
	tbl, err := value.NewTable(
		[]string{"sym", "price", "time"},
		[]*value.Value{
			value.NewStringVector(syms...).Value,
			value.NewDoubleVector(prices...).Value,
			times.Value,
		},
	)
	require.NoError(t, err)
	tbl.SetName("trades")
	return tbl
}

func TestEncodeDecode(t *testing.T) {
	withNull := value.NewIntVector(1, 2, 3)
	withNull.SetNullAt(1)
	withNull.SetName("ids")

	set := value.NewSet(model.TypeSymbol, 0)
	set.Append(value.NewStringVector("a", "b").Value)

	dict := value.NewDictionary(model.TypeString, model.TypeAny)
	dict.SetByName("x", value.NewInt(1))
	dict.SetByName("y", value.NewDoubleVector(1.5, 2.5).Value)

	m := value.NewMatrix(model.TypeDouble, 2, 2)
	m.SetColumn(0, value.NewDoubleVector(1, 2).Value)
	m.SetRowLabel(value.NewStringVector("r1", "r2").Value)

	uuid, err := value.Parse(model.TypeUUID, "5d212a78-cc48-e3b1-4235-b4d91473ee87")
	require.NoError(t, err)

	tests := []struct {
		name string
		v    *value.Value
	}{
		{"bool scalar", value.NewBool(true)},
		{"null long", value.NewScalar(model.TypeLong)},
		{"void", value.NewVoid()},
		{"string", value.NewString("héllo")},
		{"uuid", uuid},
		{"date", value.NewDate(2020, 5, 17)},
		{"pair", value.NewPair(value.NewInt(1), value.NewInt(9))},
		{"vector with null", withNull.Value},
		{"any vector", value.NewAnyVector(value.NewInt(1), value.NewString("s")).Value},
		{"set", set.Value},
		{"dictionary", dict.Value},
		{"matrix", m.Value},
		{"table", sampleTable(t).Value},
	}

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		for _, tt := range tests {
			t.Run(c.String()+"/"+tt.name, func(t *testing.T) {
				data, err := Encode(tt.v, c)
				require.NoError(t, err)

				got, err := Decode(data)
				require.NoError(t, err)
				assert.Equal(t, tt.v.Form(), got.Form())
				assert.Equal(t, tt.v.Type(), got.Type())
				assert.Equal(t, tt.v.Script(), got.Script())
			})
		}
	}
}

func TestEncodeDecode_Metadata(t *testing.T) {
	tbl := sampleTable(t)
	data, err := Encode(tbl.Value, CompressionZSTD)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	gt := got.AsTable()
	require.NotNil(t, gt)
	assert.Equal(t, "trades", gt.Name())
	assert.Equal(t, tbl.Rows(), gt.Rows())
	assert.Equal(t, "price", gt.ColumnName(1))

	v := value.NewLongVector(1, 2)
	v.SetName("qty")
	data, err = Encode(v.Value, CompressionNone)
	require.NoError(t, err)
	got, err = Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "qty", got.AsVector().Name())
}

func TestCompression_Shrinks(t *testing.T) {
	v := value.NewStringVector(strings.Split(strings.Repeat("abcdefgh,", 512), ",")...)

	raw, err := Encode(v.Value, CompressionNone)
	require.NoError(t, err)
	packed, err := Encode(v.Value, CompressionLZ4)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(raw))
}

func TestDecode_Corrupt(t *testing.T) {
	data, err := Encode(value.NewIntVector(1, 2, 3).Value, CompressionLZ4)
	require.NoError(t, err)

	_, err = Decode(data[:4])
	assert.ErrorIs(t, err, ErrCorrupt)

	bad := append([]byte(nil), data...)
	bad[len(bad)-1] ^= 0xFF
	_, err = Decode(bad)
	assert.ErrorIs(t, err, ErrCorrupt)

	bad = append([]byte(nil), data...)
	bad[0] = 'X'
	_, err = Decode(bad)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestCodecs(t *testing.T) {
	for _, name := range []string{"json", "go-json", "binary", "binary-lz4", "binary-zstd"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}
	_, ok := ByName("msgpack")
	assert.False(t, ok)

	b := Binary{Compression: CompressionZSTD}
	data := MustMarshal(b, value.NewDoubleVector(1, 2))
	var out *value.Value
	require.NoError(t, b.Unmarshal(data, &out))
	assert.Equal(t, "[1,2]", out.String())

	_, err := b.Marshal("not a value")
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, b.Unmarshal(data, out), ErrUnsupported)
}

func TestJSON(t *testing.T) {
	tbl, err := value.NewTable(
		[]string{"sym", "qty"},
		[]*value.Value{value.NewStringVector("A").Value, value.NewIntVector(5).Value},
	)
	require.NoError(t, err)

	for _, c := range []Codec{JSON{}, GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(tbl)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"sym":"A","qty":5}]`, string(data))

			data, err = c.Marshal(value.NewScalar(model.TypeInt))
			require.NoError(t, err)
			assert.Equal(t, "null", string(data))

			var plain map[string]int
			require.NoError(t, c.Unmarshal([]byte(`{"a":1}`), &plain))
			assert.Equal(t, 1, plain["a"])
		})
	}
}

func TestNative(t *testing.T) {
	d := value.NewDictionary(model.TypeString, model.TypeBool)
	d.SetByName("ok", value.NewBool(true))
	assert.Equal(t, map[string]any{"ok": true}, Native(d.Value))

	m := value.NewMatrix(model.TypeInt, 2, 1)
	assert.Equal(t, [][]any{{int64(0)}, {int64(0)}}, Native(m.Value))

	assert.Equal(t, []any{int64(1), "x"}, Native(value.NewAnyVector(value.NewInt(1), value.NewString("x")).Value))
}

func TestEncodeDecode_Decimal(t *testing.T) {
	scalar, err := value.NewDecimal(model.TypeDecimal32, 2, decimal.RequireFromString("-3.14"))
	require.NoError(t, err)

	vec, err := value.NewDecimalVector(model.TypeDecimal64, 4, 0, 3)
	require.NoError(t, err)
	vec.AppendDecimal([]decimal.Decimal{decimal.RequireFromString("1.5"), decimal.Zero, decimal.RequireFromString("-0.0001")})
	vec.SetNullAt(1)

	wide, err := value.NewDecimalVector(model.TypeDecimal128, 20, 0, 2)
	require.NoError(t, err)
	wide.AppendDecimal([]decimal.Decimal{
		decimal.RequireFromString("-123456789012345.00000000000000000001"),
		decimal.RequireFromString("98765432109876.5"),
	})

	tests := []struct {
		name  string
		v     *value.Value
		scale int
	}{
		{"decimal32 scalar", scalar, 2},
		{"decimal64 vector", vec.Value, 4},
		{"decimal128 vector", wide.Value, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.v, CompressionNone)
			require.NoError(t, err)

			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, tt.v.Type(), got.Type())
			assert.Equal(t, tt.scale, got.Scale())
			assert.Equal(t, tt.v.String(), got.String())
			assert.True(t, tt.v.Equal(got))
		})
	}
	assert.Equal(t, "[1.5000,,-0.0001]", vec.String())
}

func TestEncodeDecode_ArrayVector(t *testing.T) {
	v, err := value.NewArrayVector(model.TypeDouble, 0, 3)
	require.NoError(t, err)
	v.Append(value.NewDoubleVector(1.5, 2.5).Value)
	v.Append(value.NewVoid())
	v.Append(value.NewDoubleVector().Value)

	tbl, err := value.NewTable([]string{"vals"}, []*value.Value{v.Value})
	require.NoError(t, err)

	for _, c := range []Compression{CompressionNone, CompressionZSTD} {
		data, err := Encode(tbl.Value, c)
		require.NoError(t, err)
		got, err := Decode(data)
		require.NoError(t, err)

		col := got.AsTable().Column(0)
		assert.Equal(t, model.TypeDoubleArray, col.Type())
		assert.Equal(t, "[[1.5,2.5],,[]]", col.String())
		assert.True(t, col.IsNullAt(1))
	}

	assert.Equal(t, []any{[]any{1.5, 2.5}, nil, []any{}}, Native(v.Value))
}
