package value

import (
	"testing"

	"github.com/hupe1980/ddbgo/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal_Scalar(t *testing.T) {
	v, err := NewDecimal(model.TypeDecimal32, 2, decimal.RequireFromString("3.14159"))
	require.NoError(t, err)
	assert.Equal(t, model.TypeDecimal32, v.Type())
	assert.Equal(t, 2, v.Scale())
	assert.Equal(t, "3.14", v.String())
	assert.InDelta(t, 3.14, v.Double(), 1e-9)
	assert.Equal(t, int64(3), v.Long())
	assert.Equal(t, `decimal32("3.14",2)`, v.Script())

	d, ok := v.DecimalAt(0)
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("3.14")))

	_, err = NewDecimal(model.TypeDecimal32, 10, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidLiteral)
	_, err = NewDecimal(model.TypeDouble, 2, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidLiteral)
}

func TestDecimal_OverflowIsNull(t *testing.T) {
	v, err := NewDecimal(model.TypeDecimal32, 2, decimal.NewFromInt(30_000_000))
	require.NoError(t, err)
	assert.True(t, v.IsNull())
	assert.Empty(t, v.String())

	w, err := NewDecimal(model.TypeDecimal64, 2, decimal.NewFromInt(30_000_000))
	require.NoError(t, err)
	assert.Equal(t, "30000000.00", w.String())
}

func TestDecimal_Vector(t *testing.T) {
	v, err := NewDecimalVector(model.TypeDecimal64, 3, 0, 4)
	require.NoError(t, err)
	require.True(t, v.AppendDecimal([]decimal.Decimal{
		decimal.RequireFromString("1.5"),
		decimal.RequireFromString("-2.25"),
		decimal.RequireFromString("0.0005"),
	}))
	assert.Equal(t, "[1.500,-2.250,0.001]", v.String())
	assert.Equal(t, `[decimal64("1.500",3),decimal64("-2.250",3),decimal64("0.001",3)]`, v.Script())

	inst := v.Instance(2)
	require.True(t, inst.Append(NewDouble(1.23456)))
	assert.Equal(t, 3, inst.Scale())
	assert.Equal(t, "1.235", inst.StringAt(0))

	sub := v.SubVector(1, 2)
	require.NotNil(t, sub)
	assert.False(t, sub.SetScale(1))

	require.True(t, v.SetScale(1))
	assert.Equal(t, "[1.5,-2.3,0.0]", v.String())
	assert.False(t, v.SetScale(19))
}

func TestDecimal_Parse(t *testing.T) {
	v, err := Parse(model.TypeDecimal64, "12.340")
	require.NoError(t, err)
	assert.Equal(t, 3, v.Scale())
	assert.Equal(t, "12.340", v.String())

	_, err = Parse(model.TypeDecimal32, "abc")
	assert.ErrorIs(t, err, ErrInvalidLiteral)
	_, err = Parse(model.TypeDecimal32, "99999999999")
	assert.ErrorIs(t, err, ErrInvalidLiteral)
}

func TestDecimal_EqualIgnoresScale(t *testing.T) {
	a, err := NewDecimal(model.TypeDecimal64, 1, decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	b, err := NewDecimal(model.TypeDecimal64, 3, decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(16), b.Hash(16))
}

func TestDecimal_Conversion(t *testing.T) {
	longs := NewLongVector(0, 0)
	require.True(t, longs.SetDecimalAt(0, decimal.RequireFromString("2.6")))
	assert.Equal(t, int64(3), longs.LongAt(0))

	strs := NewStringVector("")
	require.True(t, strs.SetDecimalAt(0, decimal.RequireFromString("7.25")))
	assert.Equal(t, "7.25", strs.StringAt(0))

	dec, err := NewDecimalVector(model.TypeDecimal32, 1, 2, 2)
	require.NoError(t, err)
	require.True(t, dec.SetAt(0, NewString("4.44")))
	require.True(t, dec.SetAt(1, NewInt(7)))
	assert.Equal(t, "[4.4,7.0]", dec.String())

	wide, err := NewDecimalVector(model.TypeDecimal128, 2, 0, 1)
	require.NoError(t, err)
	require.True(t, wide.Append(dec.Value))
	assert.Equal(t, "[4.40,7.00]", wide.String())
}
