package value

import (
	"testing"

	"github.com/hupe1980/ddbgo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrayVector_Append(t *testing.T) {
	v, err := NewArrayVector(model.TypeInt, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, model.TypeIntArray, v.Type())

	require.True(t, v.Append(NewIntVector(1, 2, 3).Value))
	require.True(t, v.Append(NewInt(4)))
	require.True(t, v.Append(NewVoid()))
	require.True(t, v.Append(NewIntVector().Value))
	assert.False(t, v.Append(NewString("x")))

	assert.Equal(t, 4, v.Len())
	assert.Equal(t, "[[1,2,3],[4],,[]]", v.String())
	assert.Equal(t, "[[1,2,3],[4],NULL,[]]", v.Script())
	assert.Equal(t, 3, v.RowLen(0))
	assert.Equal(t, -1, v.RowLen(2))
	assert.Equal(t, 0, v.RowLen(3))
	assert.Equal(t, -1, v.RowLen(9))
	assert.True(t, v.IsNullAt(2))

	row := v.Get(0)
	assert.True(t, row.IsVector())
	assert.Equal(t, model.TypeInt, row.Type())
	row.AsVector().SetIntAt(0, 100)
	assert.Equal(t, "[1,2,3]", v.StringAt(0))
	assert.Equal(t, model.TypeVoid, v.Get(2).Type())
}

func TestArrayVector_SetAt(t *testing.T) {
	v, err := NewArrayVector(model.TypeInt, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "[[],[]]", v.String())

	require.True(t, v.SetAt(1, NewDoubleVector(5.4, 6.6).Value))
	assert.Equal(t, "[5,7]", v.StringAt(1))
	require.True(t, v.SetAt(0, NewVoid()))
	assert.True(t, v.IsNullAt(0))
	require.True(t, v.SetStringAt(0, "[8, ,9]"))
	assert.Equal(t, "[8,,9]", v.StringAt(0))
}

func TestArrayVector_ConvertRows(t *testing.T) {
	longs, err := NewArrayVector(model.TypeLong, 0, 1)
	require.NoError(t, err)
	require.True(t, longs.Append(NewLongVector(9, 10).Value))

	ints, err := NewArrayVector(model.TypeInt, 0, 1)
	require.NoError(t, err)
	require.True(t, ints.Append(longs.Value))
	assert.Equal(t, "[[9,10]]", ints.String())

	clone := ints.Clone()
	assert.True(t, clone.Equal(ints.Value))
	clone.AsVector().SetAt(0, NewIntVector(1).Value)
	assert.False(t, clone.Equal(ints.Value))
	assert.Equal(t, "[[9,10]]", ints.String())
}

func TestArrayVector_Parse(t *testing.T) {
	row, err := Parse(model.TypeIntArray, "[1, ,3]")
	require.NoError(t, err)
	assert.Equal(t, "[1,,3]", row.String())

	_, err = Parse(model.TypeIntArray, "1,2")
	assert.ErrorIs(t, err, ErrInvalidLiteral)
	_, err = NewArrayVector(model.TypeString, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidLiteral)
}

func TestTable_AppendRow(t *testing.T) {
	tags, err := NewArrayVector(model.TypeInt, 0, 1)
	require.NoError(t, err)
	tbl, err := NewTable([]string{"sym", "qty", "tags"}, []*Value{
		NewStringVector().Value,
		NewIntVector().Value,
		tags.Value,
	})
	require.NoError(t, err)

	require.True(t, tbl.AppendRow([]*Value{NewSymbol("A"), NewLong(10), NewIntVector(1, 2).Value}))
	require.True(t, tbl.AppendRow([]*Value{NewString("B"), NewVoid(), NewInt(3)}))
	assert.Equal(t, 2, tbl.Rows())
	assert.Equal(t, "A,10,[1,2]", tbl.StringAt(0))
	assert.Equal(t, "B,,[3]", tbl.StringAt(1))

	assert.False(t, tbl.AppendRow([]*Value{NewString("C"), NewInt(1)}))
	assert.False(t, tbl.AppendRow([]*Value{NewString("C"), NewString("x"), NewInt(1)}))
	assert.False(t, tbl.AppendRow([]*Value{NewString("C"), NewIntVector(1).Value, NewInt(1)}))
	assert.Equal(t, 2, tbl.Rows())
	for i := 0; i < tbl.Columns(); i++ {
		assert.Equal(t, 2, tbl.Column(i).Len(), "column %d", i)
	}
}
