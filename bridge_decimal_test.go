package ddbgo

import (
	"testing"

	"github.com/hupe1980/ddbgo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal_Bridge(t *testing.T) {
	b := newBridge(t)

	h := b.ValueNewDecimal(int(model.TypeDecimal32), 2, "1.255")
	require.NotEqual(t, NilHandle, h, b.LastErrorMessage())
	assert.Equal(t, int(model.TypeDecimal32), b.ValueType(h))
	assert.Equal(t, 2, b.ValueScale(h))
	assert.Equal(t, "1.26", b.ValueGetString(h))

	require.True(t, b.ValueSetScale(h, 4))
	assert.Equal(t, "1.2600", b.ValueGetString(h))

	big := b.ValueNewDecimal(int(model.TypeDecimal32), 0, "99999999999")
	require.NotEqual(t, NilHandle, big)
	assert.True(t, b.ValueIsNull(big))

	assert.Equal(t, NilHandle, b.ValueNewDecimal(int(model.TypeDecimal32), 10, "1"))
	assert.Error(t, b.LastError())
	assert.Equal(t, NilHandle, b.ValueNewDecimal(int(model.TypeInt), 0, "1"))
	assert.Equal(t, NilHandle, b.ValueNewDecimal(int(model.TypeDecimal64), 2, "abc"))

	assert.Equal(t, -1, b.ValueScale(b.ValueNewInt(1)))
	assert.False(t, b.ValueSetScale(b.ValueNewInt(1), 2))
}

func TestDecimal_BridgeVector(t *testing.T) {
	b := newBridge(t)

	vec := b.VectorNewDecimal(int(model.TypeDecimal64), 3, 0, 4)
	require.NotEqual(t, NilHandle, vec, b.LastErrorMessage())
	require.True(t, b.VectorAppendDecimal(vec, []string{"1.5", "-0.0005", "42"}))
	assert.Equal(t, 3, b.VectorLen(vec))
	assert.Equal(t, "1.500", b.ValueGetStringAt(vec, 0))
	assert.Equal(t, "-0.001", b.ValueGetStringAt(vec, 1))
	assert.Equal(t, "42.000", b.ValueGetStringAt(vec, 2))

	assert.False(t, b.VectorAppendDecimal(vec, []string{"2", "x"}))
	assert.Equal(t, 3, b.VectorLen(vec))

	assert.Equal(t, NilHandle, b.VectorNewDecimal(int(model.TypeDecimal32), -1, 0, 0))
}

func TestArrayVector_Bridge(t *testing.T) {
	b := newBridge(t)

	arr := b.VectorNewArray(int(model.TypeInt), 0, 2)
	require.NotEqual(t, NilHandle, arr, b.LastErrorMessage())
	assert.Equal(t, int(model.TypeIntArray), b.ValueType(arr))

	row := b.VectorNew(int(model.TypeInt), 0, 3)
	require.True(t, b.VectorAppendInt(row, []int32{1, 2, 3}))
	require.True(t, b.VectorAppend(arr, row))
	require.True(t, b.VectorAppend(arr, b.ValueNewInt(9)))
	require.True(t, b.VectorAppend(arr, b.ValueNewVoid()))

	assert.Equal(t, 3, b.VectorLen(arr))
	assert.Equal(t, 3, b.VectorRowLen(arr, 0))
	assert.Equal(t, 1, b.VectorRowLen(arr, 1))
	assert.Equal(t, -1, b.VectorRowLen(arr, 2))
	assert.Equal(t, -1, b.VectorRowLen(arr, 3))
	assert.Equal(t, "[1,2,3]", b.ValueGetStringAt(arr, 0))

	got := b.ValueGet(arr, 0)
	assert.True(t, b.ValueIsVector(got))
	assert.Equal(t, int(model.TypeInt), b.ValueType(got))

	assert.Equal(t, NilHandle, b.VectorNewArray(int(model.TypeIntArray), 0, 0))
	assert.Equal(t, -1, b.VectorRowLen(row, 0))
}
