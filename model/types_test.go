package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestType_Codes(t *testing.T) {
	tests := []struct {
		typ      Type
		code     uint8
		name     string
		category Category
		storage  Storage
		width    int
	}{
		{TypeInt, 4, "INT", CategoryIntegral, StorageInt32, 4},
		{TypeNanoTimestamp, 14, "NANOTIMESTAMP", CategoryTemporal, StorageInt64, 8},
		{TypeSymbol, 17, "SYMBOL", CategoryLiteral, StorageString, 0},
		{TypeUUID, 19, "UUID", CategoryBinary, StorageBinary16, 16},
		{TypeDecimal32, 37, "DECIMAL32", CategoryDenary, StorageDecimal, 4},
		{TypeDecimal64, 38, "DECIMAL64", CategoryDenary, StorageDecimal, 8},
		{TypeDecimal128, 39, "DECIMAL128", CategoryDenary, StorageDecimal, 16},
		{TypeIntArray, 68, "INT[]", CategoryArray, StorageArray, 0},
		{TypeDoubleArray, 80, "DOUBLE[]", CategoryArray, StorageArray, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, uint8(tt.typ))
			assert.Equal(t, tt.name, tt.typ.String())
			assert.True(t, tt.typ.Valid())
			assert.Equal(t, tt.category, tt.typ.Category())
			assert.Equal(t, tt.storage, tt.typ.Storage())
			assert.Equal(t, tt.width, tt.typ.UnitLength())
		})
	}

	assert.False(t, Type(36).Valid())
	assert.Equal(t, "TYPE(36)", Type(36).String())
}

func TestType_Arrays(t *testing.T) {
	for _, elem := range []Type{TypeChar, TypeShort, TypeInt, TypeLong, TypeFloat, TypeDouble} {
		arr, ok := ArrayOf(elem)
		assert.True(t, ok, elem.String())
		assert.True(t, arr.IsArray())
		assert.Equal(t, elem, arr.ElementType())
	}
	_, ok := ArrayOf(TypeString)
	assert.False(t, ok)
	_, ok = ArrayOf(TypeIntArray)
	assert.False(t, ok)
	assert.Equal(t, TypeInt, TypeInt.ElementType())
	assert.False(t, TypeIntArray.IsNumeric())
}

func TestType_Decimals(t *testing.T) {
	assert.True(t, TypeDecimal64.IsNumeric())
	assert.Equal(t, 9, TypeDecimal32.MaxScale())
	assert.Equal(t, 18, TypeDecimal64.MaxScale())
	assert.Equal(t, 38, TypeDecimal128.MaxScale())
	assert.Equal(t, 0, TypeDouble.MaxScale())
}

func TestForm_Codes(t *testing.T) {
	assert.Equal(t, "TABLE", FormTable.String())
	assert.True(t, FormDictionary.Valid())
	assert.False(t, Form(7).Valid())
}
