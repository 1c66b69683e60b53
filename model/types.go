package model

import (
	"fmt"
	"math"
)

// Form is the structural shape of a value.
type Form uint8

// Form codes. The numeric values are part of the boundary contract.
const (
	FormScalar     Form = 0
	FormVector     Form = 1
	FormPair       Form = 2
	FormMatrix     Form = 3
	FormSet        Form = 4
	FormDictionary Form = 5
	FormTable      Form = 6
)

var formNames = [...]string{
	FormScalar:     "SCALAR",
	FormVector:     "VECTOR",
	FormPair:       "PAIR",
	FormMatrix:     "MATRIX",
	FormSet:        "SET",
	FormDictionary: "DICTIONARY",
	FormTable:      "TABLE",
}

// String returns the upper-case form name.
func (f Form) String() string {
	if int(f) < len(formNames) {
		return formNames[f]
	}
	return fmt.Sprintf("FORM(%d)", uint8(f))
}

// Valid reports whether f is a known form code.
func (f Form) Valid() bool {
	return f <= FormTable
}

// Type is the element-level data type of a value.
type Type uint8

// Type codes. The numeric values are part of the boundary contract.
const (
	TypeVoid          Type = 0
	TypeBool          Type = 1
	TypeChar          Type = 2
	TypeShort         Type = 3
	TypeInt           Type = 4
	TypeLong          Type = 5
	TypeDate          Type = 6
	TypeMonth         Type = 7
	TypeTime          Type = 8
	TypeMinute        Type = 9
	TypeSecond        Type = 10
	TypeDateTime      Type = 11
	TypeTimestamp     Type = 12
	TypeNanoTime      Type = 13
	TypeNanoTimestamp Type = 14
	TypeFloat         Type = 15
	TypeDouble        Type = 16
	TypeSymbol        Type = 17
	TypeString        Type = 18
	TypeUUID          Type = 19
	TypeAny           Type = 25
	TypeDateHour      Type = 28
	TypeIPAddr        Type = 30
	TypeInt128        Type = 31
	TypeBlob          Type = 32
	TypeDecimal32     Type = 37
	TypeDecimal64     Type = 38
	TypeDecimal128    Type = 39

	// Array vector types are the element type plus ArrayOffset.
	TypeCharArray   Type = 66
	TypeShortArray  Type = 67
	TypeIntArray    Type = 68
	TypeLongArray   Type = 69
	TypeFloatArray  Type = 79
	TypeDoubleArray Type = 80
)

// ArrayOffset separates an array vector type code from its element type.
const ArrayOffset = 64

var typeNames = map[Type]string{
	TypeVoid:          "VOID",
	TypeBool:          "BOOL",
	TypeChar:          "CHAR",
	TypeShort:         "SHORT",
	TypeInt:           "INT",
	TypeLong:          "LONG",
	TypeDate:          "DATE",
	TypeMonth:         "MONTH",
	TypeTime:          "TIME",
	TypeMinute:        "MINUTE",
	TypeSecond:        "SECOND",
	TypeDateTime:      "DATETIME",
	TypeTimestamp:     "TIMESTAMP",
	TypeNanoTime:      "NANOTIME",
	TypeNanoTimestamp: "NANOTIMESTAMP",
	TypeFloat:         "FLOAT",
	TypeDouble:        "DOUBLE",
	TypeSymbol:        "SYMBOL",
	TypeString:        "STRING",
	TypeUUID:          "UUID",
	TypeAny:           "ANY",
	TypeDateHour:      "DATEHOUR",
	TypeIPAddr:        "IPADDR",
	TypeInt128:        "INT128",
	TypeBlob:          "BLOB",
	TypeDecimal32:     "DECIMAL32",
	TypeDecimal64:     "DECIMAL64",
	TypeDecimal128:    "DECIMAL128",
	TypeCharArray:     "CHAR[]",
	TypeShortArray:    "SHORT[]",
	TypeIntArray:      "INT[]",
	TypeLongArray:     "LONG[]",
	TypeFloatArray:    "FLOAT[]",
	TypeDoubleArray:   "DOUBLE[]",
}

// String returns the upper-case type name.
func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TYPE(%d)", uint8(t))
}

// Valid reports whether t is a known type code.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// Category groups types by their storage class.
type Category uint8

const (
	CategoryNothing Category = iota
	CategoryLogical
	CategoryIntegral
	CategoryTemporal
	CategoryFloating
	CategoryLiteral
	CategoryBinary
	CategoryMixed
	CategoryDenary
	CategoryArray
)

// Category returns the storage class of t.
func (t Type) Category() Category {
	switch t {
	case TypeBool:
		return CategoryLogical
	case TypeChar, TypeShort, TypeInt, TypeLong:
		return CategoryIntegral
	case TypeDate, TypeMonth, TypeTime, TypeMinute, TypeSecond, TypeDateTime,
		TypeTimestamp, TypeNanoTime, TypeNanoTimestamp, TypeDateHour:
		return CategoryTemporal
	case TypeFloat, TypeDouble:
		return CategoryFloating
	case TypeSymbol, TypeString, TypeBlob:
		return CategoryLiteral
	case TypeUUID, TypeIPAddr, TypeInt128:
		return CategoryBinary
	case TypeAny:
		return CategoryMixed
	case TypeDecimal32, TypeDecimal64, TypeDecimal128:
		return CategoryDenary
	case TypeCharArray, TypeShortArray, TypeIntArray, TypeLongArray,
		TypeFloatArray, TypeDoubleArray:
		return CategoryArray
	default:
		return CategoryNothing
	}
}

// Storage is the physical representation backing a type.
type Storage uint8

const (
	StorageNone Storage = iota
	StorageInt8
	StorageInt16
	StorageInt32
	StorageInt64
	StorageFloat32
	StorageFloat64
	StorageString
	StorageBinary16
	StorageAny
	StorageDecimal
	StorageArray
)

// Storage returns the physical storage class used for t.
func (t Type) Storage() Storage {
	switch t {
	case TypeBool, TypeChar:
		return StorageInt8
	case TypeShort:
		return StorageInt16
	case TypeInt, TypeDate, TypeMonth, TypeTime, TypeMinute, TypeSecond,
		TypeDateTime, TypeDateHour:
		return StorageInt32
	case TypeLong, TypeTimestamp, TypeNanoTime, TypeNanoTimestamp:
		return StorageInt64
	case TypeFloat:
		return StorageFloat32
	case TypeDouble:
		return StorageFloat64
	case TypeSymbol, TypeString, TypeBlob:
		return StorageString
	case TypeUUID, TypeIPAddr, TypeInt128:
		return StorageBinary16
	case TypeAny:
		return StorageAny
	case TypeDecimal32, TypeDecimal64, TypeDecimal128:
		return StorageDecimal
	case TypeCharArray, TypeShortArray, TypeIntArray, TypeLongArray,
		TypeFloatArray, TypeDoubleArray:
		return StorageArray
	default:
		return StorageNone
	}
}

// UnitLength returns the width in bytes of one element, or 0 for
// variable-width storage.
func (t Type) UnitLength() int {
	switch t.Storage() {
	case StorageInt8:
		return 1
	case StorageInt16:
		return 2
	case StorageInt32, StorageFloat32:
		return 4
	case StorageInt64, StorageFloat64:
		return 8
	case StorageBinary16:
		return 16
	case StorageDecimal:
		switch t {
		case TypeDecimal32:
			return 4
		case TypeDecimal64:
			return 8
		}
		return 16
	default:
		return 0
	}
}

// IsArray reports whether t is an array vector type.
func (t Type) IsArray() bool { return t.Category() == CategoryArray }

// ElementType returns the type of the elements of an array vector type,
// or t itself for every other type.
func (t Type) ElementType() Type {
	if t.IsArray() {
		return t - ArrayOffset
	}
	return t
}

// ArrayOf returns the array vector type holding elements of type elem.
func ArrayOf(elem Type) (Type, bool) {
	t := elem + ArrayOffset
	return t, elem < ArrayOffset && t.IsArray()
}

// MaxScale returns the largest scale a decimal type can hold, or 0 for
// other types.
func (t Type) MaxScale() int {
	switch t {
	case TypeDecimal32:
		return 9
	case TypeDecimal64:
		return 18
	case TypeDecimal128:
		return 38
	}
	return 0
}

// IsNumeric reports whether values of t can be read as numbers.
func (t Type) IsNumeric() bool {
	switch t.Category() {
	case CategoryLogical, CategoryIntegral, CategoryTemporal, CategoryFloating, CategoryDenary:
		return true
	}
	return false
}

// Null sentinels.
const (
	NullInt8  int8  = math.MinInt8
	NullInt16 int16 = math.MinInt16
	NullInt32 int32 = math.MinInt32
	NullInt64 int64 = math.MinInt64
)

// Null sentinels for floating point storage.
var (
	NullFloat32 = float32(-math.MaxFloat32)
	NullFloat64 = -math.MaxFloat64
)
