package ddbgo

import (
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
	"github.com/shopspring/decimal"
)

// ValueNewDecimal creates a DECIMAL32, DECIMAL64 or DECIMAL128 scalar from
// its text form, rounded half away from zero to scale digits.
func (b *Bridge) ValueNewDecimal(typ, scale int, text string) Handle {
	return guard(b, "ValueNewDecimal", func() (Handle, error) {
		d, err := decimal.NewFromString(text)
		if err != nil {
			return NilHandle, err
		}
		v, err := value.NewDecimal(model.Type(typ), scale, d)
		if err != nil {
			return NilHandle, err
		}
		return b.put(v), nil
	})
}

// ValueScale returns the number of fractional digits of a decimal value, or
// -1 for other values.
func (b *Bridge) ValueScale(h Handle) int {
	if v, err := lookup[*value.Value](b, h, "VALUE"); err == nil && v.Type().Category() == model.CategoryDenary {
		return v.Scale()
	}
	return -1
}

// ValueSetScale rescales every element of a decimal value. Elements that no
// longer fit the type become null.
func (b *Bridge) ValueSetScale(h Handle, scale int) bool {
	return withValue(b, "ValueSetScale", h, func(v *value.Value) bool { return v.SetScale(scale) })
}

// VectorNewDecimal creates a decimal vector of size null elements.
func (b *Bridge) VectorNewDecimal(typ, scale, size, capacity int) Handle {
	return guard(b, "VectorNewDecimal", func() (Handle, error) {
		v, err := value.NewDecimalVector(model.Type(typ), scale, size, capacity)
		if err != nil {
			return NilHandle, err
		}
		return b.put(v.Value), nil
	})
}

// VectorAppendDecimal appends decimals given in text form. Nothing is
// appended if one of them does not parse.
func (b *Bridge) VectorAppendDecimal(h Handle, buf []string) bool {
	return guard(b, "VectorAppendDecimal", func() (bool, error) {
		v, err := narrow(b, h, "VECTOR", (*value.Value).AsVector)
		if err != nil {
			return false, err
		}
		ds := make([]decimal.Decimal, len(buf))
		for i, s := range buf {
			if ds[i], err = decimal.NewFromString(s); err != nil {
				return false, err
			}
		}
		return v.AppendDecimal(ds), nil
	})
}

// VectorNewArray creates an array vector whose rows hold elements of type
// elem. The size initial rows are empty.
func (b *Bridge) VectorNewArray(elem, size, capacity int) Handle {
	return guard(b, "VectorNewArray", func() (Handle, error) {
		v, err := value.NewArrayVector(model.Type(elem), size, capacity)
		if err != nil {
			return NilHandle, err
		}
		return b.put(v.Value), nil
	})
}

// VectorRowLen returns the number of elements in row i of an array vector,
// or -1 for a null row.
func (b *Bridge) VectorRowLen(h Handle, i int) int {
	if v, err := narrow(b, h, "VECTOR", (*value.Value).AsVector); err == nil {
		return v.RowLen(i)
	}
	return -1
}
