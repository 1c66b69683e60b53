package value

import (
	"fmt"

	"github.com/hupe1980/ddbgo/model"
	"github.com/shopspring/decimal"
)

// NewDecimal returns a decimal scalar of type typ holding d rounded to
// scale. A value that does not fit the type is stored as null.
func NewDecimal(typ model.Type, scale int, d decimal.Decimal) (*Value, error) {
	col, err := newDecimalColumn(typ, scale, 1, 1)
	if err != nil {
		return nil, err
	}
	col.setDecimal(0, d)
	return newVectorValue(model.FormScalar, typ, col), nil
}

// NewDecimalVector returns a decimal vector of size zeros with the given
// scale and room for capacity elements.
func NewDecimalVector(typ model.Type, scale, size, capacity int) (*Vector, error) {
	col, err := newDecimalColumn(typ, scale, size, capacity)
	if err != nil {
		return nil, err
	}
	return &Vector{Value: newVectorValue(model.FormVector, typ, col)}, nil
}

func newDecimalColumn(typ model.Type, scale, size, capacity int) (*column, error) {
	if typ.Category() != model.CategoryDenary {
		return nil, fmt.Errorf("%w: %s is not a decimal type", ErrInvalidLiteral, typ)
	}
	if scale < 0 || scale > typ.MaxScale() {
		return nil, fmt.Errorf("%w: scale %d out of range for %s", ErrInvalidLiteral, scale, typ)
	}
	col := newColumn(typ, size, capacity)
	col.scale = int32(scale)
	return col, nil
}

func parseDecimal(typ model.Type, s string) (*Value, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidLiteral, typ, s)
	}
	scale := min(max(int(-d.Exponent()), 0), typ.MaxScale())
	v, err := NewDecimal(typ, scale, d)
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		return nil, fmt.Errorf("%w: %s %q overflows", ErrInvalidLiteral, typ, s)
	}
	return v, nil
}

// Scale returns the number of fractional digits of a decimal value, or 0
// for every other type. Without a fixed scale it is the largest scale of
// any element.
func (v *Value) Scale() int {
	if v.vec == nil || v.typ.Category() != model.CategoryDenary {
		return 0
	}
	return v.vec.col.effectiveScale()
}

// SetScale fixes the scale of a decimal owner and rounds every element to
// it. Views and other types report false.
func (v *Value) SetScale(scale int) bool {
	if v.vec == nil || v.vec.view || v.typ.Category() != model.CategoryDenary {
		return false
	}
	if scale < 0 || scale > v.typ.MaxScale() {
		return false
	}
	col := v.vec.col
	col.scale = int32(scale)
	for i := range col.dec {
		if col.dec[i].Valid {
			col.setDecimal(i, col.dec[i].Decimal)
		}
	}
	return true
}

// DecimalAt reads element i as a decimal. ok is false for nulls and out of
// range indexes.
func (v *Value) DecimalAt(i int) (decimal.Decimal, bool) {
	col, j, ok := v.slot(i)
	if !ok || col.isNull(j) {
		return decimal.Decimal{}, false
	}
	switch col.typ.Storage() {
	case model.StorageDecimal:
		return col.dec[j].Decimal, true
	case model.StorageFloat32:
		return decimal.NewFromFloat32(col.f32[j]), true
	case model.StorageFloat64:
		return decimal.NewFromFloat(col.f64[j]), true
	case model.StorageString:
		d, err := decimal.NewFromString(col.str[j])
		return d, err == nil
	case model.StorageAny:
		return col.any[j].DecimalAt(0)
	}
	n, ok := col.int64At(j)
	return decimal.NewFromInt(n), ok
}

// SetDecimalAt writes d into element i, converting to the element type.
func (v *Value) SetDecimalAt(i int, d decimal.Decimal) bool {
	col, j, ok := v.slot(i)
	if !ok {
		return false
	}
	switch col.typ.Storage() {
	case model.StorageDecimal:
		col.setDecimal(j, d)
	case model.StorageString:
		col.setString(j, d.String())
	case model.StorageFloat32, model.StorageFloat64:
		col.setFloat64(j, d.InexactFloat64())
	case model.StorageAny:
		e, err := NewDecimal(model.TypeDecimal128, min(max(int(-d.Exponent()), 0), 38), d)
		if err != nil {
			return false
		}
		col.any[j] = e
	case model.StorageInt8, model.StorageInt16, model.StorageInt32, model.StorageInt64:
		col.setInt64(j, d.Round(0).IntPart())
	default:
		return false
	}
	return true
}

// AppendDecimal appends vals to a growable vector.
func (v *Vector) AppendDecimal(vals []decimal.Decimal) bool {
	if !v.growable() {
		return false
	}
	col := v.vec.col
	n := col.len()
	col.resize(n + len(vals))
	for k, d := range vals {
		v.SetDecimalAt(n+k, d)
	}
	return true
}

// setDecimal stores d in slot i, rounded to the column scale. Values whose
// unscaled form does not fit the type become null.
func (c *column) setDecimal(i int, d decimal.Decimal) {
	switch {
	case c.scale >= 0:
		d = d.Round(c.scale)
	case -d.Exponent() > int32(c.typ.MaxScale()):
		d = d.Round(int32(c.typ.MaxScale()))
	}
	if !fitsDecimal(c.typ, d) {
		c.setNull(i)
		return
	}
	c.dec[i] = decimal.NullDecimal{Decimal: d, Valid: true}
}

func fitsDecimal(typ model.Type, d decimal.Decimal) bool {
	bits := typ.UnitLength()*8 - 1
	if d.Exponent() > 0 {
		return d.BigInt().BitLen() <= bits
	}
	return d.Coefficient().BitLen() <= bits
}

func (c *column) setDecimalFrom(i int, src *column, j int) {
	switch src.typ.Storage() {
	case model.StorageString:
		c.setString(i, src.str[j])
	case model.StorageAny:
		e := src.any[j]
		if e == nil || e.vec == nil || e.vec.len() == 0 {
			c.setNull(i)
			return
		}
		col, k, _ := e.vec.locate(0)
		c.setFrom(i, col, k)
	case model.StorageFloat32:
		c.setDecimal(i, decimal.NewFromFloat32(src.f32[j]))
	case model.StorageFloat64:
		c.setFloat64(i, src.f64[j])
	case model.StorageArray, model.StorageBinary16:
		c.setNull(i)
	default:
		n, ok := src.int64At(j)
		if !ok {
			c.setNull(i)
			return
		}
		c.setInt64(i, n)
	}
}

// effectiveScale is the fixed scale, or the largest element scale.
func (c *column) effectiveScale() int {
	if c.scale >= 0 {
		return int(c.scale)
	}
	scale := 0
	for _, d := range c.dec {
		if d.Valid {
			scale = max(scale, int(-d.Decimal.Exponent()))
		}
	}
	return scale
}

func (c *column) decimalString(d decimal.Decimal) string {
	if c.scale >= 0 {
		return d.StringFixed(c.scale)
	}
	if d.Exponent() < 0 {
		return d.StringFixed(-d.Exponent())
	}
	return d.String()
}

func (c *column) scaleAt(i int) int {
	if c.scale >= 0 {
		return int(c.scale)
	}
	return max(int(-c.dec[i].Decimal.Exponent()), 0)
}
