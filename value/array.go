package value

import (
	"fmt"
	"strings"

	"github.com/hupe1980/ddbgo/model"
)

// NewArrayVector returns an array vector whose rows hold elements of type
// elem. The size initial rows are empty.
func NewArrayVector(elem model.Type, size, capacity int) (*Vector, error) {
	typ, ok := model.ArrayOf(elem)
	if !ok {
		return nil, fmt.Errorf("%w: no array type for %s", ErrInvalidLiteral, elem)
	}
	return NewVector(typ, size, capacity), nil
}

// RowLen returns the number of elements in row i of an array vector, or -1
// for null rows, out of range indexes and other types.
func (v *Vector) RowLen(i int) int {
	col, j, ok := v.vec.locate(i)
	if !ok || col.typ.Storage() != model.StorageArray || col.arr[j] == nil {
		return -1
	}
	return col.arr[j].len()
}

// arrayRow copies the elements of vector-shaped v into a column of type elem.
func arrayRow(elem model.Type, v *Value) *column {
	n := v.vec.len()
	out := newColumn(elem, n, n)
	for k := 0; k < n; k++ {
		col, j, _ := v.vec.locate(k)
		out.setFrom(k, col, j)
	}
	return out
}

// setArray stores e as row i. Vectors become the row, VOID becomes null and
// any other scalar becomes a one-element row.
func (c *column) setArray(i int, e *Value) {
	elem := c.typ.ElementType()
	switch {
	case e == nil || e.vec == nil || e.typ == model.TypeVoid:
		c.setNull(i)
	case e.form == model.FormVector:
		c.arr[i] = arrayRow(elem, e)
	default:
		row := newColumn(elem, 1, 1)
		if col, k, ok := e.vec.locate(0); ok {
			row.setFrom(0, col, k)
		}
		c.arr[i] = row
	}
}

func (c *column) setArrayFrom(i int, src *column, j int) {
	switch src.typ.Storage() {
	case model.StorageAny:
		c.setArray(i, src.any[j])
	case model.StorageString:
		c.setString(i, src.str[j])
	default:
		row := newColumn(c.typ.ElementType(), 1, 1)
		row.setFrom(0, src, j)
		c.arr[i] = row
	}
}

// render formats an array row as [a,b,c].
func (c *column) render() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < c.len(); i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(c.stringAt(i))
	}
	sb.WriteByte(']')
	return sb.String()
}

func parseArray(elem model.Type, s string) (*column, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, fmt.Errorf("%w: %s[] %q", ErrInvalidLiteral, elem, s)
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return newColumn(elem, 0, 0), nil
	}
	parts := strings.Split(body, ",")
	out := newColumn(elem, len(parts), len(parts))
	for k, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			out.setNull(k)
			continue
		}
		e, err := Parse(elem, p)
		if err != nil {
			return nil, err
		}
		out.setFrom(k, e.vec.col, 0)
	}
	return out, nil
}
