package value

import (
	"strconv"
	"strings"

	"github.com/hupe1980/ddbgo/model"
)

// Script renders v as a literal the remote engine can evaluate.
func (v *Value) Script() string {
	if v == nil {
		return "NULL"
	}
	switch v.form {
	case model.FormScalar:
		return elementScript(v.vec.col, v.vec.off)
	case model.FormPair:
		return elementScript(v.vec.col, v.vec.off) + ":" + elementScript(v.vec.col, v.vec.off+1)
	case model.FormVector:
		return listScript(v)
	case model.FormMatrix:
		return "matrix(" + listScript(v) + ").reshape(" +
			strconv.Itoa(v.vec.rows) + ":" + strconv.Itoa(v.vec.cols) + ")"
	case model.FormSet:
		return "set(" + listScript(v.AsSet().Keys()) + ")"
	case model.FormDictionary:
		d := v.AsDictionary()
		return "dict(" + listScript(d.Keys()) + "," + listScript(d.Values()) + ")"
	case model.FormTable:
		t := v.AsTable()
		parts := make([]string, t.Columns())
		for i, c := range t.tbl.cols {
			parts[i] = listScript(c) + " as " + t.tbl.names[i]
		}
		return "table(" + strings.Join(parts, ",") + ")"
	}
	return "NULL"
}

func listScript(v *Value) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < v.vec.len(); i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		col, j, _ := v.vec.locate(i)
		sb.WriteString(elementScript(col, j))
	}
	sb.WriteByte(']')
	return sb.String()
}

func elementScript(c *column, i int) string {
	if i >= c.len() {
		return "NULL"
	}
	if c.typ.Storage() == model.StorageAny {
		return c.any[i].Script()
	}
	if c.isNull(i) {
		return "NULL"
	}
	switch c.typ.Storage() {
	case model.StorageDecimal:
		return strings.ToLower(c.typ.String()) + "(" + strconv.Quote(c.stringAt(i)) + "," +
			strconv.Itoa(c.scaleAt(i)) + ")"
	case model.StorageArray:
		row := c.arr[i]
		return listScript(newVectorValue(model.FormVector, row.typ, row))
	}
	s := c.stringAt(i)
	switch c.typ {
	case model.TypeString, model.TypeBlob:
		return strconv.Quote(s)
	case model.TypeSymbol:
		return "`" + s
	case model.TypeUUID:
		return "uuid(" + strconv.Quote(s) + ")"
	case model.TypeIPAddr:
		return "ipaddr(" + strconv.Quote(s) + ")"
	case model.TypeInt128:
		return "int128(" + strconv.Quote(s) + ")"
	case model.TypeChar:
		return s + "c"
	case model.TypeShort:
		return s + "h"
	case model.TypeLong:
		return s + "l"
	case model.TypeFloat:
		return s + "f"
	}
	return s
}

// Keys returns the keys of a set or dictionary, or the column names of a
// table. Other forms yield VOID.
func (v *Value) Keys() *Value {
	switch v.form {
	case model.FormSet:
		return v.AsSet().Keys()
	case model.FormDictionary:
		return v.AsDictionary().Keys()
	case model.FormTable:
		return v.AsTable().Keys()
	}
	return NewVoid()
}

// Values returns the values of a dictionary or the columns of a table.
// Other forms yield VOID.
func (v *Value) Values() *Value {
	switch v.form {
	case model.FormDictionary:
		return v.AsDictionary().Values()
	case model.FormTable:
		return v.AsTable().Values()
	}
	return NewVoid()
}
