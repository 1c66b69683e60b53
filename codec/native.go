package codec

import (
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
)

func nativeOf(v any) any {
	if val, ok := asValue(v); ok {
		return Native(val)
	}
	return v
}

// Native converts v into plain Go data: nil for nulls, bool, int64,
// float64 or string for scalars (decimals render at their scale), []any
// for vectors, pairs, sets and array vector rows,
// [][]any (column-major) for matrices, map[string]any for dictionaries and
// []map[string]any (one record per row) for tables.
func Native(v *value.Value) any {
	switch v.Form() {
	case model.FormScalar:
		return element(v, 0)
	case model.FormPair, model.FormVector:
		return list(v)
	case model.FormSet:
		return list(v.Keys())
	case model.FormMatrix:
		m := v.AsMatrix()
		cols := make([][]any, m.Columns())
		for c := range cols {
			cols[c] = list(m.Column(c).Value)
		}
		return cols
	case model.FormDictionary:
		d := v.AsDictionary()
		keys, vals := d.Keys(), d.Values()
		out := make(map[string]any, d.Count())
		for i := 0; i < d.Count(); i++ {
			out[keys.StringAt(i)] = element(vals, i)
		}
		return out
	case model.FormTable:
		t := v.AsTable()
		rows := make([]map[string]any, t.Rows())
		for r := range rows {
			rec := make(map[string]any, t.Columns())
			for c := 0; c < t.Columns(); c++ {
				rec[t.ColumnName(c)] = element(t.Column(c).Value, r)
			}
			rows[r] = rec
		}
		return rows
	}
	return nil
}

func list(v *value.Value) []any {
	out := make([]any, v.Size())
	for i := range out {
		out[i] = element(v, i)
	}
	return out
}

func element(v *value.Value, i int) any {
	if v.Type() == model.TypeAny {
		return Native(v.Get(i))
	}
	if v.IsNullAt(i) {
		return nil
	}
	if v.Type().IsArray() {
		return list(v.Get(i))
	}
	switch v.Category() {
	case model.CategoryLogical:
		return v.BoolAt(i)
	case model.CategoryIntegral:
		return v.LongAt(i)
	case model.CategoryFloating:
		return v.DoubleAt(i)
	}
	return v.StringAt(i)
}
