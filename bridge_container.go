package ddbgo

import (
	"bytes"

	"github.com/hupe1980/ddbgo/arrowconv"
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
)

func withSet[T any](b *Bridge, op string, h Handle, fn func(s *value.Set) T) T {
	return guard(b, op, func() (T, error) {
		s, err := narrow(b, h, "SET", (*value.Value).AsSet)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(s), nil
	})
}

func withSetArg[T any](b *Bridge, op string, h, arg Handle, fn func(s *value.Set, a *value.Value) T) T {
	return guard(b, op, func() (T, error) {
		var zero T
		s, err := narrow(b, h, "SET", (*value.Value).AsSet)
		if err != nil {
			return zero, err
		}
		a, err := lookup[*value.Value](b, arg, "VALUE")
		if err != nil {
			return zero, err
		}
		return fn(s, a), nil
	})
}

// SetNew creates an empty set of keyType.
func (b *Bridge) SetNew(keyType, capacity int) Handle {
	return b.newValue("SetNew", func() *value.Value {
		return value.NewSet(model.Type(keyType), capacity).Value
	})
}

func (b *Bridge) SetLen(h Handle) int {
	return withSet(b, "SetLen", h, (*value.Set).Len)
}

// SetAppend adds a scalar or every element of a vector.
func (b *Bridge) SetAppend(h, elem Handle) bool {
	return withSetArg(b, "SetAppend", h, elem, (*value.Set).Append)
}

func (b *Bridge) SetRemove(h, elem Handle) bool {
	return withSetArg(b, "SetRemove", h, elem, (*value.Set).Remove)
}

func (b *Bridge) SetClear(h Handle) bool {
	return withSet(b, "SetClear", h, func(s *value.Set) bool { s.Clear(); return true })
}

// SetInverse toggles membership of every element of elem.
func (b *Bridge) SetInverse(h, elem Handle) bool {
	return withSetArg(b, "SetInverse", h, elem, (*value.Set).Inverse)
}

// SetInteraction returns a new set of the members common to both sets.
func (b *Bridge) SetInteraction(h, other Handle) Handle {
	return guard(b, "SetInteraction", func() (Handle, error) {
		s, err := narrow(b, h, "SET", (*value.Value).AsSet)
		if err != nil {
			return NilHandle, err
		}
		o, err := narrow(b, other, "SET", (*value.Value).AsSet)
		if err != nil {
			return NilHandle, err
		}
		return b.put(s.Interaction(o).Value), nil
	})
}

// SetContain writes membership of every element of target into the BOOL
// vector result.
func (b *Bridge) SetContain(h, target, result Handle) bool {
	return guard(b, "SetContain", func() (bool, error) {
		s, err := narrow(b, h, "SET", (*value.Value).AsSet)
		if err != nil {
			return false, err
		}
		t, err := lookup[*value.Value](b, target, "VALUE")
		if err != nil {
			return false, err
		}
		r, err := narrow(b, result, "VECTOR", (*value.Value).AsVector)
		if err != nil {
			return false, err
		}
		return s.Contain(t, r), nil
	})
}

func (b *Bridge) SetIsSuperset(h, other Handle) bool {
	return guard(b, "SetIsSuperset", func() (bool, error) {
		s, err := narrow(b, h, "SET", (*value.Value).AsSet)
		if err != nil {
			return false, err
		}
		o, err := narrow(b, other, "SET", (*value.Value).AsSet)
		if err != nil {
			return false, err
		}
		return s.IsSuperset(o), nil
	})
}

// SetSubVector copies n members in insertion order starting at start.
func (b *Bridge) SetSubVector(h Handle, start, n int) Handle {
	return guard(b, "SetSubVector", func() (Handle, error) {
		s, err := narrow(b, h, "SET", (*value.Value).AsSet)
		if err != nil {
			return NilHandle, err
		}
		sub := s.SubVector(start, n)
		if sub == nil {
			return NilHandle, ErrOutOfRange
		}
		return b.put(sub.Value), nil
	})
}

func withDict[T any](b *Bridge, op string, h Handle, fn func(d *value.Dictionary) T) T {
	return guard(b, op, func() (T, error) {
		d, err := narrow(b, h, "DICTIONARY", (*value.Value).AsDictionary)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(d), nil
	})
}

func (b *Bridge) deriveDict(op string, h Handle, fn func(d *value.Dictionary) *value.Value) Handle {
	return guard(b, op, func() (Handle, error) {
		d, err := narrow(b, h, "DICTIONARY", (*value.Value).AsDictionary)
		if err != nil {
			return NilHandle, err
		}
		return b.putValue(fn(d))
	})
}

func (b *Bridge) DictionaryNew(keyType, valueType int) Handle {
	return b.newValue("DictionaryNew", func() *value.Value {
		if d := value.NewDictionary(model.Type(keyType), model.Type(valueType)); d != nil {
			return d.Value
		}
		return nil
	})
}

func (b *Bridge) DictionaryKeyType(h Handle) int {
	return withDict(b, "DictionaryKeyType", h, func(d *value.Dictionary) int { return int(d.KeyType()) })
}

func (b *Bridge) DictionaryValueType(h Handle) int {
	return withDict(b, "DictionaryValueType", h, func(d *value.Dictionary) int { return int(d.ValueType()) })
}

func (b *Bridge) DictionaryCount(h Handle) int {
	return withDict(b, "DictionaryCount", h, (*value.Dictionary).Count)
}

// DictionaryMember returns the value mapped to key, or VOID when absent.
func (b *Bridge) DictionaryMember(h, key Handle) Handle {
	return guard(b, "DictionaryMember", func() (Handle, error) {
		d, err := narrow(b, h, "DICTIONARY", (*value.Value).AsDictionary)
		if err != nil {
			return NilHandle, err
		}
		k, err := lookup[*value.Value](b, key, "VALUE")
		if err != nil {
			return NilHandle, err
		}
		return b.putValue(d.Member(k))
	})
}

func (b *Bridge) DictionaryMemberByName(h Handle, name string) Handle {
	return b.deriveDict("DictionaryMemberByName", h, func(d *value.Dictionary) *value.Value { return d.MemberByName(name) })
}

// DictionarySet inserts or overwrites key.
func (b *Bridge) DictionarySet(h, key, val Handle) bool {
	return guard(b, "DictionarySet", func() (bool, error) {
		d, err := narrow(b, h, "DICTIONARY", (*value.Value).AsDictionary)
		if err != nil {
			return false, err
		}
		kv, err := b.values([]Handle{key, val})
		if err != nil {
			return false, err
		}
		return d.Set(kv[0], kv[1]), nil
	})
}

func (b *Bridge) DictionarySetByName(h Handle, name string, val Handle) bool {
	return guard(b, "DictionarySetByName", func() (bool, error) {
		d, err := narrow(b, h, "DICTIONARY", (*value.Value).AsDictionary)
		if err != nil {
			return false, err
		}
		v, err := lookup[*value.Value](b, val, "VALUE")
		if err != nil {
			return false, err
		}
		return d.SetByName(name, v), nil
	})
}

// DictionaryRemove reports whether key was present.
func (b *Bridge) DictionaryRemove(h, key Handle) bool {
	return withTwo(b, "DictionaryRemove", h, key, func(v, k *value.Value) bool {
		d := v.AsDictionary()
		return d != nil && d.Remove(k)
	})
}

func (b *Bridge) DictionaryClear(h Handle) bool {
	return withDict(b, "DictionaryClear", h, func(d *value.Dictionary) bool { d.Clear(); return true })
}

func (b *Bridge) DictionaryContain(h, target, result Handle) bool {
	return guard(b, "DictionaryContain", func() (bool, error) {
		d, err := narrow(b, h, "DICTIONARY", (*value.Value).AsDictionary)
		if err != nil {
			return false, err
		}
		t, err := lookup[*value.Value](b, target, "VALUE")
		if err != nil {
			return false, err
		}
		r, err := narrow(b, result, "VECTOR", (*value.Value).AsVector)
		if err != nil {
			return false, err
		}
		return d.Contain(t, r), nil
	})
}

// DictionaryCell returns the key (c == 0) or value (c == 1) of entry r.
func (b *Bridge) DictionaryCell(h Handle, c, r int) Handle {
	return b.deriveDict("DictionaryCell", h, func(d *value.Dictionary) *value.Value { return d.Cell(c, r) })
}

func withTable[T any](b *Bridge, op string, h Handle, fn func(t *value.Table) T) T {
	return guard(b, op, func() (T, error) {
		t, err := narrow(b, h, "TABLE", (*value.Value).AsTable)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(t), nil
	})
}

func (b *Bridge) deriveTable(op string, h Handle, fn func(t *value.Table) *value.Value) Handle {
	return guard(b, op, func() (Handle, error) {
		t, err := narrow(b, h, "TABLE", (*value.Value).AsTable)
		if err != nil {
			return NilHandle, err
		}
		return b.putValue(fn(t))
	})
}

// TableNew builds a table from copies of the given column vectors.
func (b *Bridge) TableNew(names []string, cols []Handle) Handle {
	return guard(b, "TableNew", func() (Handle, error) {
		vs, err := b.values(cols)
		if err != nil {
			return NilHandle, err
		}
		t, err := value.NewTable(names, vs)
		if err != nil {
			return NilHandle, err
		}
		return b.put(t.Value), nil
	})
}

// TableNewOfTypes builds a table of zero-valued columns.
func (b *Bridge) TableNewOfTypes(names []string, types []int, size, capacity int) Handle {
	return guard(b, "TableNewOfTypes", func() (Handle, error) {
		typs := make([]model.Type, len(types))
		for i, t := range types {
			typs[i] = model.Type(t)
		}
		t, err := value.NewTableOfTypes(names, typs, size, capacity)
		if err != nil {
			return NilHandle, err
		}
		return b.put(t.Value), nil
	})
}

func (b *Bridge) TableName(h Handle) string {
	return withTable(b, "TableName", h, (*value.Table).Name)
}

func (b *Bridge) TableSetName(h Handle, name string) bool {
	return withTable(b, "TableSetName", h, func(t *value.Table) bool { t.SetName(name); return true })
}

func (b *Bridge) TableColumns(h Handle) int {
	return withTable(b, "TableColumns", h, (*value.Table).Columns)
}

func (b *Bridge) TableRows(h Handle) int {
	return withTable(b, "TableRows", h, (*value.Table).Rows)
}

func (b *Bridge) TableColumnName(h Handle, i int) string {
	return withTable(b, "TableColumnName", h, func(t *value.Table) string { return t.ColumnName(i) })
}

func (b *Bridge) TableSetColumnName(h Handle, i int, name string) bool {
	return withTable(b, "TableSetColumnName", h, func(t *value.Table) bool { return t.SetColumnName(i, name) })
}

// TableColumnType returns the type code of column i.
func (b *Bridge) TableColumnType(h Handle, i int) int {
	return withTable(b, "TableColumnType", h, func(t *value.Table) int { return int(t.ColumnType(i)) })
}

// TableColumnIndex returns the position of the named column, or -1.
func (b *Bridge) TableColumnIndex(h Handle, name string) int {
	if t, err := narrow(b, h, "TABLE", (*value.Value).AsTable); err == nil {
		return t.ColumnIndex(name)
	}
	return -1
}

func (b *Bridge) TableContain(h Handle, name string) bool {
	return withTable(b, "TableContain", h, func(t *value.Table) bool { return t.Contain(name) })
}

// TableColumn returns column i as a view.
func (b *Bridge) TableColumn(h Handle, i int) Handle {
	return b.deriveTable("TableColumn", h, func(t *value.Table) *value.Value {
		if c := t.Column(i); c != nil {
			return c.Value
		}
		return nil
	})
}

// TableColumnByName returns the named column as a view.
func (b *Bridge) TableColumnByName(h Handle, name string) Handle {
	return b.deriveTable("TableColumnByName", h, func(t *value.Table) *value.Value {
		if c := t.ColumnByName(name); c != nil {
			return c.Value
		}
		return nil
	})
}

// TableMember returns the column named by the scalar behind key, or VOID.
func (b *Bridge) TableMember(h, key Handle) Handle {
	return guard(b, "TableMember", func() (Handle, error) {
		t, err := narrow(b, h, "TABLE", (*value.Value).AsTable)
		if err != nil {
			return NilHandle, err
		}
		k, err := lookup[*value.Value](b, key, "VALUE")
		if err != nil {
			return NilHandle, err
		}
		return b.putValue(t.Member(k))
	})
}

// TableDrop removes the given column positions as one batch.
func (b *Bridge) TableDrop(h Handle, indexes []int) bool {
	return withTable(b, "TableDrop", h, func(t *value.Table) bool { return t.Drop(indexes) })
}

// TableWindow returns a copy of a rectangle of the table.
func (b *Bridge) TableWindow(h Handle, colStart, colLen, rowStart, rowLen int) Handle {
	return b.deriveTable("TableWindow", h, func(t *value.Table) *value.Value {
		if w := t.Window(colStart, colLen, rowStart, rowLen); w != nil {
			return w.Value
		}
		return nil
	})
}

func (b *Bridge) TableInstance(h Handle, capacity int) Handle {
	return b.deriveTable("TableInstance", h, func(t *value.Table) *value.Value { return t.Instance(capacity).Value })
}

// TableRow returns row i as a dictionary from column name to cell.
func (b *Bridge) TableRow(h Handle, i int) Handle {
	return b.deriveTable("TableRow", h, func(t *value.Table) *value.Value { return t.Row(i) })
}

func (b *Bridge) TableStringAt(h Handle, i int) string {
	return withTable(b, "TableStringAt", h, func(t *value.Table) string { return t.StringAt(i) })
}

// TableAppendRows appends the rows of other.
func (b *Bridge) TableAppendRows(h, other Handle) bool {
	return guard(b, "TableAppendRows", func() (bool, error) {
		t, err := narrow(b, h, "TABLE", (*value.Value).AsTable)
		if err != nil {
			return false, err
		}
		o, err := narrow(b, other, "TABLE", (*value.Value).AsTable)
		if err != nil {
			return false, err
		}
		return t.AppendRows(o), nil
	})
}

// TableToArrow serializes the table as an Arrow IPC stream.
func (b *Bridge) TableToArrow(h Handle) []byte {
	return guard(b, "TableToArrow", func() ([]byte, error) {
		t, err := narrow(b, h, "TABLE", (*value.Value).AsTable)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := arrowconv.WriteIPC(&buf, t); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
}

// TableFromArrow reads an Arrow IPC stream into one table.
func (b *Bridge) TableFromArrow(data []byte) Handle {
	return guard(b, "TableFromArrow", func() (Handle, error) {
		t, err := arrowconv.ReadIPC(bytes.NewReader(data))
		if err != nil {
			return NilHandle, err
		}
		return b.put(t.Value), nil
	})
}
