package value

import (
	"strings"

	"github.com/hupe1980/ddbgo/model"
)

// Dictionary narrows a dictionary Value. Keys and values are kept in
// insertion order in parallel columns.
type Dictionary struct {
	*Value
}

type dictData struct {
	valType model.Type
	keys    *column
	vals    *column
	index   map[elemKey]int
}

// AsDictionary narrows v, or returns nil if v is not a dictionary.
func (v *Value) AsDictionary() *Dictionary {
	if v == nil || v.form != model.FormDictionary {
		return nil
	}
	return &Dictionary{Value: v}
}

// NewDictionary returns an empty dictionary. VOID keys are not allowed.
func NewDictionary(keyType, valueType model.Type) *Dictionary {
	if keyType == model.TypeVoid {
		return nil
	}
	return &Dictionary{Value: &Value{
		form: model.FormDictionary,
		typ:  keyType,
		dict: &dictData{
			valType: valueType,
			keys:    newColumn(keyType, 0, 0),
			vals:    newColumn(valueType, 0, 0),
			index:   make(map[elemKey]int),
		},
	}}
}

// KeyType returns the key type.
func (d *Dictionary) KeyType() model.Type { return d.typ }

// ValueType returns the value type.
func (d *Dictionary) ValueType() model.Type { return d.dict.valType }

// Count returns the number of entries.
func (d *Dictionary) Count() int { return d.dict.keys.len() }

func (d *Dictionary) lookup(key *Value) (elemKey, bool) {
	if key == nil || key.vec == nil || key.vec.len() == 0 || !compatible(d.typ, key.typ) {
		return elemKey{}, false
	}
	col, j, _ := key.vec.locate(0)
	if col.isNull(j) {
		return elemKey{}, false
	}
	return keyOf(d.typ, col, j), true
}

// Member returns a copy of the value bound to key, or VOID when absent.
func (d *Dictionary) Member(key *Value) *Value {
	k, ok := d.lookup(key)
	if !ok {
		return NewVoid()
	}
	pos, ok := d.dict.index[k]
	if !ok {
		return NewVoid()
	}
	return d.dict.vals.valueAt(pos)
}

// MemberByName is Member with the key parsed from name.
func (d *Dictionary) MemberByName(name string) *Value {
	key, ok := d.parseKey(name)
	if !ok {
		return NewVoid()
	}
	return d.Member(key)
}

func (d *Dictionary) parseKey(name string) (*Value, bool) {
	if d.typ == model.TypeAny {
		return NewString(name), true
	}
	key, err := Parse(d.typ, name)
	if err != nil {
		return nil, false
	}
	return key, true
}

// Set binds key to val, replacing any previous binding.
func (d *Dictionary) Set(key, val *Value) bool {
	k, ok := d.lookup(key)
	if !ok || val == nil {
		return false
	}
	if d.dict.valType != model.TypeAny && (val.vec == nil || val.vec.len() == 0 || !compatible(d.dict.valType, val.typ)) {
		return false
	}
	pos, exists := d.dict.index[k]
	if !exists {
		src, j, _ := key.vec.locate(0)
		pos = d.dict.keys.len()
		d.dict.keys.appendFrom(src, j)
		d.dict.vals.appendNull()
		d.dict.index[k] = pos
	}
	if d.dict.valType == model.TypeAny {
		d.dict.vals.any[pos] = val.Clone()
		return true
	}
	src, j, _ := val.vec.locate(0)
	d.dict.vals.setFrom(pos, src, j)
	return true
}

// SetByName is Set with the key parsed from name.
func (d *Dictionary) SetByName(name string, val *Value) bool {
	key, ok := d.parseKey(name)
	if !ok {
		return false
	}
	return d.Set(key, val)
}

// Remove deletes the binding of key and reports whether it existed.
func (d *Dictionary) Remove(key *Value) bool {
	k, ok := d.lookup(key)
	if !ok {
		return false
	}
	pos, ok := d.dict.index[k]
	if !ok {
		return false
	}
	delete(d.dict.index, k)
	d.dict.keys.remove(pos)
	d.dict.vals.remove(pos)
	for i := pos; i < d.dict.keys.len(); i++ {
		d.dict.index[d.dict.keys.keyAt(i)] = i
	}
	return true
}

// Clear removes every binding.
func (d *Dictionary) Clear() {
	d.dict.keys.resize(0)
	d.dict.vals.resize(0)
	d.dict.index = make(map[elemKey]int)
}

// Keys returns the keys as a new vector, paired with Values.
func (d *Dictionary) Keys() *Value {
	return newVectorValue(model.FormVector, d.typ, d.dict.keys.slice(0, d.Count()))
}

// Values returns the values as a new vector, paired with Keys.
func (d *Dictionary) Values() *Value {
	return newVectorValue(model.FormVector, d.dict.valType, d.dict.vals.slice(0, d.Count()))
}

// Contain writes, for every element of target, whether it is a key into the
// BOOL vector result.
func (d *Dictionary) Contain(target *Value, result *Vector) bool {
	if target != nil && !compatible(d.typ, target.typ) {
		return false
	}
	return containInto(target, result, func(col *column, j int) bool {
		if col.isNull(j) {
			return false
		}
		_, ok := d.dict.index[keyOf(d.typ, col, j)]
		return ok
	})
}

// Cell returns column c (0 keys, 1 values) of entry r, or VOID when out of
// range.
func (d *Dictionary) Cell(c, r int) *Value {
	if r < 0 || r >= d.Count() {
		return NewVoid()
	}
	switch c {
	case 0:
		return d.dict.keys.valueAt(r)
	case 1:
		return d.dict.vals.valueAt(r)
	}
	return NewVoid()
}

func (d *Dictionary) clone() *Dictionary {
	out := NewDictionary(d.typ, d.dict.valType)
	out.dict.keys = d.dict.keys.slice(0, d.Count())
	out.dict.vals = d.dict.vals.slice(0, d.Count())
	for k, pos := range d.dict.index {
		out.dict.index[k] = pos
	}
	return out
}

func (d *Dictionary) render() string {
	var sb strings.Builder
	for i := 0; i < d.Count(); i++ {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.dict.keys.stringAt(i))
		sb.WriteString("->")
		sb.WriteString(d.dict.vals.stringAt(i))
	}
	return sb.String()
}
