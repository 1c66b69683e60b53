package value

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/hupe1980/ddbgo/model"
)

// Set narrows a set Value. Keys keep their insertion order.
type Set struct {
	*Value
}

type setData struct {
	keys  *column
	index map[elemKey]int

	// bits mirrors the membership of integral-keyed sets.
	bits *roaring64.Bitmap
}

// AsSet narrows v, or returns nil if v is not a set.
func (v *Value) AsSet() *Set {
	if v == nil || v.form != model.FormSet {
		return nil
	}
	return &Set{Value: v}
}

// NewSet returns an empty set of keyType with room for capacity keys.
func NewSet(keyType model.Type, capacity int) *Set {
	d := &setData{
		keys:  newColumn(keyType, 0, capacity),
		index: make(map[elemKey]int, capacity),
	}
	if keyType.Category() == model.CategoryIntegral {
		d.bits = roaring64.New()
	}
	return &Set{Value: &Value{form: model.FormSet, typ: keyType, set: d}}
}

// Len returns the number of keys.
func (s *Set) Len() int { return s.set.keys.len() }

func (s *Set) key(src *column, j int) elemKey {
	return keyOf(s.typ, src, j)
}

func (s *Set) has(k elemKey) bool {
	if s.set.bits != nil {
		return s.set.bits.Contains(uint64(k.n))
	}
	_, ok := s.set.index[k]
	return ok
}

func (s *Set) add(src *column, j int) {
	k := s.key(src, j)
	if s.has(k) {
		return
	}
	pos := s.set.keys.len()
	s.set.keys.appendFrom(src, j)
	s.set.index[k] = pos
	if s.set.bits != nil {
		s.set.bits.Add(uint64(k.n))
	}
}

// elements calls fn for every non-null element of a scalar, vector or set.
func elements(e *Value, fn func(col *column, j int)) bool {
	if e == nil {
		return false
	}
	if e.form == model.FormSet {
		e = e.AsSet().Keys()
	}
	if e.vec == nil {
		return false
	}
	for i := 0; i < e.vec.len(); i++ {
		col, j, ok := e.vec.locate(i)
		if !ok || col.isNull(j) {
			continue
		}
		fn(col, j)
	}
	return true
}

// Append inserts a scalar or every element of a vector. Nulls and keys
// already present are skipped.
func (s *Set) Append(e *Value) bool {
	if e == nil || !compatible(s.typ, e.typ) {
		return false
	}
	return elements(e, s.add)
}

// Remove deletes a scalar key or every element of a vector.
func (s *Set) Remove(e *Value) bool {
	if e == nil || !compatible(s.typ, e.typ) {
		return false
	}
	drop := make(map[elemKey]struct{})
	ok := elements(e, func(col *column, j int) {
		drop[s.key(col, j)] = struct{}{}
	})
	if ok {
		s.removeKeys(drop)
	}
	return ok
}

// removeKeys deletes keys while keeping the order of the survivors.
func (s *Set) removeKeys(drop map[elemKey]struct{}) {
	if len(drop) == 0 {
		return
	}
	keys := s.set.keys
	w := 0
	for r := 0; r < keys.len(); r++ {
		k := keys.keyAt(r)
		if _, gone := drop[k]; gone {
			delete(s.set.index, k)
			if s.set.bits != nil {
				s.set.bits.Remove(uint64(k.n))
			}
			continue
		}
		if w != r {
			keys.move(w, r)
			s.set.index[k] = w
		}
		w++
	}
	keys.resize(w)
}

// Clear removes every key.
func (s *Set) Clear() {
	s.set.keys.resize(0)
	s.set.index = make(map[elemKey]int)
	if s.set.bits != nil {
		s.set.bits.Clear()
	}
}

// Inverse toggles the elements of e: keys already present are removed and
// absent keys are added. Membership is decided against the set as it was
// before the call.
func (s *Set) Inverse(e *Value) bool {
	if e == nil || !compatible(s.typ, e.typ) {
		return false
	}
	seen := make(map[elemKey]struct{})
	drop := make(map[elemKey]struct{})
	type pending struct {
		col *column
		j   int
	}
	var add []pending
	ok := elements(e, func(col *column, j int) {
		k := s.key(col, j)
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		if s.has(k) {
			drop[k] = struct{}{}
			return
		}
		add = append(add, pending{col: col, j: j})
	})
	if !ok {
		return false
	}
	s.removeKeys(drop)
	for _, p := range add {
		s.add(p.col, p.j)
	}
	return true
}

// Interaction returns a new set holding the keys present in both s and
// other, in the order of s.
func (s *Set) Interaction(other *Set) *Set {
	out := NewSet(s.typ, 0)
	if other == nil || !compatible(s.typ, other.typ) {
		return out
	}
	if s.set.bits != nil && other.set.bits != nil {
		both := roaring64.And(s.set.bits, other.set.bits)
		for i := 0; i < s.Len(); i++ {
			if both.Contains(uint64(s.set.keys.keyAt(i).n)) {
				out.add(s.set.keys, i)
			}
		}
		return out
	}
	for i := 0; i < s.Len(); i++ {
		if other.has(other.key(s.set.keys, i)) {
			out.add(s.set.keys, i)
		}
	}
	return out
}

// ContainKey reports whether scalar e is a member.
func (s *Set) ContainKey(e *Value) bool {
	if e == nil || e.vec == nil || e.vec.len() == 0 {
		return false
	}
	col, j, _ := e.vec.locate(0)
	if col.isNull(j) {
		return false
	}
	return s.has(s.key(col, j))
}

// Contain writes, for every element of target, whether it is a member into
// the BOOL vector result, which is resized to match.
func (s *Set) Contain(target *Value, result *Vector) bool {
	return containInto(target, result, func(col *column, j int) bool {
		return !col.isNull(j) && s.has(s.key(col, j))
	})
}

func containInto(target *Value, result *Vector, member func(col *column, j int) bool) bool {
	if target == nil || target.vec == nil || result == nil || result.typ != model.TypeBool || !result.growable() {
		return false
	}
	n := target.vec.len()
	result.vec.col.resize(n)
	for i := 0; i < n; i++ {
		col, j, _ := target.vec.locate(i)
		result.SetBoolAt(i, member(col, j))
	}
	return true
}

// IsSuperset reports whether every key of other is in s.
func (s *Set) IsSuperset(other *Set) bool {
	if other == nil {
		return false
	}
	if s.set.bits != nil && other.set.bits != nil {
		return roaring64.AndNot(other.set.bits, s.set.bits).IsEmpty()
	}
	for i := 0; i < other.Len(); i++ {
		if !s.has(s.key(other.set.keys, i)) {
			return false
		}
	}
	return true
}

// SubVector copies keys [start, start+n) in insertion order into a new
// vector, or returns nil when out of range.
func (s *Set) SubVector(start, n int) *Vector {
	if start < 0 || n < 0 || start+n > s.Len() {
		return nil
	}
	return &Vector{Value: newVectorValue(model.FormVector, s.typ, s.set.keys.slice(start, n))}
}

// Keys returns the keys as a new vector.
func (s *Set) Keys() *Value {
	return newVectorValue(model.FormVector, s.typ, s.set.keys.slice(0, s.Len()))
}

func (s *Set) clone() *Set {
	out := NewSet(s.typ, s.Len())
	for i := 0; i < s.Len(); i++ {
		out.add(s.set.keys, i)
	}
	return out
}
