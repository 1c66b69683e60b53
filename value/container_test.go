package value

import (
	"testing"

	"github.com/hupe1980/ddbgo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix(t *testing.T) {
	m := NewMatrix(model.TypeInt, 2, 3)
	assert.True(t, m.IsMatrix())
	assert.Equal(t, 2, m.Columns())
	assert.Equal(t, 3, m.Rows())

	require.True(t, m.SetColumn(1, NewIntVector(7, 8, 9).Value))
	assert.False(t, m.SetColumn(0, NewIntVector(1).Value))
	assert.False(t, m.SetColumn(2, NewIntVector(1, 2, 3).Value))
	assert.Equal(t, "8", m.CellString(1, 1))
	assert.Equal(t, int32(9), m.Cell(1, 2).Int())
	assert.Equal(t, model.TypeVoid, m.Cell(2, 0).Type())
	assert.Equal(t, "8", m.StringAt(4))
	assert.Equal(t, "9", m.StringAt(5))
	assert.Empty(t, m.StringAt(6))
	assert.Empty(t, m.StringAt(-1))

	col := m.Column(0)
	require.NotNil(t, col)
	col.SetIntAt(2, 5)
	assert.Equal(t, "5", m.CellString(0, 2))

	assert.True(t, m.SetRowLabel(NewStringVector("a", "b", "c").Value))
	assert.False(t, m.SetColumnLabel(NewStringVector("x").Value))
	assert.Equal(t, "[a,b,c]", m.RowLabel().String())

	require.True(t, m.Reshape(3, 2))
	assert.Equal(t, 3, m.Columns())
	assert.False(t, m.Reshape(4, 2))

	inst := m.Instance(5)
	assert.Equal(t, 5, inst.Columns())
	assert.Equal(t, 2, inst.Rows())
}

func TestSet_AppendRemove(t *testing.T) {
	s := NewSet(model.TypeInt, 0)
	require.True(t, s.Append(NewIntVector(3, 1, 3, 2).Value))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "[3,1,2]", s.Keys().String())
	assert.Equal(t, "set([3,1,2])", s.String())

	assert.True(t, s.ContainKey(NewInt(1)))
	assert.False(t, s.ContainKey(NewInt(4)))
	assert.False(t, s.Append(NewString("x")))

	require.True(t, s.Remove(NewInt(1)))
	assert.Equal(t, "[3,2]", s.Keys().String())
	assert.False(t, s.ContainKey(NewInt(1)))

	s.Clear()
	assert.Equal(t, 0, s.Size())
}

func TestSet_Contain(t *testing.T) {
	s := NewSet(model.TypeString, 0)
	s.Append(NewStringVector("a", "b").Value)

	result := NewVector(model.TypeBool, 0, 0)
	require.True(t, s.Contain(NewStringVector("b", "z", "a").Value, result))
	assert.Equal(t, "[true,false,true]", result.String())
}

func TestSet_Inverse(t *testing.T) {
	t.Run("self inverse empties", func(t *testing.T) {
		s := NewSet(model.TypeLong, 0)
		s.Append(NewLongVector(1, 2, 3).Value)
		orig := s.Clone().AsSet()

		require.True(t, s.Inverse(s.Value))
		assert.Equal(t, 0, s.Len())
		assert.False(t, s.IsSuperset(orig))
	})

	t.Run("empty set is its own superset", func(t *testing.T) {
		s := NewSet(model.TypeLong, 0)
		orig := s.Clone().AsSet()
		require.True(t, s.Inverse(s.Value))
		assert.True(t, s.IsSuperset(orig))
	})

	t.Run("toggles membership", func(t *testing.T) {
		s := NewSet(model.TypeString, 0)
		s.Append(NewStringVector("a", "b").Value)
		require.True(t, s.Inverse(NewStringVector("b", "c", "c").Value))
		assert.Equal(t, "[a,c]", s.Keys().String())
	})
}

func TestSet_InteractionSuperset(t *testing.T) {
	a := NewSet(model.TypeInt, 0)
	a.Append(NewIntVector(1, 2, 3, 4).Value)
	b := NewSet(model.TypeInt, 0)
	b.Append(NewIntVector(4, 2, 9).Value)

	both := a.Interaction(b)
	assert.Equal(t, "[2,4]", both.Keys().String())
	assert.True(t, a.IsSuperset(both))
	assert.False(t, a.IsSuperset(b))

	c := NewSet(model.TypeDouble, 0)
	c.Append(NewDoubleVector(1.5, 2).Value)
	d := NewSet(model.TypeDouble, 0)
	d.Append(NewDouble(2))
	assert.True(t, c.IsSuperset(d))
	assert.Equal(t, "[2]", c.Interaction(d).Keys().String())

	page := a.SubVector(1, 2)
	require.NotNil(t, page)
	assert.Equal(t, "[2,3]", page.String())
	assert.Nil(t, a.SubVector(3, 2))
}

func TestDictionary(t *testing.T) {
	d := NewDictionary(model.TypeString, model.TypeDouble)
	assert.Equal(t, model.TypeString, d.KeyType())
	assert.Equal(t, model.TypeDouble, d.ValueType())

	require.True(t, d.Set(NewString("a"), NewDouble(1.5)))
	require.True(t, d.SetByName("b", NewInt(2)))
	assert.Equal(t, 2, d.Count())
	assert.Equal(t, 1.5, d.Member(NewString("a")).Double())
	assert.Equal(t, 2.0, d.MemberByName("b").Double())

	missing := d.MemberByName("zzz")
	assert.Equal(t, model.TypeVoid, missing.Type())

	require.True(t, d.Set(NewString("a"), NewDouble(3)))
	assert.Equal(t, 2, d.Count())
	assert.Equal(t, "[a,b]", d.Keys().String())
	assert.Equal(t, "[3,2]", d.Values().String())

	assert.False(t, d.Set(NewInt(1), NewDouble(1)))
	assert.False(t, d.Set(NewString("c"), NewString("x")))

	result := NewVector(model.TypeBool, 0, 0)
	require.True(t, d.Contain(NewStringVector("b", "q").Value, result))
	assert.Equal(t, "[true,false]", result.String())

	assert.Equal(t, "b", d.Cell(0, 1).String())
	assert.Equal(t, 2.0, d.Cell(1, 1).Double())

	require.True(t, d.Remove(NewString("a")))
	assert.False(t, d.Remove(NewString("a")))
	assert.Equal(t, model.TypeVoid, d.Member(NewString("a")).Type())
	assert.Equal(t, 2.0, d.MemberByName("b").Double())

	d.Clear()
	assert.Equal(t, 0, d.Count())
}

func TestDictionary_ParsedKeys(t *testing.T) {
	d := NewDictionary(model.TypeInt, model.TypeAny)
	require.True(t, d.SetByName("7", NewStringVector("x", "y").Value))
	assert.Equal(t, "[x,y]", d.Member(NewInt(7)).String())
	assert.False(t, d.SetByName("seven", NewInt(1)))

	c := d.Clone().AsDictionary()
	d.Clear()
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, "[x,y]", c.MemberByName("7").String())
}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(
		[]string{"sym", "price", "qty"},
		[]*Value{
			NewStringVector("A", "B", "C").Value,
			NewDoubleVector(1.5, 2.5, 3.5).Value,
			NewIntVector(10, 20, 30).Value,
		},
	)
	require.NoError(t, err)
	return tbl
}

func TestTable_Construct(t *testing.T) {
	tbl := newTestTable(t)
	assert.True(t, tbl.IsTable())
	assert.Equal(t, 3, tbl.Columns())
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, 3, tbl.Size())
	assert.Equal(t, "price", tbl.ColumnName(1))
	assert.Equal(t, model.TypeInt, tbl.ColumnType(2))
	assert.Equal(t, 2, tbl.ColumnIndex("qty"))
	assert.Equal(t, -1, tbl.ColumnIndex("nope"))
	assert.True(t, tbl.Contain("sym"))
	assert.True(t, tbl.Sizeable())

	_, err := NewTable([]string{"a", "a"}, []*Value{NewIntVector(1).Value, NewIntVector(2).Value})
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = NewTable([]string{"a", "b"}, []*Value{NewIntVector(1).Value, NewIntVector(2, 3).Value})
	assert.ErrorIs(t, err, ErrShape)

	typed, err := NewTableOfTypes([]string{"x", "y"}, []model.Type{model.TypeLong, model.TypeSymbol}, 2, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, typed.Rows())
	assert.Equal(t, model.TypeSymbol, typed.ColumnType(1))
}

func TestTable_ColumnViews(t *testing.T) {
	tbl := newTestTable(t)

	price := tbl.ColumnByName("price")
	require.NotNil(t, price)
	assert.True(t, price.IsView())
	assert.Equal(t, "price", price.Name())
	price.SetDoubleAt(0, 9)
	assert.Equal(t, 9.0, tbl.Column(1).DoubleAt(0))
	assert.False(t, price.AppendDouble([]float64{1}))

	assert.Nil(t, tbl.Column(5))
	assert.Equal(t, model.TypeVoid, tbl.Member(NewString("nope")).Type())
	assert.Equal(t, "[10,20,30]", tbl.Member(NewString("qty")).String())

	require.True(t, tbl.SetColumnName(0, "ticker"))
	assert.False(t, tbl.SetColumnName(0, "price"))
	assert.Equal(t, 0, tbl.ColumnIndex("ticker"))
	assert.Equal(t, "[ticker,price,qty]", tbl.Keys().String())
	assert.Equal(t, 3, tbl.Values().Size())
}

func TestTable_Drop(t *testing.T) {
	tbl := newTestTable(t)
	require.True(t, tbl.Drop([]int{2, 0}))
	assert.Equal(t, 1, tbl.Columns())
	assert.Equal(t, "price", tbl.ColumnName(0))
	assert.Equal(t, 0, tbl.ColumnIndex("price"))

	tbl = newTestTable(t)
	assert.False(t, tbl.Drop([]int{1, 3}))
	assert.Equal(t, 3, tbl.Columns())

	tbl = newTestTable(t)
	require.True(t, tbl.Drop([]int{1}))
	assert.Equal(t, "[sym,qty]", tbl.Keys().String())
}

func TestTable_WindowIsCopy(t *testing.T) {
	tbl := newTestTable(t)
	w := tbl.Window(1, 2, 1, 2)
	require.NotNil(t, w)
	assert.Equal(t, 2, w.Columns())
	assert.Equal(t, 2, w.Rows())
	assert.Equal(t, "2.5,20", w.StringAt(0))

	w.Column(0).SetDoubleAt(0, 100)
	assert.Equal(t, 2.5, tbl.Column(1).DoubleAt(1))

	assert.Nil(t, tbl.Window(2, 2, 0, 1))
	assert.Nil(t, tbl.Window(0, 1, 2, 2))
}

func TestTable_Rows(t *testing.T) {
	tbl := newTestTable(t)

	row := tbl.Row(1)
	require.True(t, row.IsDictionary())
	d := row.AsDictionary()
	assert.Equal(t, "B", d.MemberByName("sym").String())
	assert.Equal(t, int32(20), d.MemberByName("qty").Int())
	assert.Equal(t, model.TypeVoid, tbl.Row(3).Type())
	assert.True(t, tbl.Get(0).IsDictionary())

	assert.Equal(t, "A,1.5,10", tbl.StringAt(0))
	assert.Equal(t, "sym,price,qty\nA,1.5,10\nB,2.5,20\nC,3.5,30", tbl.String())

	more := tbl.Instance(4)
	assert.Equal(t, 0, more.Rows())
	assert.Equal(t, 3, more.Columns())

	require.True(t, tbl.AppendRows(tbl.Window(0, 3, 0, 1)))
	assert.Equal(t, 4, tbl.Rows())
	assert.Equal(t, "A,1.5,10", tbl.StringAt(3))

	other, err := NewTable([]string{"a"}, []*Value{NewIntVector(1).Value})
	require.NoError(t, err)
	assert.False(t, tbl.AppendRows(other))
}

func TestTable_CloneAndScript(t *testing.T) {
	tbl := newTestTable(t)
	tbl.SetName("trades")
	c := tbl.Clone().AsTable()
	assert.Equal(t, "trades", c.Name())
	tbl.Column(2).SetIntAt(0, -1)
	assert.Equal(t, int32(10), c.Column(2).IntAt(0))

	small, err := NewTable([]string{"a", "b"}, []*Value{NewIntVector(1).Value, NewStringVector("x").Value})
	require.NoError(t, err)
	assert.Equal(t, `table([1] as a,["x"] as b)`, small.Script())
	assert.True(t, small.Equal(small.Clone()))
}

func TestTable_ColumnViewTracksAppends(t *testing.T) {
	tbl := newTestTable(t)

	qty := tbl.ColumnByName("qty")
	require.Equal(t, 3, qty.Len())

	require.True(t, tbl.AppendRows(tbl.Window(0, 3, 1, 2)))
	assert.Equal(t, 5, qty.Len())
	assert.Equal(t, 5, qty.Cap())
	assert.Equal(t, int32(30), qty.IntAt(4))
	assert.Equal(t, "[10,20,30,20,30]", qty.String())

	sub := qty.SubVector(3, 2)
	require.NotNil(t, sub)
	require.True(t, tbl.AppendRows(tbl.Window(0, 3, 0, 1)))
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, 6, qty.Len())
}

func TestTable_AppendRowsRollsBack(t *testing.T) {
	tbl := newTestTable(t)
	before := tbl.String()

	ragged := newTableValue([]string{"sym", "price", "qty"}, []*Value{
		NewStringVector("D", "E").Value,
		NewDoubleVector(4.5, 5.5).Value,
		NewIntVector(40).Value,
	})
	assert.False(t, tbl.AppendRows(ragged))
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, before, tbl.String())
	for i := 0; i < tbl.Columns(); i++ {
		assert.Equal(t, 3, tbl.Column(i).Len(), "column %d", i)
	}

	wrong, err := NewTable([]string{"sym", "price", "qty"}, []*Value{
		NewStringVector("D").Value,
		NewStringVector("x").Value,
		NewIntVector(40).Value,
	})
	require.NoError(t, err)
	assert.False(t, tbl.AppendRows(wrong))
	assert.Equal(t, before, tbl.String())
}

func TestTable_AppendRowsAnyColumn(t *testing.T) {
	tbl, err := NewTable([]string{"v"}, []*Value{NewAnyVector(NewInt(1), NewString("a")).Value})
	require.NoError(t, err)

	more, err := NewTable([]string{"v"}, []*Value{NewAnyVector(NewDouble(2.5)).Value})
	require.NoError(t, err)
	require.True(t, tbl.AppendRows(more))
	assert.Equal(t, 3, tbl.Rows())
	assert.Equal(t, 2.5, tbl.Column(0).Get(2).Double())
}

func TestMatrix_StringAtFormatsCell(t *testing.T) {
	m := NewMatrix(model.TypeDate, 2, 2)
	for i := 0; i < 4; i++ {
		m.SetIntAt(i, int32(i))
	}
	m.SetNullAt(1)

	assert.Equal(t, "1970.01.01", m.StringAt(0))
	assert.Empty(t, m.StringAt(1))
	assert.Equal(t, "1970.01.04", m.StringAt(3))
	assert.Equal(t, m.CellString(1, 1), m.StringAt(3))
}
