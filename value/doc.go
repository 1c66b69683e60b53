// Package value implements the polymorphic columnar value model: scalars,
// pairs, vectors, matrices, sets, dictionaries and tables behind the single
// Value type.
//
// Narrowed views (Vector, Matrix, Set, Dictionary, Table) embed the Value
// they were taken from, so every Value method stays available:
//
//	v := value.NewVector(model.TypeInt, 0, 8)
//	v.AppendInt([]int32{1, 2, 3})
//	fmt.Println(v.Get(2).Int(), v.SubVector(1, 2))
//
// Sub-vectors and table columns are views: reads and element writes go
// through to the backing storage, structural changes on a view fail.
package value

// Container is implemented by every form with indexable elements.
type Container interface {
	Size() int
	Get(i int) *Value
	String() string
}

// Keyed is implemented by sets and dictionaries.
type Keyed interface {
	Container
	Keys() *Value
	Contain(target *Value, result *Vector) bool
	Clear()
}

// Tabular is implemented by tables.
type Tabular interface {
	Container
	Columns() int
	Rows() int
	Column(i int) *Vector
	ColumnName(i int) string
}

var (
	_ Container = (*Value)(nil)
	_ Container = (*Vector)(nil)
	_ Keyed     = (*Set)(nil)
	_ Keyed     = (*Dictionary)(nil)
	_ Tabular   = (*Table)(nil)
)
