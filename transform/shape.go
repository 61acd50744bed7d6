package transform

// Shape is the discovered form of one field of a forecast response.
// It is one of TableShape, NestedShape, ScalarShape or EmptyShape.
type Shape interface {
	isShape()
}

// TableShape is a non-empty array whose every element is an object.
type TableShape struct {
	Rows []*Row
}

// NamedTable is a table found one level inside a nested object.
type NamedTable struct {
	Name string
	Rows []*Row
}

// NestedShape is an object; Tables lists its fields that are themselves tables, in order.
type NestedShape struct {
	Tables []NamedTable
}

// ScalarShape is anything that cannot be displayed as a table.
type ScalarShape struct {
	Value any
}

// EmptyShape is null, a missing value or an empty array.
type EmptyShape struct{}

func (TableShape) isShape()  {}
func (NestedShape) isShape() {}
func (ScalarShape) isShape() {}
func (EmptyShape) isShape()  {}

// Classify inspects v and returns its shape. Objects are descended one level only.
func Classify(v any) Shape {
	switch t := v.(type) {
	case nil:
		return EmptyShape{}
	case []any:
		if len(t) == 0 {
			return EmptyShape{}
		}
		if rows, ok := objectRows(t); ok {
			return TableShape{Rows: rows}
		}
		return ScalarShape{Value: v}
	case []*Row:
		if len(t) == 0 {
			return EmptyShape{}
		}
		for _, r := range t {
			if r == nil {
				return ScalarShape{Value: v}
			}
		}
		return TableShape{Rows: t}
	case *Row:
		if t == nil {
			return EmptyShape{}
		}
		nested := NestedShape{}
		for _, k := range t.Keys() {
			v, _ := t.Get(k)
			if table, ok := classifyTable(v); ok {
				nested.Tables = append(nested.Tables, NamedTable{Name: k, Rows: table.Rows})
			}
		}
		return nested
	default:
		return ScalarShape{Value: v}
	}
}

func classifyTable(v any) (TableShape, bool) {
	switch v.(type) {
	case []any, []*Row:
		table, ok := Classify(v).(TableShape)
		return table, ok
	}
	return TableShape{}, false
}

// objectRows returns items as rows when every one of them is a non-null object.
func objectRows(items []any) ([]*Row, bool) {
	rows := make([]*Row, 0, len(items))
	for _, item := range items {
		r, ok := item.(*Row)
		if !ok || r == nil {
			return nil, false
		}
		rows = append(rows, r)
	}
	return rows, true
}
