package transform

const (
	// GroupField splits combined tables into one sub-table per data frame.
	GroupField = "DATAFRAME"
)

// GroupColumns are the columns kept in each grouped sub-table.
var GroupColumns = []string{"DATE", "NO OF PASSENGERS"}

// RowGroup is a sub-table of rows sharing the same group value.
type RowGroup struct {
	Name string `json:"name"`
	Rows []*Row `json:"rows"`
}

// GroupByField splits rows by the value of field, keeping only the keep columns.
// Groups are returned in the order their value first appears.
func GroupByField(rows []*Row, field string, keep []string) []RowGroup {
	var groups []RowGroup
	index := make(map[string]int)
	for _, r := range rows {
		v, _ := r.Get(field)
		name := stringify(v)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, RowGroup{Name: name})
		}
		sub := NewRow()
		for _, k := range keep {
			v, _ := r.Get(k)
			sub.Set(k, cloneValue(v))
		}
		groups[i].Rows = append(groups[i].Rows, sub)
	}
	return groups
}

// AttachGroups sets Groups on every table whose first row carries GroupField.
func AttachGroups(tables []TableDescriptor) []TableDescriptor {
	out := make([]TableDescriptor, len(tables))
	for i, t := range tables {
		if len(t.Rows) > 0 && t.Rows[0].Has(GroupField) {
			t.Groups = GroupByField(t.Rows, GroupField, GroupColumns)
		}
		out[i] = t
	}
	return out
}
