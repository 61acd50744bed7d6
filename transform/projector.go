package transform

// BusColumns is the fixed column order of the depot bus/total summary table.
var BusColumns = []string{
	"Date",
	"Buses_0_",
	"Buses_CO",
	"Buses_ME",
	"Buses_Grand_Total",
	"Total_0_",
	"Total_CO",
	"Total_ME",
	"Grand Total",
}

// ProjectColumns keeps only desiredKeys on each row, in desiredKeys order.
// Keys missing from a row are omitted rather than filled.
func ProjectColumns(rows []*Row, desiredKeys []string) []*Row {
	out := make([]*Row, 0, len(rows))
	for _, r := range rows {
		projected := NewRow()
		for _, k := range desiredKeys {
			if v, ok := r.Get(k); ok {
				projected.Set(k, cloneValue(v))
			}
		}
		out = append(out, projected)
	}
	return out
}

// ApplyProjections projects the rows of every table whose id has an entry in projections.
func ApplyProjections(tables []TableDescriptor, projections map[string][]string) []TableDescriptor {
	out := make([]TableDescriptor, len(tables))
	for i, t := range tables {
		keys, ok := projections[t.ID]
		if ok {
			t.Rows = ProjectColumns(t.Rows, keys)
			t.Columns = columnsOf(t.Rows)
			t.Headers = HeadersOf(t.Columns)
		}
		out[i] = t
	}
	return out
}
