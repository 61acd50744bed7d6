package transform

import (
	"strconv"
	"strings"
)

const (
	// ResultsField holds the result series of a forecast response.
	ResultsField = "results"
	// SelectAll is the selector that limits output to AllowedTables.
	SelectAll = "ALL"
)

// AllowedTables are the only top-level fields shown when the selector is SelectAll.
var AllowedTables = []string{
	"combined_table",
	"grouped_results_by_prefix_table",
	"grouped_summary_table",
	"results",
}

// TableDescriptor is one display unit produced from a forecast response.
type TableDescriptor struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Columns   []string   `json:"columns"`
	Headers   []string   `json:"headers"`
	Rows      []*Row     `json:"rows"`
	ChartData *ChartData `json:"chartData,omitempty"`
	Groups    []RowGroup `json:"groups,omitempty"`
}

// Generation is the output of one generator pass.
type Generation struct {
	Tables     []TableDescriptor
	Collisions []Collision
}

// Generator discovers tables in a forecast response.
type Generator struct {
	Normalizer Normalizer
	// AllowList overrides AllowedTables when non-nil.
	AllowList []string
	// Unfiltered shows every table-shaped field whatever the selector.
	Unfiltered bool
}

// GenerateTableConfigs runs the default generator and returns its tables.
func GenerateTableConfigs(resp *Row, selector string) []TableDescriptor {
	return Generator{}.Generate(resp, selector).Tables
}

// Generate returns descriptors in discovery order: results first, then each field in
// document order with nested tables right after their parent. It never fails; a nil or
// shapeless response gives no tables.
func (g Generator) Generate(resp *Row, selector string) Generation {
	out := Generation{Tables: []TableDescriptor{}}
	if resp == nil {
		return out
	}
	if selector == "" {
		selector = SelectAll
	}

	allowed := make(map[string]struct{})
	allowList := g.AllowList
	if allowList == nil {
		allowList = AllowedTables
	}
	for _, name := range allowList {
		allowed[name] = struct{}{}
	}

	ids := make(map[string]int)
	emit := func(id, title string, rows []*Row, chart *ChartData) {
		columns := columnsOf(rows)
		out.Tables = append(out.Tables, TableDescriptor{
			ID:        uniqueID(ids, id),
			Title:     title,
			Columns:   columns,
			Headers:   HeadersOf(columns),
			Rows:      rows,
			ChartData: chart,
		})
	}

	if results, ok := resp.Get(ResultsField); ok {
		normalized := g.Normalizer.Normalize(results)
		out.Collisions = normalized.Collisions
		if len(normalized.Rows) > 0 {
			emit(ResultsField, ResultsField, normalized.Rows, PrepareChartData(normalized.Rows))
		}
	}

	for _, key := range resp.Keys() {
		if key == ResultsField {
			continue
		}
		if selector == SelectAll && !g.Unfiltered {
			if _, ok := allowed[key]; !ok {
				continue
			}
		}

		value, _ := resp.Get(key)
		switch shape := Classify(value).(type) {
		case TableShape:
			emit(key, key, cloneRows(shape.Rows), nil)
		case NestedShape:
			for _, sub := range shape.Tables {
				emit(key+"-"+sub.Name, key+" - "+sub.Name, cloneRows(sub.Rows), nil)
			}
		}
	}
	return out
}

// uniqueID suffixes id when an earlier descriptor already used it.
func uniqueID(seen map[string]int, id string) string {
	n := seen[id]
	seen[id] = n + 1
	if n == 0 {
		return id
	}
	candidate := id + "-" + strconv.Itoa(n+1)
	for seen[candidate] > 0 {
		n++
		candidate = id + "-" + strconv.Itoa(n+1)
	}
	seen[candidate] = 1
	return candidate
}

// columnsOf returns the generic table headers: the first row's own keys.
func columnsOf(rows []*Row) []string {
	if len(rows) == 0 {
		return []string{}
	}
	return rows[0].Keys()
}

func cloneRows(rows []*Row) []*Row {
	out := make([]*Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// HeadersOf turns column keys into display headers, "Buses_CO" becoming "Buses CO".
func HeadersOf(columns []string) []string {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = strings.ReplaceAll(c, "_", " ")
	}
	return headers
}
