package transform

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

const (
	// DateField is the column every normalized row is keyed by.
	DateField = "Date"
	// DefaultValueField is the per-row value read from each result series.
	DefaultValueField = "No Of Passengers"

	seriesKeyField   = "key"
	seriesTableField = "table"
)

// dateLayouts are tried in order when sorting rows by their Date field.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// Collision records a (Date, key) pair that was written more than once.
// The later value wins; the earlier one is lost. A series keyed "Date" would
// overwrite the date column itself; its values are dropped and reported with Key "Date".
type Collision struct {
	Date any    `json:"date"`
	Key  string `json:"key"`
}

// NormalizeResult is the output of a normalization pass.
type NormalizeResult struct {
	Rows       []*Row
	Collisions []Collision
}

// Normalizer pivots result series into one row per date.
type Normalizer struct {
	// ValueField is read from each series row. Empty means DefaultValueField.
	ValueField string
}

// NormalizeResults pivots results with the default value field.
func NormalizeResults(results any) []*Row {
	return Normalizer{}.Normalize(results).Rows
}

type dateBucket struct {
	row *Row
}

// Normalize converts [{key, table:[{Date, value}]}] into [{Date, key: value, ...}] sorted by date.
// Malformed input yields an empty result.
func (n Normalizer) Normalize(results any) NormalizeResult {
	out := NormalizeResult{Rows: []*Row{}}

	entries, ok := results.([]any)
	if !ok {
		return out
	}

	valueField := n.ValueField
	if valueField == "" {
		valueField = DefaultValueField
	}

	buckets := make(map[string]*dateBucket)
	var absent *dateBucket
	var order []*dateBucket

	bucketFor := func(date any) *dateBucket {
		if date == nil {
			if absent == nil {
				absent = &dateBucket{row: RowOf(DateField, nil)}
				order = append(order, absent)
			}
			return absent
		}
		key := stringify(date)
		b, ok := buckets[key]
		if !ok {
			b = &dateBucket{row: RowOf(DateField, date)}
			buckets[key] = b
			order = append(order, b)
		}
		return b
	}

	for _, e := range entries {
		entry, ok := e.(*Row)
		if !ok || entry == nil {
			continue
		}
		column, ok := seriesKey(entry)
		if !ok {
			continue
		}
		tv, _ := entry.Get(seriesTableField)
		table, ok := tv.([]any)
		if !ok {
			continue
		}

		for _, item := range table {
			row, ok := item.(*Row)
			if !ok || row == nil {
				continue
			}
			date, _ := row.Get(DateField)
			if column == DateField {
				if row.Has(valueField) {
					out.Collisions = append(out.Collisions, Collision{Date: date, Key: column})
				}
				continue
			}
			b := bucketFor(date)

			value, ok := row.Get(valueField)
			if !ok {
				continue
			}
			if b.row.Has(column) {
				out.Collisions = append(out.Collisions, Collision{Date: date, Key: column})
			}
			b.row.Set(column, cloneValue(value))
		}
	}

	for _, b := range order {
		out.Rows = append(out.Rows, b.row)
	}
	SortByDate(out.Rows)
	return out
}

// SortByDate sorts rows ascending by their parsed Date field. The sort is stable;
// rows whose date cannot be parsed keep their relative order after all dated rows.
func SortByDate(rows []*Row) {
	type keyed struct {
		t  time.Time
		ok bool
	}
	keys := make(map[*Row]keyed, len(rows))
	for _, r := range rows {
		v, _ := r.Get(DateField)
		t, ok := ParseDate(v)
		keys[r] = keyed{t: t, ok: ok}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := keys[rows[i]], keys[rows[j]]
		if a.ok && b.ok {
			return a.t.Before(b.t)
		}
		return a.ok && !b.ok
	})
}

// ParseDate interprets v as a calendar date. Numbers are epoch milliseconds.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	case json.Number:
		if ms, err := t.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	case time.Time:
		return t, true
	}
	return time.Time{}, false
}

// seriesKey returns the column name an entry contributes to.
func seriesKey(entry *Row) (string, bool) {
	v, ok := entry.Get(seriesKeyField)
	if !ok || v == nil {
		return "", false
	}
	return stringify(v), true
}
