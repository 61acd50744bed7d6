// Package transform reshapes untyped forecast payloads into tables and chart data.
package transform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/iancoleman/orderedmap"
)

// ErrNotObject is returned when a payload does not decode to a JSON object.
var ErrNotObject = errors.New("payload is not a JSON object")

// ErrInvalidJSON is returned for payloads that are not well-formed JSON.
var ErrInvalidJSON = errors.New("payload is not valid JSON")

// Row is a JSON object that keeps its keys in the order they were first set.
// Nested objects decode to *Row, arrays to []any, numbers to json.Number.
type Row struct {
	fields *orderedmap.OrderedMap
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{fields: orderedmap.New()}
}

// RowOf builds a row from alternating key/value arguments. Handy in tests and fixtures.
func RowOf(kv ...any) *Row {
	r := NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		r.Set(key, kv[i+1])
	}
	return r
}

// Set stores value under key. An existing key keeps its position.
func (r *Row) Set(key string, value any) {
	if r.fields == nil {
		r.fields = orderedmap.New()
	}
	r.fields.Set(key, value)
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (any, bool) {
	if r == nil || r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Has reports whether key is an own field of the row.
func (r *Row) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns a copy of the row's keys in order.
func (r *Row) Keys() []string {
	if r == nil {
		return nil
	}
	if r.fields == nil {
		return []string{}
	}
	keys := r.fields.Keys()
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Len returns the number of fields.
func (r *Row) Len() int {
	if r == nil || r.fields == nil {
		return 0
	}
	return len(r.fields.Keys())
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	if r == nil {
		return nil
	}
	out := NewRow()
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		out.Set(k, cloneValue(v))
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Row:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON writes the fields in key order.
func (r *Row) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := gojson.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		v, _ := r.Get(k)
		vb, err := gojson.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeObject(data)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}

// DecodeObject decodes data into an ordered row. The top-level value must be an object.
func DecodeObject(data []byte) (*Row, error) {
	if !gojson.Valid(data) {
		return nil, ErrInvalidJSON
	}
	if trimmed := bytes.TrimSpace(data); trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	om := orderedmap.New()
	om.SetUseNumber(true)
	if err := om.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return rowFromOrdered(om), nil
}

func rowFromOrdered(om *orderedmap.OrderedMap) *Row {
	row := NewRow()
	for _, k := range om.Keys() {
		v, _ := om.Get(k)
		row.Set(k, fromOrdered(v))
	}
	return row
}

// fromOrdered converts decoded orderedmap values into Rows, recursing through arrays.
func fromOrdered(v any) any {
	switch t := v.(type) {
	case orderedmap.OrderedMap:
		return rowFromOrdered(&t)
	case *orderedmap.OrderedMap:
		return rowFromOrdered(t)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		row := NewRow()
		for _, k := range keys {
			row.Set(k, fromOrdered(t[k]))
		}
		return row
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = fromOrdered(item)
		}
		return out
	default:
		return v
	}
}

// stringify renders a scalar the way it would appear as a label.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		b, err := gojson.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
