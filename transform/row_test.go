package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject_PreservesOrder(t *testing.T) {
	row := mustDecode(t, `{"z":1,"a":{"y":[1,{"b":true}],"c":null},"m":"x"}`)

	assert.Equal(t, []string{"z", "a", "m"}, row.Keys())
	assert.Equal(t, `{"z":1,"a":{"y":[1,{"b":true}],"c":null},"m":"x"}`, marshal(t, row))
}

func TestDecodeObject_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	row := mustDecode(t, `{"a":1,"b":2,"a":3}`)

	assert.Equal(t, 2, row.Len())
	a, _ := row.Get("a")
	assert.Equal(t, json.Number("3"), a)
}

func TestDecodeObject_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `[1,2]`},
		{"null", `null`},
		{"scalar", `"x"`},
		{"truncated", `{"a":`},
		{"trailing", `{"a":1} {}`},
		{"empty", ``},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeObject([]byte(test.body))
			assert.Error(t, err)
		})
	}
}

func TestDecodeObject_ErrorKinds(t *testing.T) {
	_, err := DecodeObject([]byte(`[{"a":1}]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = DecodeObject([]byte(`{"a":`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestDecodeObject_OrderInsideArraysOfObjects(t *testing.T) {
	row := mustDecode(t, `{"rows":[{"z":1,"y":{"q":2,"p":3}},{"b":1,"a":2}]}`)

	rows, _ := row.Get("rows")
	list := rows.([]any)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"z", "y"}, list[0].(*Row).Keys())
	nested, _ := list[0].(*Row).Get("y")
	assert.Equal(t, []string{"q", "p"}, nested.(*Row).Keys())
	assert.Equal(t, []string{"b", "a"}, list[1].(*Row).Keys())
}

func TestRow_MarshalKeepsSetOrder(t *testing.T) {
	r := RowOf("b", 1, "a", "x", "c", []any{RowOf("k", true)})
	r.Set("b", 2)

	assert.Equal(t, `{"b":2,"a":"x","c":[{"k":true}]}`, marshal(t, r))
}

func TestRow_UnmarshalJSONInsideStruct(t *testing.T) {
	var payload struct {
		Data *Row `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"b":1,"a":2}}`), &payload))

	assert.Equal(t, []string{"b", "a"}, payload.Data.Keys())
}

func TestRow_CloneIsDeep(t *testing.T) {
	orig := mustDecode(t, `{"a":{"b":1},"list":[{"c":2}]}`)
	cp := orig.Clone()

	inner, _ := cp.Get("a")
	inner.(*Row).Set("b", 99)
	list, _ := cp.Get("list")
	list.([]any)[0].(*Row).Set("c", 99)

	assert.Equal(t, `{"a":{"b":1},"list":[{"c":2}]}`, marshal(t, orig))
}

func TestRow_NilSafe(t *testing.T) {
	var r *Row
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Has("a"))
	assert.Nil(t, r.Keys())
	assert.Equal(t, "null", marshal(t, r))
}
