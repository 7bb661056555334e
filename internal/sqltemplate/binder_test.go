package sqltemplate

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"string", "east", "east"},
		{"integer number", json.Number("42"), int64(42)},
		{"negative integer", json.Number("-7"), int64(-7)},
		{"integral float literal", json.Number("3.0"), int64(3)},
		{"exponent integral", json.Number("1e3"), int64(1000)},
		{"fractional number", json.Number("2.5"), 2.5},
		{"beyond int64", json.Number("1e20"), 1e20},
		{"float64 input", 12.0, int64(12)},
		{"float64 fractional", 0.25, 0.25},
		{"bool", true, true},
		{"null", nil, sql.NullString{}},
		{"array drops non-strings", []any{"a", "b", json.Number("2")}, []string{"a", "b"}},
		{"empty array", []any{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BindValue("p", tt.in, Postgres)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBindValue_Unsupported(t *testing.T) {
	_, err := BindValue("filter", map[string]any{"a": 1}, Postgres)
	require.Error(t, err)
	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "unsupported parameter type for `filter`", err.Error())

	_, err = BindValue("ids", []any{"a"}, MySQL)
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "ids", bindErr.Name)
}

func TestBind_FromDecodedJSON(t *testing.T) {
	params, err := DecodeParams(json.RawMessage(`{"region":"east","limit":10,"ratio":0.5,"tags":["a","b",2],"flag":false,"none":null}`))
	require.NoError(t, err)

	q, err := Compile("SELECT * FROM s WHERE region = {region} AND tag = ANY({tags}) AND r > {ratio} AND f = {flag} AND n IS {none} LIMIT {limit} OFFSET {limit}", params, Postgres)
	require.NoError(t, err)

	args, err := Bind(q, params, Postgres)
	require.NoError(t, err)
	assert.Equal(t, []any{"east", []string{"a", "b"}, 0.5, false, sql.NullString{}, int64(10), int64(10)}, args)
}

func TestBind_MissingParameter(t *testing.T) {
	_, err := Bind(&BuiltQuery{SQL: "$1", ParamNames: []string{"x"}}, map[string]any{}, Postgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing parameter for `x`")
}

func TestDecodeParams(t *testing.T) {
	params, err := DecodeParams(nil)
	require.NoError(t, err)
	assert.Empty(t, params)

	params, err = DecodeParams(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, params)

	params, err = DecodeParams(json.RawMessage(`{"big": 9007199254740993}`))
	require.NoError(t, err)
	v, err := BindValue("big", params["big"], Postgres)
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), v, "integers beyond 2^53 keep full precision")

	_, err = DecodeParams(json.RawMessage(`[1,2]`))
	require.Error(t, err)
}
