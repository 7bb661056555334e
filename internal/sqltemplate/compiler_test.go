package sqltemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehouse/internal/domain"
)

func TestExpand_ConditionalInclusion(t *testing.T) {
	assert.Equal(t, "A  C", Expand("A [x:B] C", map[string]any{}))
	assert.Equal(t, "A B C", Expand("A [x:B] C", map[string]any{"x": 1}))
	assert.Equal(t, "A B C", Expand("A [x:B] C", map[string]any{"x": nil}), "presence of the key is enough")
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		params    map[string]any
		dialect   Dialect
		wantSQL   string
		wantNames []string
	}{
		{
			name:      "plain placeholders",
			template:  "SELECT * FROM t WHERE a = {a} AND b = {b}",
			params:    map[string]any{"a": 1, "b": 2},
			dialect:   Postgres,
			wantSQL:   "SELECT * FROM t WHERE a = $1 AND b = $2",
			wantNames: []string{"a", "b"},
		},
		{
			name:      "repeated name yields distinct ordinals",
			template:  "SELECT {a}, {b}, {a}",
			params:    map[string]any{"a": 1, "b": 2},
			dialect:   Postgres,
			wantSQL:   "SELECT $1, $2, $3",
			wantNames: []string{"a", "b", "a"},
		},
		{
			name:      "kept conditional contributes placeholders in order",
			template:  "SELECT * FROM t WHERE 1=1[region: AND region = {region}] AND y = {year}",
			params:    map[string]any{"region": "east", "year": 2024},
			dialect:   Postgres,
			wantSQL:   "SELECT * FROM t WHERE 1=1 AND region = $1 AND y = $2",
			wantNames: []string{"region", "year"},
		},
		{
			name:      "dropped conditional removes its placeholders",
			template:  "SELECT * FROM t WHERE 1=1[region: AND region = {region}] AND y = {year}",
			params:    map[string]any{"year": 2024},
			dialect:   Postgres,
			wantSQL:   "SELECT * FROM t WHERE 1=1 AND y = $1",
			wantNames: []string{"year"},
		},
		{
			name:      "conditional name need not be a placeholder",
			template:  "SELECT * FROM t[desc: ORDER BY x DESC]",
			params:    map[string]any{"desc": true},
			dialect:   Postgres,
			wantSQL:   "SELECT * FROM t ORDER BY x DESC",
			wantNames: nil,
		},
		{
			name:      "nested brackets are literal content",
			template:  "X [a:arr[1] = {v}] Y",
			params:    map[string]any{"a": 1, "v": 2},
			dialect:   Postgres,
			wantSQL:   "X arr[1 = $1] Y",
			wantNames: []string{"v"},
		},
		{
			name:      "token joined across a dropped conditional",
			template:  "SELECT {a[x:]b}",
			params:    map[string]any{"ab": 1},
			dialect:   Postgres,
			wantSQL:   "SELECT $1",
			wantNames: []string{"ab"},
		},
		{
			name:      "token joined across a kept conditional",
			template:  "SELECT [x:{]ab}",
			params:    map[string]any{"x": 1, "ab": 2},
			dialect:   Postgres,
			wantSQL:   "SELECT $1",
			wantNames: []string{"ab"},
		},
		{
			name:      "malformed tokens are literal",
			template:  "SELECT '{not a token}', '[no colon]', {x",
			params:    map[string]any{},
			dialect:   Postgres,
			wantSQL:   "SELECT '{not a token}', '[no colon]', {x",
			wantNames: nil,
		},
		{
			name:      "unterminated conditional is literal",
			template:  "A [x:B {y}",
			params:    map[string]any{"y": 1},
			dialect:   Postgres,
			wantSQL:   "A [x:B $1",
			wantNames: []string{"y"},
		},
		{
			name:      "mysql placeholders",
			template:  "SELECT {a}, {b}",
			params:    map[string]any{"a": 1, "b": 2},
			dialect:   MySQL,
			wantSQL:   "SELECT ?, ?",
			wantNames: []string{"a", "b"},
		},
		{
			name:      "sqlserver placeholders",
			template:  "SELECT {a}, {b}",
			params:    map[string]any{"a": 1, "b": 2},
			dialect:   SQLServer,
			wantSQL:   "SELECT @p1, @p2",
			wantNames: []string{"a", "b"},
		},
		{
			name:      "duckdb placeholders",
			template:  "SELECT {a}",
			params:    map[string]any{"a": 1},
			dialect:   DuckDB,
			wantSQL:   "SELECT $1",
			wantNames: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Compile(tt.template, tt.params, tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, q.SQL)
			assert.Equal(t, tt.wantNames, q.ParamNames)
		})
	}
}

func TestCompile_MissingParameterFormedByExpansion(t *testing.T) {
	_, err := Compile("SELECT {a[x:]b}", map[string]any{}, Postgres)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "invalid input: missing parameter `ab`", err.Error())
}

func TestCompile_RoundTrip(t *testing.T) {
	template := "{a} {b} {a} {c} {b} {a}"
	params := map[string]any{"a": 1, "b": 2, "c": 3}

	q, err := Compile(template, params, Postgres)
	require.NoError(t, err)

	assert.Equal(t, "$1 $2 $3 $4 $5 $6", q.SQL)
	assert.Equal(t, []string{"a", "b", "a", "c", "b", "a"}, q.ParamNames)
}

func TestCompile_MissingParameter(t *testing.T) {
	q, err := Compile("{missing}", map[string]any{}, Postgres)
	require.Error(t, err)
	assert.Nil(t, q)

	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "invalid input: missing parameter `missing`", err.Error())
}

func TestCompile_MissingParameterNamesFirstInOrder(t *testing.T) {
	_, err := Compile("{a} {b} {c}", map[string]any{"a": 1}, Postgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "`b`")
}

func TestCompile_Deterministic(t *testing.T) {
	template := "SELECT * FROM t WHERE 1=1[x: AND x = {x}][y: AND y = {y}] LIMIT {n}"
	p1 := map[string]any{"x": "a", "n": 10}
	p2 := map[string]any{"x": 99, "n": "whatever"}

	q1, err := Compile(template, p1, Postgres)
	require.NoError(t, err)
	q2, err := Compile(template, p2, Postgres)
	require.NoError(t, err)
	assert.Equal(t, q1, q2)
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{
		"postgresql": Postgres,
		"PostgreSQL": Postgres,
		"postgres":   Postgres,
		"MySQL":      MySQL,
		"mssql":      SQLServer,
		"sqlserver":  SQLServer,
		"duckdb":     DuckDB,
	} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDialect("oracle")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "unsupported database type")
}
