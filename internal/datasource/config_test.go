package datasource

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakehouse/internal/domain"
	"lakehouse/internal/sqltemplate"
)

func TestParseConnConfig_Defaults(t *testing.T) {
	tests := []struct {
		dialect sqltemplate.Dialect
		port    int
	}{
		{sqltemplate.Postgres, 5432},
		{sqltemplate.MySQL, 3306},
		{sqltemplate.SQLServer, 1433},
	}
	for _, tc := range tests {
		t.Run(string(tc.dialect), func(t *testing.T) {
			cfg, err := ParseConnConfig(tc.dialect, map[string]any{
				"host": "db.internal", "database": "sales", "username": "reader",
			})
			require.NoError(t, err)
			assert.Equal(t, tc.port, cfg.Port)
			assert.Empty(t, cfg.Password)
		})
	}
}

func TestParseConnConfig_PortForms(t *testing.T) {
	base := func(port any) map[string]any {
		return map[string]any{"host": "h", "database": "d", "username": "u", "port": port}
	}
	for name, port := range map[string]any{
		"float":       float64(6543),
		"json number": json.Number("6543"),
		"string":      "6543",
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := ParseConnConfig(sqltemplate.Postgres, base(port))
			require.NoError(t, err)
			assert.Equal(t, 6543, cfg.Port)
		})
	}

	for name, port := range map[string]any{
		"fraction":     6543.5,
		"out of range": float64(70000),
		"text":         "abc",
		"bool":         true,
	} {
		t.Run("invalid "+name, func(t *testing.T) {
			_, err := ParseConnConfig(sqltemplate.Postgres, base(port))
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestParseConnConfig_MissingFields(t *testing.T) {
	_, err := ParseConnConfig(sqltemplate.MySQL, map[string]any{"host": "h", "database": "d"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "username")

	_, err = ParseConnConfig(sqltemplate.MySQL, map[string]any{"host": 42, "database": "d", "username": "u"})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "host")
}

func TestParseConnConfig_DuckDB(t *testing.T) {
	cfg, err := ParseConnConfig(sqltemplate.DuckDB, map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, cfg.Database)
	assert.Equal(t, "?enable_external_access=false&lock_configuration=true", BuildDSN(sqltemplate.DuckDB, cfg, 0))

	cfg, err = ParseConnConfig(sqltemplate.DuckDB, map[string]any{"database": "lake.duckdb"})
	require.NoError(t, err)
	assert.Equal(t, "lake.duckdb", cfg.Database)

	for _, name := range []string{
		"/data/lake.duckdb",
		"../t2/lake.duckdb",
		`..\lake.duckdb`,
		"..",
		":memory:",
		"lake.duckdb?enable_external_access=true",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConnConfig(sqltemplate.DuckDB, map[string]any{"database": name})
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestBuildDSN(t *testing.T) {
	cfg := ConnConfig{Host: "db", Port: 5432, Database: "sales", Username: "u", Password: "p@ss"}

	pg := BuildDSN(sqltemplate.Postgres, cfg, 5*time.Second)
	assert.Equal(t, "postgres://u:p%40ss@db:5432/sales?connect_timeout=5", pg)

	cfg.Port = 3306
	my := BuildDSN(sqltemplate.MySQL, cfg, 0)
	assert.Equal(t, "u:p@ss@tcp(db:3306)/sales?parseTime=true", my)

	cfg.Port = 1433
	ms := BuildDSN(sqltemplate.SQLServer, cfg, 0)
	assert.Equal(t, "sqlserver://u:p%40ss@db:1433?database=sales", ms)
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "pgx", DriverName(sqltemplate.Postgres))
	assert.Equal(t, "mysql", DriverName(sqltemplate.MySQL))
	assert.Equal(t, "sqlserver", DriverName(sqltemplate.SQLServer))
	assert.Equal(t, "duckdb", DriverName(sqltemplate.DuckDB))
}

func TestRedact(t *testing.T) {
	in := map[string]any{"host": "h", "password": "secret"}
	out := Redact(in)
	assert.Equal(t, "h", out["host"])
	assert.Equal(t, "********", out["password"])
	assert.Equal(t, "secret", in["password"])
}
