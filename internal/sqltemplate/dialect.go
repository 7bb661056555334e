// Package sqltemplate compiles query templates with conditional fragments
// and named placeholders into parameterized statements, and binds JSON
// parameter values to driver values.
//
// Template syntax:
//
//	[name:content]  content is kept when params has key name, else dropped
//	{name}          replaced by the dialect's next positional placeholder
//
// Conditional fragments do not nest: the first ']' closes the fragment.
package sqltemplate

import (
	"strconv"
	"strings"

	"lakehouse/internal/domain"
)

// Dialect selects placeholder syntax and the native bind types.
type Dialect string

// Supported dialects.
const (
	Postgres  Dialect = "postgres"
	MySQL     Dialect = "mysql"
	SQLServer Dialect = "sqlserver"
	DuckDB    Dialect = "duckdb"
)

// ParseDialect maps a registered db_type to a Dialect. Matching is case-insensitive.
func ParseDialect(dbType string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlserver", "mssql":
		return SQLServer, nil
	case "duckdb":
		return DuckDB, nil
	default:
		return "", domain.ErrValidation("unsupported database type: %s", dbType)
	}
}

// Placeholder returns the positional placeholder for the 1-based ordinal n.
func (d Dialect) Placeholder(n int) string {
	switch d {
	case MySQL:
		return "?"
	case SQLServer:
		return "@p" + strconv.Itoa(n)
	default:
		return "$" + strconv.Itoa(n)
	}
}

// SupportsArrays reports whether text arrays can be bound natively.
func (d Dialect) SupportsArrays() bool {
	return d == Postgres || d == DuckDB
}
