package task

import (
	"strconv"
	"strings"

	"lakehouse/internal/sqltemplate"
)

// insertBatchSize is the number of rows per INSERT statement.
const insertBatchSize = 100

// sanitizeName turns a sheet or header name into an identifier: spaces
// become underscores and letters are lowercased.
func sanitizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", "_"))
}

// columnNames sanitizes header cells into column names. A blank header
// becomes column_<n> (1-based position) and repeated names get a _<k> suffix,
// since zero-length and duplicate identifiers are rejected by every dialect.
func columnNames(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		name := sanitizeName(strings.TrimSpace(h))
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		base := name
		for seen[name] > 0 {
			seen[base]++
			name = base + "_" + strconv.Itoa(seen[base])
		}
		seen[name]++
		out[i] = name
	}
	return out
}

// createTableStatements returns the DDL for a loosely typed import table:
// every column is text plus an auto-increment id primary key.
func createTableStatements(d sqltemplate.Dialect, table string, columns []string) []string {
	textType := "TEXT"
	if d == sqltemplate.SQLServer {
		textType = "NVARCHAR(MAX)"
	}
	defs := make([]string, 0, len(columns))
	for _, c := range columns {
		defs = append(defs, d.QuoteIdent(c)+" "+textType)
	}
	cols := strings.Join(defs, ", ")
	qt := d.QuoteIdent(table)

	switch d {
	case sqltemplate.MySQL:
		return []string{"CREATE TABLE IF NOT EXISTS " + qt + " (id INT AUTO_INCREMENT PRIMARY KEY, " + cols + ")"}
	case sqltemplate.SQLServer:
		return []string{"IF OBJECT_ID(N" + sqltemplate.QuoteString(table) + ", N'U') IS NULL CREATE TABLE " + qt +
			" (id INT IDENTITY(1,1) PRIMARY KEY, " + cols + ")"}
	case sqltemplate.DuckDB:
		seq := d.QuoteIdent(table + "_id_seq")
		return []string{
			"CREATE SEQUENCE IF NOT EXISTS " + seq,
			"CREATE TABLE IF NOT EXISTS " + qt + " (id INTEGER PRIMARY KEY DEFAULT nextval(" +
				sqltemplate.QuoteString(table+"_id_seq") + "), " + cols + ")",
		}
	default:
		return []string{"CREATE TABLE IF NOT EXISTS " + qt + " (id SERIAL PRIMARY KEY, " + cols + ")"}
	}
}

// insertStatement renders one multi-row INSERT with every value as a quoted
// string literal, N-prefixed for SQL Server so NVARCHAR columns keep
// non-ASCII text. Rows are padded or truncated to the column count.
func insertStatement(d sqltemplate.Dialect, table string, columns []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(d.QuoteIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.QuoteIdent(c))
	}
	b.WriteString(") VALUES ")
	for r, row := range rows {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for i := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			var v string
			if i < len(row) {
				v = row[i]
			}
			if d == sqltemplate.SQLServer {
				b.WriteByte('N')
			}
			b.WriteString(sqltemplate.QuoteString(v))
		}
		b.WriteByte(')')
	}
	return b.String()
}
