package task

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lakehouse/internal/sqltemplate"
)

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "sales_q1", sanitizeName("Sales Q1"))
	assert.Equal(t, "amount", sanitizeName("Amount"))
}

func TestColumnNames(t *testing.T) {
	assert.Equal(t,
		[]string{"region", "column_2", "amount", "column_4", "amount_2", "amount_3"},
		columnNames([]string{"Region", "", "Amount", "   ", "amount", "AMOUNT"}))
	assert.Equal(t, []string{"a_1", "a", "a_1_2"}, columnNames([]string{"a_1", "a", "a_1"}))
}

func TestCreateTableStatements(t *testing.T) {
	cols := []string{"region", "amount"}
	tests := []struct {
		d    sqltemplate.Dialect
		want []string
	}{
		{sqltemplate.MySQL, []string{
			"CREATE TABLE IF NOT EXISTS `sales` (id INT AUTO_INCREMENT PRIMARY KEY, `region` TEXT, `amount` TEXT)",
		}},
		{sqltemplate.Postgres, []string{
			`CREATE TABLE IF NOT EXISTS "sales" (id SERIAL PRIMARY KEY, "region" TEXT, "amount" TEXT)`,
		}},
		{sqltemplate.SQLServer, []string{
			"IF OBJECT_ID(N'sales', N'U') IS NULL CREATE TABLE [sales] (id INT IDENTITY(1,1) PRIMARY KEY, [region] NVARCHAR(MAX), [amount] NVARCHAR(MAX))",
		}},
		{sqltemplate.DuckDB, []string{
			`CREATE SEQUENCE IF NOT EXISTS "sales_id_seq"`,
			`CREATE TABLE IF NOT EXISTS "sales" (id INTEGER PRIMARY KEY DEFAULT nextval('sales_id_seq'), "region" TEXT, "amount" TEXT)`,
		}},
	}
	for _, tc := range tests {
		t.Run(string(tc.d), func(t *testing.T) {
			assert.Equal(t, tc.want, createTableStatements(tc.d, "sales", cols))
		})
	}
}

func TestInsertStatement(t *testing.T) {
	got := insertStatement(sqltemplate.MySQL, "sales", []string{"region", "note"}, [][]string{
		{"east", "it's fine"},
		{"west"},
		{"north", "x", "overflow"},
	})
	assert.Equal(t,
		"INSERT INTO `sales` (`region`, `note`) VALUES ('east', 'it''s fine'), ('west', ''), ('north', 'x')",
		got)
}

func TestInsertStatement_SQLServerUnicodeLiterals(t *testing.T) {
	got := insertStatement(sqltemplate.SQLServer, "sales", []string{"city"}, [][]string{
		{"Zürich"},
		{"O'Hare"},
	})
	assert.Equal(t, "INSERT INTO [sales] ([city]) VALUES (N'Zürich'), (N'O''Hare')", got)
}
