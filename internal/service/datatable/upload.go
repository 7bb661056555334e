package datatable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"lakehouse/internal/datasource"
	"lakehouse/internal/domain"
	"lakehouse/internal/spreadsheet"
	"lakehouse/internal/sqltemplate"
)

// Upload replaces the rows of one partition of a table with the first sheet
// of a workbook and returns the number of rows inserted.
//
// Every partition column needs a value in partitions and every data column
// needs a header in the sheet. Rows matching all partition values are
// deleted, then each sheet row is inserted. Re-uploading the same file with
// the same partition values leaves the table unchanged. Only PostgreSQL
// data sources are supported.
func (s *Service) Upload(ctx context.Context, tableID string, file io.Reader, partitions map[string]string) (int, error) {
	table, err := s.Get(ctx, tableID)
	if err != nil {
		return 0, err
	}
	logger := s.logger.With("table_id", tableID, "tenant_id", table.TenantID)

	cols, err := s.columns.ListByTable(ctx, tableID)
	if err != nil {
		return 0, fmt.Errorf("list columns: %w", err)
	}
	if len(cols) == 0 {
		return 0, domain.ErrValidation("No columns defined for table %s", table.Name)
	}
	partCols, dataCols := domain.SplitPartitionColumns(cols)

	for _, c := range partCols {
		if _, ok := partitions[c.Name]; !ok {
			return 0, domain.ErrValidation("Missing partition value for column: %s", c.Name)
		}
	}

	sheet, err := spreadsheet.ReadFirstSheet(file)
	if err != nil {
		return 0, domain.ErrValidation("Failed to parse Excel file: %v", err)
	}
	headers := sheet.HeaderIndex()
	positions := make([]int, len(dataCols))
	for i, c := range dataCols {
		pos, ok := headers[c.Name]
		if !ok {
			return 0, domain.ErrValidation("Missing column in Excel: %s", c.Name)
		}
		positions[i] = pos
	}

	ds, err := s.sources.GetByID(ctx, table.DataSourceID)
	if err != nil {
		return 0, err
	}
	dialect, err := sqltemplate.ParseDialect(ds.DBType)
	if err != nil || dialect != sqltemplate.Postgres {
		return 0, domain.ErrValidation("Unsupported database type: %s", ds.DBType)
	}

	pool, err := s.connector.Open(ctx, *ds)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return 0, err
		}
		return 0, domain.ErrDatabase(err, "Failed to connect to %s", ds.Name)
	}
	defer pool.DB.Close() //nolint:errcheck

	target := dialect.QuoteQualified(table.Name)
	inserted, err := replacePartition(ctx, pool.DB, dialect, target, partCols, dataCols, positions, partitions, sheet.Rows)
	if err != nil {
		return 0, err
	}
	logger.Info("partition uploaded", "rows_inserted", inserted, "partitions", len(partCols))

	s.refreshUsage(ctx, pool, table, partCols)
	return inserted, nil
}

// replacePartition deletes the partition and inserts rows in one transaction.
func replacePartition(
	ctx context.Context,
	db *sql.DB,
	d sqltemplate.Dialect,
	target string,
	partCols, dataCols []domain.DataTableColumn,
	positions []int,
	partitions map[string]string,
	rows [][]spreadsheet.Cell,
) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, domain.ErrDatabase(err, "Failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, deleteStatement(d, target, partCols, partitions)); err != nil {
		return 0, domain.ErrExecution(err, "Failed to delete existing rows")
	}

	names := make([]string, 0, len(dataCols)+len(partCols))
	for _, c := range dataCols {
		names = append(names, d.QuoteIdent(c.Name))
	}
	for _, c := range partCols {
		names = append(names, d.QuoteIdent(c.Name))
	}
	prefix := "INSERT INTO " + target + " (" + strings.Join(names, ", ") + ") VALUES ("

	inserted := 0
	for _, row := range rows {
		values := make([]string, 0, len(names))
		for i, c := range dataCols {
			values = append(values, cellLiteral(spreadsheet.CellAt(row, positions[i]), c.DataType))
		}
		for _, c := range partCols {
			values = append(values, sqltemplate.QuoteString(partitions[c.Name]))
		}
		if _, err := tx.ExecContext(ctx, prefix+strings.Join(values, ", ")+")"); err != nil {
			return 0, domain.ErrExecution(err, "Failed to insert row %d", inserted+1)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, domain.ErrDatabase(err, "Failed to commit upload")
	}
	return inserted, nil
}

// deleteStatement matches every partition column by equality, or the whole
// table when there are none.
func deleteStatement(d sqltemplate.Dialect, target string, partCols []domain.DataTableColumn, partitions map[string]string) string {
	if len(partCols) == 0 {
		return "DELETE FROM " + target
	}
	conds := make([]string, len(partCols))
	for i, c := range partCols {
		conds[i] = d.QuoteIdent(c.Name) + " = " + sqltemplate.QuoteString(partitions[c.Name])
	}
	return "DELETE FROM " + target + " WHERE " + strings.Join(conds, " AND ")
}

// cellLiteral renders a cell as a SQL literal for a column of dataType.
func cellLiteral(c spreadsheet.Cell, dataType string) string {
	switch c.Kind {
	case spreadsheet.CellEmpty:
		return "NULL"
	case spreadsheet.CellNumber:
		if strings.Contains(strings.ToLower(dataType), "int") {
			return strconv.FormatInt(int64(math.Trunc(c.Number)), 10)
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case spreadsheet.CellBool:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	case spreadsheet.CellDate:
		return sqltemplate.QuoteString(c.Time.Format("2006-01-02T15:04:05"))
	default:
		return sqltemplate.QuoteString(c.Text)
	}
}

// refreshUsage recomputes row and partition counts. Failures are logged only.
func (s *Service) refreshUsage(ctx context.Context, pool *datasource.Pool, table *domain.DataTable, partCols []domain.DataTableColumn) {
	logger := s.logger.With("table_id", table.ID)
	target := pool.Dialect.QuoteQualified(table.Name)

	var rowCount int64
	if err := pool.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+target).Scan(&rowCount); err != nil {
		logger.Warn("usage refresh: count rows", "error", err)
		return
	}
	var partitionCount int64
	if len(partCols) > 0 {
		names := make([]string, len(partCols))
		for i, c := range partCols {
			names[i] = pool.Dialect.QuoteIdent(c.Name)
		}
		q := "SELECT COUNT(*) FROM (SELECT DISTINCT " + strings.Join(names, ", ") + " FROM " + target + ") AS p"
		if err := pool.DB.QueryRowContext(ctx, q).Scan(&partitionCount); err != nil {
			logger.Warn("usage refresh: count partitions", "error", err)
			return
		}
	}

	var storageSize int64
	if existing, err := s.optionalUsage(ctx, table.ID); err == nil && existing != nil {
		storageSize = existing.StorageSize
	}
	if _, err := s.usages.Upsert(ctx, &domain.DataTableUsage{
		ID:             domain.UsageIDForTable(table.ID),
		DataTableID:    table.ID,
		RowCount:       rowCount,
		PartitionCount: partitionCount,
		StorageSize:    storageSize,
	}); err != nil {
		logger.Warn("usage refresh: upsert", "error", err)
	}
}

