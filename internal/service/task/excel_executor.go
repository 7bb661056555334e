package task

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"lakehouse/internal/datasource"
	"lakehouse/internal/domain"
	"lakehouse/internal/objectstore"
	"lakehouse/internal/spreadsheet"
)

type excelConfig struct {
	FilePath     string `json:"file_path"`
	DataSourceID string `json:"data_source_id"`
	StorageID    string `json:"storage_id"`
}

// FetcherFactory builds a downloader for a storage profile.
type FetcherFactory interface {
	ForStorage(ctx context.Context, st domain.Storage) (objectstore.Fetcher, error)
}

// ExcelImportExecutor downloads a workbook and loads every sheet into a
// table named after it, creating the table when absent.
//
// Cell text is interpolated as quoted literals, not bound. Workbook
// contents are trusted like the statements of SQLExecutor.
type ExcelImportExecutor struct {
	connector *datasource.Connector
	fetchers  FetcherFactory
	logger    *slog.Logger
}

// NewExcelImportExecutor creates an ExcelImportExecutor.
func NewExcelImportExecutor(connector *datasource.Connector, fetchers FetcherFactory, logger *slog.Logger) *ExcelImportExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelImportExecutor{connector: connector, fetchers: fetchers, logger: logger}
}

// Execute implements Executor.
func (e *ExcelImportExecutor) Execute(ctx context.Context, meta *domain.TaskMetadata, tc *Context) (*domain.ExecutionResult, error) {
	var cfg excelConfig
	if err := decodeConfig(meta.Config, &cfg); err != nil {
		return nil, err
	}
	switch {
	case cfg.FilePath == "":
		return nil, domain.ErrValidation("Missing 'file_path' in config")
	case cfg.DataSourceID == "":
		return nil, domain.ErrValidation("Missing 'data_source_id' in config")
	case cfg.StorageID == "":
		return nil, domain.ErrValidation("Missing 'storage_id' in config")
	}

	ds, err := tc.DataSource(cfg.DataSourceID)
	if err != nil {
		return nil, err
	}
	st, err := tc.Storage(cfg.StorageID)
	if err != nil {
		return nil, err
	}

	data, err := e.download(ctx, *st, cfg.FilePath)
	if err != nil {
		return nil, err
	}
	sheets, err := spreadsheet.ReadSheets(bytes.NewReader(data))
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to open Excel file")
	}

	pool, err := openPool(ctx, e.connector, *ds)
	if err != nil {
		return nil, err
	}
	defer pool.DB.Close() //nolint:errcheck

	var total int64
	for _, sheet := range sheets {
		n, err := importSheet(ctx, pool, sheet)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("sheet imported", "task_id", meta.TaskID, "sheet", sheet.Name, "rows", n)
		total += n
	}

	return &domain.ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("Excel file imported successfully. Total rows: %d", total),
		Data:    map[string]any{"rows_imported": total},
	}, nil
}

func (e *ExcelImportExecutor) download(ctx context.Context, st domain.Storage, path string) ([]byte, error) {
	fetcher, err := e.fetchers.ForStorage(ctx, st)
	if err != nil {
		return nil, err
	}
	if c, ok := fetcher.(io.Closer); ok {
		defer c.Close() //nolint:errcheck
	}
	return fetcher.Fetch(ctx, path)
}

// importSheet creates the sheet's table and inserts its rows in batches.
// Sheets without a header row are skipped.
func importSheet(ctx context.Context, pool *datasource.Pool, sheet spreadsheet.Sheet) (int64, error) {
	if len(sheet.Headers) == 0 {
		return 0, nil
	}
	table := sanitizeName(sheet.Name)
	columns := columnNames(sheet.Headers)

	for _, stmt := range createTableStatements(pool.Dialect, table, columns) {
		if _, err := pool.DB.ExecContext(ctx, stmt); err != nil {
			return 0, domain.ErrExecution(err, "Failed to create table %s", table)
		}
	}

	var inserted int64
	for start := 0; start < len(sheet.Rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(sheet.Rows))
		res, err := pool.DB.ExecContext(ctx, insertStatement(pool.Dialect, table, columns, sheet.Rows[start:end]))
		if err != nil {
			return inserted, domain.ErrExecution(err, "Failed to insert data into %s", table)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, domain.ErrExecution(err, "Failed to read rows affected")
		}
		inserted += n
	}
	return inserted, nil
}
