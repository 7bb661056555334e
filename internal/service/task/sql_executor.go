package task

import (
	"context"
	"errors"
	"fmt"

	"lakehouse/internal/datasource"
	"lakehouse/internal/domain"
)

type sqlConfig struct {
	SQL          string `json:"sql"`
	DataSourceID string `json:"data_source_id"`
}

// SQLExecutor runs a raw statement against one data source.
//
// The statement is sent as-is without parameters. Task submitters are
// trusted with arbitrary SQL on the target database.
type SQLExecutor struct {
	connector *datasource.Connector
}

// NewSQLExecutor creates a SQLExecutor.
func NewSQLExecutor(connector *datasource.Connector) *SQLExecutor {
	return &SQLExecutor{connector: connector}
}

// Execute implements Executor.
func (e *SQLExecutor) Execute(ctx context.Context, meta *domain.TaskMetadata, tc *Context) (*domain.ExecutionResult, error) {
	var cfg sqlConfig
	if err := decodeConfig(meta.Config, &cfg); err != nil {
		return nil, err
	}
	if cfg.SQL == "" {
		return nil, domain.ErrValidation("Missing 'sql' in config")
	}
	if cfg.DataSourceID == "" {
		return nil, domain.ErrValidation("Missing 'data_source_id' in config")
	}
	ds, err := tc.DataSource(cfg.DataSourceID)
	if err != nil {
		return nil, err
	}

	pool, err := openPool(ctx, e.connector, *ds)
	if err != nil {
		return nil, err
	}
	defer pool.DB.Close() //nolint:errcheck

	res, err := pool.DB.ExecContext(ctx, cfg.SQL)
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to execute SQL")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, domain.ErrExecution(err, "Failed to read rows affected")
	}

	return &domain.ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("SQL executed successfully. Rows affected: %d", affected),
		Data:    map[string]any{"rows_affected": affected},
	}, nil
}

// openPool connects to ds. Configuration errors pass through; anything else
// is a *domain.ConnectionFailedError.
func openPool(ctx context.Context, c *datasource.Connector, ds domain.DataSource) (*datasource.Pool, error) {
	pool, err := c.Open(ctx, ds)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, domain.ErrConnectionFailed(err, "Failed to connect to %s", ds.Name)
	}
	return pool, nil
}
