package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"  // duckdb driver
	_ "github.com/go-sql-driver/mysql"  // mysql driver
	_ "github.com/jackc/pgx/v5/stdlib"  // pgx driver
	_ "github.com/microsoft/go-mssqldb" // sqlserver driver

	"lakehouse/internal/domain"
	"lakehouse/internal/sqltemplate"
)

// Opener opens and verifies a pool for a driver and DSN.
type Opener func(ctx context.Context, driver, dsn string) (*sql.DB, error)

// DefaultOpener opens a pool with database/sql and pings it once.
func DefaultOpener(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Connector opens connection pools for data source profiles.
type Connector struct {
	open           Opener
	maxOpenConns   int
	connectTimeout time.Duration
	duckDBDir      string
}

// NewConnector creates a Connector. A nil opener uses DefaultOpener.
func NewConnector(open Opener, maxOpenConns int, connectTimeout time.Duration) *Connector {
	if open == nil {
		open = DefaultOpener
	}
	if maxOpenConns <= 0 {
		maxOpenConns = 5
	}
	return &Connector{open: open, maxOpenConns: maxOpenConns, connectTimeout: connectTimeout}
}

// WithDuckDBDir enables DuckDB data sources. Their database files live in
// dir/<tenant>/. Without a directory DuckDB data sources are rejected.
func (c *Connector) WithDuckDBDir(dir string) *Connector {
	c.duckDBDir = dir
	return c
}

// Open connects to ds. Configuration problems are returned as
// *domain.ValidationError; network and driver failures are returned as is.
func (c *Connector) Open(ctx context.Context, ds domain.DataSource) (*Pool, error) {
	d, err := sqltemplate.ParseDialect(ds.DBType)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConnConfig(d, ds.ConnectionConfig)
	if err != nil {
		return nil, err
	}
	if d == sqltemplate.DuckDB {
		if cfg.Database, err = c.duckDBPath(ds.TenantID, cfg.Database); err != nil {
			return nil, err
		}
	}

	if c.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.connectTimeout)
		defer cancel()
	}

	db, err := c.open(ctx, DriverName(d), BuildDSN(d, cfg, c.connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", describe(ds), err)
	}
	db.SetMaxOpenConns(c.maxOpenConns)
	db.SetMaxIdleConns(c.maxOpenConns)
	return &Pool{Name: ds.Name, DataSource: ds, Dialect: d, DB: db}, nil
}

// duckDBPath confines a DuckDB database file to the tenant's directory.
// An empty name stays empty and opens an in-memory database.
func (c *Connector) duckDBPath(tenantID, name string) (string, error) {
	if c.duckDBDir == "" {
		return "", domain.ErrValidation("duckdb data sources are disabled")
	}
	if name == "" {
		return "", nil
	}
	if tenantID == "" || !isBareName(tenantID) {
		return "", domain.ErrValidation("invalid tenant %q for duckdb data source", tenantID)
	}
	dir := filepath.Join(c.duckDBDir, tenantID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create duckdb directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}
