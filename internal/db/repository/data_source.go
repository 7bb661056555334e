package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lakehouse/internal/db/crypto"
	"lakehouse/internal/domain"
)

// Compile-time check.
var _ domain.DataSourceRepository = (*DataSourceRepo)(nil)

// DataSourceRepo stores data source profiles with their connection config
// encrypted at rest.
type DataSourceRepo struct {
	db  *sql.DB
	enc *crypto.Encryptor
}

// NewDataSourceRepo creates a new DataSourceRepo.
func NewDataSourceRepo(db *sql.DB, enc *crypto.Encryptor) *DataSourceRepo {
	return &DataSourceRepo{db: db, enc: enc}
}

const dataSourceColumns = `id, name, db_type, connection_config, tenant_id, created_at, updated_at`

// Create inserts a data source, assigning its id and timestamps.
func (r *DataSourceRepo) Create(ctx context.Context, ds *domain.DataSource) (*domain.DataSource, error) {
	out := *ds
	out.ID = domain.NewID()
	out.CreatedAt = now()
	out.UpdatedAt = out.CreatedAt

	sealed, err := r.enc.SealJSON(out.ConnectionConfig, out.ID)
	if err != nil {
		return nil, fmt.Errorf("encrypt connection_config: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO data_sources (`+dataSourceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.Name, out.DBType, sealed, out.TenantID, formatTime(out.CreatedAt), formatTime(out.UpdatedAt))
	if err != nil {
		return nil, mapDBError(err, "data source")
	}
	return &out, nil
}

// GetByID returns a data source with its decrypted connection config.
func (r *DataSourceRepo) GetByID(ctx context.Context, id string) (*domain.DataSource, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+dataSourceColumns+` FROM data_sources WHERE id = ?`, id)
	return r.scan(row)
}

// ListByTenant returns the tenant's data sources ordered by name.
func (r *DataSourceRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.DataSource, error) {
	return r.list(ctx, `SELECT `+dataSourceColumns+` FROM data_sources WHERE tenant_id = ? ORDER BY name`, tenantID)
}

// ListAll returns every data source regardless of tenant.
func (r *DataSourceRepo) ListAll(ctx context.Context) ([]domain.DataSource, error) {
	return r.list(ctx, `SELECT `+dataSourceColumns+` FROM data_sources ORDER BY tenant_id, name`)
}

// Update replaces the mutable fields of a data source.
func (r *DataSourceRepo) Update(ctx context.Context, ds *domain.DataSource) (*domain.DataSource, error) {
	out := *ds
	out.UpdatedAt = now()

	sealed, err := r.enc.SealJSON(out.ConnectionConfig, out.ID)
	if err != nil {
		return nil, fmt.Errorf("encrypt connection_config: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE data_sources SET name = ?, db_type = ?, connection_config = ?, updated_at = ? WHERE id = ?`,
		out.Name, out.DBType, sealed, formatTime(out.UpdatedAt), out.ID)
	if err != nil {
		return nil, mapDBError(err, "data source")
	}
	if err := requireAffected(res, "data source"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a data source.
func (r *DataSourceRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM data_sources WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err, "data source")
	}
	return requireAffected(res, "data source")
}

func (r *DataSourceRepo) list(ctx context.Context, query string, args ...any) ([]domain.DataSource, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err, "data sources")
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.DataSource
	for rows.Next() {
		ds, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ds)
	}
	return out, rows.Err()
}

func (r *DataSourceRepo) scan(row rowScanner) (*domain.DataSource, error) {
	var (
		ds                   domain.DataSource
		sealed               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&ds.ID, &ds.Name, &ds.DBType, &sealed, &ds.TenantID, &createdAt, &updatedAt); err != nil {
		return nil, mapDBError(err, "data source")
	}
	cfg, err := r.enc.OpenJSON(sealed, ds.ID)
	if err != nil {
		return nil, fmt.Errorf("decrypt connection_config of %s: %w", ds.ID, err)
	}
	ds.ConnectionConfig = cfg
	ds.CreatedAt = parseTime(createdAt)
	ds.UpdatedAt = parseTime(updatedAt)
	return &ds, nil
}
