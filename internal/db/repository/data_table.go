package repository

import (
	"context"
	"database/sql"

	"lakehouse/internal/domain"
)

// Compile-time check.
var _ domain.DataTableRepository = (*DataTableRepo)(nil)

// DataTableRepo implements DataTableRepository.
type DataTableRepo struct {
	db *sql.DB
}

// NewDataTableRepo creates a new DataTableRepo.
func NewDataTableRepo(db *sql.DB) *DataTableRepo {
	return &DataTableRepo{db: db}
}

const dataTableColumns = `id, tenant_id, data_source_id, name, description, created_at, updated_at`

// Create inserts a data table with a tenant-prefixed id.
func (r *DataTableRepo) Create(ctx context.Context, t *domain.DataTable) (*domain.DataTable, error) {
	out := *t
	out.ID = domain.NewDataTableID(out.TenantID)
	out.CreatedAt = now()
	out.UpdatedAt = out.CreatedAt

	_, err := r.db.ExecContext(ctx, `INSERT INTO data_tables (`+dataTableColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.TenantID, out.DataSourceID, out.Name, nullString(out.Description),
		formatTime(out.CreatedAt), formatTime(out.UpdatedAt))
	if err != nil {
		return nil, mapDBError(err, "data table")
	}
	return &out, nil
}

// GetByID returns a data table.
func (r *DataTableRepo) GetByID(ctx context.Context, id string) (*domain.DataTable, error) {
	return scanDataTable(r.db.QueryRowContext(ctx, `SELECT `+dataTableColumns+` FROM data_tables WHERE id = ?`, id))
}

// ListByTenant returns the tenant's data tables ordered by name.
func (r *DataTableRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.DataTable, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+dataTableColumns+` FROM data_tables WHERE tenant_id = ? ORDER BY name`, tenantID)
	if err != nil {
		return nil, mapDBError(err, "data tables")
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.DataTable
	for rows.Next() {
		t, err := scanDataTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Update replaces the name and description of a data table.
func (r *DataTableRepo) Update(ctx context.Context, t *domain.DataTable) (*domain.DataTable, error) {
	out := *t
	out.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, `UPDATE data_tables SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		out.Name, nullString(out.Description), formatTime(out.UpdatedAt), out.ID)
	if err != nil {
		return nil, mapDBError(err, "data table")
	}
	if err := requireAffected(res, "data table"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the data table row only; columns and usage are removed by
// their own repositories.
func (r *DataTableRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM data_tables WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err, "data table")
	}
	return requireAffected(res, "data table")
}

func scanDataTable(row rowScanner) (*domain.DataTable, error) {
	var (
		t                    domain.DataTable
		desc                 sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.TenantID, &t.DataSourceID, &t.Name, &desc, &createdAt, &updatedAt); err != nil {
		return nil, mapDBError(err, "data table")
	}
	t.Description = stringPtr(desc)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}
