package repository

import (
	"context"
	"database/sql"

	"lakehouse/internal/domain"
)

// Compile-time check.
var _ domain.DataTableUsageRepository = (*DataTableUsageRepo)(nil)

// DataTableUsageRepo implements DataTableUsageRepository.
type DataTableUsageRepo struct {
	db *sql.DB
}

// NewDataTableUsageRepo creates a new DataTableUsageRepo.
func NewDataTableUsageRepo(db *sql.DB) *DataTableUsageRepo {
	return &DataTableUsageRepo{db: db}
}

const usageColumns = `id, data_table_id, row_count, partition_count, storage_size, created_at, updated_at`

// Upsert writes the usage record of a table, keyed by "<table>-usage".
// created_at is preserved on conflict.
func (r *DataTableUsageRepo) Upsert(ctx context.Context, u *domain.DataTableUsage) (*domain.DataTableUsage, error) {
	ts := formatTime(now())
	_, err := r.db.ExecContext(ctx, `INSERT INTO data_table_usages (`+usageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			row_count = excluded.row_count,
			partition_count = excluded.partition_count,
			storage_size = excluded.storage_size,
			updated_at = excluded.updated_at`,
		domain.UsageIDForTable(u.DataTableID), u.DataTableID, u.RowCount, u.PartitionCount, u.StorageSize, ts, ts)
	if err != nil {
		return nil, mapDBError(err, "usage")
	}
	return r.GetByID(ctx, domain.UsageIDForTable(u.DataTableID))
}

// GetByID returns a usage record.
func (r *DataTableUsageRepo) GetByID(ctx context.Context, id string) (*domain.DataTableUsage, error) {
	return scanUsage(r.db.QueryRowContext(ctx, `SELECT `+usageColumns+` FROM data_table_usages WHERE id = ?`, id))
}

// GetByTable returns the usage record of a table.
func (r *DataTableUsageRepo) GetByTable(ctx context.Context, tableID string) (*domain.DataTableUsage, error) {
	return scanUsage(r.db.QueryRowContext(ctx, `SELECT `+usageColumns+` FROM data_table_usages WHERE data_table_id = ?`, tableID))
}

// Update replaces the statistics of a usage record.
func (r *DataTableUsageRepo) Update(ctx context.Context, u *domain.DataTableUsage) (*domain.DataTableUsage, error) {
	out := *u
	out.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, `UPDATE data_table_usages SET row_count = ?, partition_count = ?, storage_size = ?, updated_at = ? WHERE id = ?`,
		out.RowCount, out.PartitionCount, out.StorageSize, formatTime(out.UpdatedAt), out.ID)
	if err != nil {
		return nil, mapDBError(err, "usage")
	}
	if err := requireAffected(res, "usage"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a usage record.
func (r *DataTableUsageRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM data_table_usages WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err, "usage")
	}
	return requireAffected(res, "usage")
}

// DeleteByTable removes the usage record of a table, if any.
func (r *DataTableUsageRepo) DeleteByTable(ctx context.Context, tableID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM data_table_usages WHERE data_table_id = ?`, tableID); err != nil {
		return mapDBError(err, "usage")
	}
	return nil
}

func scanUsage(row rowScanner) (*domain.DataTableUsage, error) {
	var (
		u                    domain.DataTableUsage
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.DataTableID, &u.RowCount, &u.PartitionCount, &u.StorageSize, &createdAt, &updatedAt); err != nil {
		return nil, mapDBError(err, "usage")
	}
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}
