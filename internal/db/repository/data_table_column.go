package repository

import (
	"context"
	"database/sql"

	"lakehouse/internal/domain"
)

// Compile-time check.
var _ domain.DataTableColumnRepository = (*DataTableColumnRepo)(nil)

// DataTableColumnRepo implements DataTableColumnRepository.
type DataTableColumnRepo struct {
	db *sql.DB
}

// NewDataTableColumnRepo creates a new DataTableColumnRepo.
func NewDataTableColumnRepo(db *sql.DB) *DataTableColumnRepo {
	return &DataTableColumnRepo{db: db}
}

const columnColumns = `id, data_table_id, column_index, name, description, data_type, nullable, default_value, partitioner, created_at, updated_at`

// Create inserts a column declaration.
func (r *DataTableColumnRepo) Create(ctx context.Context, c *domain.DataTableColumn) (*domain.DataTableColumn, error) {
	out := *c
	out.ID = domain.NewID()
	out.CreatedAt = now()
	out.UpdatedAt = out.CreatedAt

	_, err := r.db.ExecContext(ctx, `INSERT INTO data_table_columns (`+columnColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.DataTableID, out.ColumnIndex, out.Name, nullString(out.Description), out.DataType,
		boolToInt(out.Nullable), nullString(out.DefaultValue), boolToInt(out.Partitioner),
		formatTime(out.CreatedAt), formatTime(out.UpdatedAt))
	if err != nil {
		return nil, mapDBError(err, "column")
	}
	return &out, nil
}

// GetByID returns a column declaration.
func (r *DataTableColumnRepo) GetByID(ctx context.Context, id string) (*domain.DataTableColumn, error) {
	return scanColumn(r.db.QueryRowContext(ctx, `SELECT `+columnColumns+` FROM data_table_columns WHERE id = ?`, id))
}

// ListByTable returns the columns of a table ordered by column_index.
func (r *DataTableColumnRepo) ListByTable(ctx context.Context, tableID string) ([]domain.DataTableColumn, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columnColumns+` FROM data_table_columns WHERE data_table_id = ? ORDER BY column_index`, tableID)
	if err != nil {
		return nil, mapDBError(err, "columns")
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.DataTableColumn
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update replaces the mutable fields of a column declaration.
func (r *DataTableColumnRepo) Update(ctx context.Context, c *domain.DataTableColumn) (*domain.DataTableColumn, error) {
	out := *c
	out.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, `UPDATE data_table_columns
		SET column_index = ?, name = ?, description = ?, data_type = ?, nullable = ?, default_value = ?, partitioner = ?, updated_at = ?
		WHERE id = ?`,
		out.ColumnIndex, out.Name, nullString(out.Description), out.DataType, boolToInt(out.Nullable),
		nullString(out.DefaultValue), boolToInt(out.Partitioner), formatTime(out.UpdatedAt), out.ID)
	if err != nil {
		return nil, mapDBError(err, "column")
	}
	if err := requireAffected(res, "column"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a column declaration.
func (r *DataTableColumnRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM data_table_columns WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err, "column")
	}
	return requireAffected(res, "column")
}

// DeleteByTable removes every column of a table. Missing columns are not an error.
func (r *DataTableColumnRepo) DeleteByTable(ctx context.Context, tableID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM data_table_columns WHERE data_table_id = ?`, tableID); err != nil {
		return mapDBError(err, "columns")
	}
	return nil
}

func scanColumn(row rowScanner) (*domain.DataTableColumn, error) {
	var (
		c                     domain.DataTableColumn
		desc, defaultValue    sql.NullString
		nullable, partitioner int64
		createdAt, updatedAt  string
	)
	if err := row.Scan(&c.ID, &c.DataTableID, &c.ColumnIndex, &c.Name, &desc, &c.DataType,
		&nullable, &defaultValue, &partitioner, &createdAt, &updatedAt); err != nil {
		return nil, mapDBError(err, "column")
	}
	c.Description = stringPtr(desc)
	c.DefaultValue = stringPtr(defaultValue)
	c.Nullable = nullable != 0
	c.Partitioner = partitioner != 0
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}
