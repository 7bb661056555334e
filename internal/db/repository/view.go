package repository

import (
	"context"
	"database/sql"

	"lakehouse/internal/domain"
)

// Compile-time check.
var _ domain.ViewRepository = (*ViewRepo)(nil)

// ViewRepo implements ViewRepository.
type ViewRepo struct {
	db *sql.DB
}

// NewViewRepo creates a new ViewRepo.
func NewViewRepo(db *sql.DB) *ViewRepo {
	return &ViewRepo{db: db}
}

const viewColumns = `id, tenant_id, view_code, view_type, view_sql, created_at, updated_at`

// Create inserts a stored view.
func (r *ViewRepo) Create(ctx context.Context, v *domain.View) (*domain.View, error) {
	out := *v
	out.ID = domain.NewID()
	out.CreatedAt = now()
	out.UpdatedAt = out.CreatedAt
	_, err := r.db.ExecContext(ctx, `INSERT INTO views (`+viewColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.TenantID, out.ViewCode, out.ViewType, out.ViewSQL, formatTime(out.CreatedAt), formatTime(out.UpdatedAt))
	if err != nil {
		return nil, mapDBError(err, "view")
	}
	return &out, nil
}

// GetByID returns a stored view.
func (r *ViewRepo) GetByID(ctx context.Context, id string) (*domain.View, error) {
	return scanView(r.db.QueryRowContext(ctx, `SELECT `+viewColumns+` FROM views WHERE id = ?`, id))
}

// GetByCode returns the tenant's view with the given code.
func (r *ViewRepo) GetByCode(ctx context.Context, tenantID, code string) (*domain.View, error) {
	return scanView(r.db.QueryRowContext(ctx, `SELECT `+viewColumns+` FROM views WHERE tenant_id = ? AND view_code = ?`, tenantID, code))
}

// ListByTenant returns the tenant's views ordered by code.
func (r *ViewRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.View, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+viewColumns+` FROM views WHERE tenant_id = ? ORDER BY view_code`, tenantID)
	if err != nil {
		return nil, mapDBError(err, "views")
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.View
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Update replaces the mutable fields of a stored view.
func (r *ViewRepo) Update(ctx context.Context, v *domain.View) (*domain.View, error) {
	out := *v
	out.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, `UPDATE views SET view_code = ?, view_type = ?, view_sql = ?, updated_at = ? WHERE id = ?`,
		out.ViewCode, out.ViewType, out.ViewSQL, formatTime(out.UpdatedAt), out.ID)
	if err != nil {
		return nil, mapDBError(err, "view")
	}
	if err := requireAffected(res, "view"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a stored view.
func (r *ViewRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM views WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err, "view")
	}
	return requireAffected(res, "view")
}

func scanView(row rowScanner) (*domain.View, error) {
	var (
		v                    domain.View
		createdAt, updatedAt string
	)
	if err := row.Scan(&v.ID, &v.TenantID, &v.ViewCode, &v.ViewType, &v.ViewSQL, &createdAt, &updatedAt); err != nil {
		return nil, mapDBError(err, "view")
	}
	v.CreatedAt = parseTime(createdAt)
	v.UpdatedAt = parseTime(updatedAt)
	return &v, nil
}
