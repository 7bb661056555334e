package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lakehouse/internal/db/crypto"
	"lakehouse/internal/domain"
)

// Compile-time check.
var _ domain.StorageRepository = (*StorageRepo)(nil)

// StorageRepo stores object-storage profiles with their auth config
// encrypted at rest.
type StorageRepo struct {
	db  *sql.DB
	enc *crypto.Encryptor
}

// NewStorageRepo creates a new StorageRepo.
func NewStorageRepo(db *sql.DB, enc *crypto.Encryptor) *StorageRepo {
	return &StorageRepo{db: db, enc: enc}
}

const storageColumns = `id, name, storage_type, upload_endpoint, download_endpoint, auth_config, tenant_id, created_at, updated_at`

// Create inserts a storage, assigning its id and timestamps.
func (r *StorageRepo) Create(ctx context.Context, s *domain.Storage) (*domain.Storage, error) {
	out := *s
	out.ID = domain.NewID()
	out.CreatedAt = now()
	out.UpdatedAt = out.CreatedAt

	sealed, err := r.enc.SealJSON(out.AuthConfig, out.ID)
	if err != nil {
		return nil, fmt.Errorf("encrypt auth_config: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO storages (`+storageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.Name, out.StorageType, out.UploadEndpoint, out.DownloadEndpoint, sealed, out.TenantID,
		formatTime(out.CreatedAt), formatTime(out.UpdatedAt))
	if err != nil {
		return nil, mapDBError(err, "storage")
	}
	return &out, nil
}

// GetByID returns a storage with its decrypted auth config.
func (r *StorageRepo) GetByID(ctx context.Context, id string) (*domain.Storage, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+storageColumns+` FROM storages WHERE id = ?`, id)
	return r.scan(row)
}

// ListByTenant returns the tenant's storages ordered by name.
func (r *StorageRepo) ListByTenant(ctx context.Context, tenantID string) ([]domain.Storage, error) {
	return r.list(ctx, `SELECT `+storageColumns+` FROM storages WHERE tenant_id = ? ORDER BY name`, tenantID)
}

// ListAll returns every storage regardless of tenant.
func (r *StorageRepo) ListAll(ctx context.Context) ([]domain.Storage, error) {
	return r.list(ctx, `SELECT `+storageColumns+` FROM storages ORDER BY tenant_id, name`)
}

// Update replaces the mutable fields of a storage.
func (r *StorageRepo) Update(ctx context.Context, s *domain.Storage) (*domain.Storage, error) {
	out := *s
	out.UpdatedAt = now()

	sealed, err := r.enc.SealJSON(out.AuthConfig, out.ID)
	if err != nil {
		return nil, fmt.Errorf("encrypt auth_config: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE storages SET name = ?, storage_type = ?, upload_endpoint = ?, download_endpoint = ?, auth_config = ?, updated_at = ? WHERE id = ?`,
		out.Name, out.StorageType, out.UploadEndpoint, out.DownloadEndpoint, sealed, formatTime(out.UpdatedAt), out.ID)
	if err != nil {
		return nil, mapDBError(err, "storage")
	}
	if err := requireAffected(res, "storage"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a storage.
func (r *StorageRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM storages WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err, "storage")
	}
	return requireAffected(res, "storage")
}

func (r *StorageRepo) list(ctx context.Context, query string, args ...any) ([]domain.Storage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err, "storages")
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Storage
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *StorageRepo) scan(row rowScanner) (*domain.Storage, error) {
	var (
		s                    domain.Storage
		sealed               string
		createdAt, updatedAt string
	)
	if err := row.Scan(&s.ID, &s.Name, &s.StorageType, &s.UploadEndpoint, &s.DownloadEndpoint, &sealed, &s.TenantID, &createdAt, &updatedAt); err != nil {
		return nil, mapDBError(err, "storage")
	}
	cfg, err := r.enc.OpenJSON(sealed, s.ID)
	if err != nil {
		return nil, fmt.Errorf("decrypt auth_config of %s: %w", s.ID, err)
	}
	s.AuthConfig = cfg
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}
