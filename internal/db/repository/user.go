package repository

import (
	"context"
	"database/sql"

	"lakehouse/internal/domain"
)

// Compile-time check.
var _ domain.UserRepository = (*UserRepo)(nil)

// UserRepo implements UserRepository.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, nickname, password_hash, tenant_id, created_at, updated_at`

// Create inserts a user. PasswordHash must already be hashed.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	out := *u
	out.ID = domain.NewID()
	out.CreatedAt = now()
	out.UpdatedAt = out.CreatedAt
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		out.ID, out.Nickname, out.PasswordHash, out.TenantID, formatTime(out.CreatedAt), formatTime(out.UpdatedAt))
	if err != nil {
		return nil, mapDBError(err, "user")
	}
	return &out, nil
}

// GetByID returns a user.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// GetByNickname returns the user with the given nickname.
func (r *UserRepo) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE nickname = ?`, nickname))
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u                    domain.User
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Nickname, &u.PasswordHash, &u.TenantID, &createdAt, &updatedAt); err != nil {
		return nil, mapDBError(err, "user")
	}
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}
