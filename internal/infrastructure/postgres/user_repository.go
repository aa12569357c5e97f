package postgres

import (
	"context"
	"fmt"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implements repository.UserRepository over PostgreSQL. Pass a
// pgxpool.Pool for read paths or a pgx.Tx for write paths — both satisfy
// Querier.
type UserRepo struct {
	q Querier
}

// NewUserRepository builds the adapter. Pass pool or tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if err := requireTenant(user.TenantID); err != nil {
		return err
	}
	query := `
		INSERT INTO users (
			id, tenant_id, email, username, password_hash, roles, permissions,
			department_id, mfa_enabled, mfa_secret, is_active, email_verified,
			last_password_change_at, token_generation, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.TenantID, user.Email, user.Username, user.PasswordHash,
		user.Roles, user.Permissions, user.DepartmentID, user.MFAEnabled, user.MFASecret,
		user.IsActive, user.EmailVerified, user.LastPasswordChangeAt, user.TokenGeneration,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.User, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	const query = `
		SELECT id, tenant_id, email, username, password_hash, roles, permissions,
			department_id, mfa_enabled, mfa_secret, is_active, email_verified,
			last_login_at, last_password_change_at, token_generation, created_at, updated_at
		FROM users WHERE tenant_id = $1 AND id = $2`
	return r.scanOne(ctx, query, tenantID, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, tenantID, email string) (*entity.User, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	const query = `
		SELECT id, tenant_id, email, username, password_hash, roles, permissions,
			department_id, mfa_enabled, mfa_secret, is_active, email_verified,
			last_login_at, last_password_change_at, token_generation, created_at, updated_at
		FROM users WHERE tenant_id = $1 AND email = $2`
	return r.scanOne(ctx, query, tenantID, email)
}

func (r *UserRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.TenantID, &u.Email, &u.Username, &u.PasswordHash, &u.Roles, &u.Permissions,
		&u.DepartmentID, &u.MFAEnabled, &u.MFASecret, &u.IsActive, &u.EmailVerified,
		&u.LastLoginAt, &u.LastPasswordChangeAt, &u.TokenGeneration, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	if err := requireTenant(user.TenantID); err != nil {
		return err
	}
	const query = `
		UPDATE users SET
			email = $3, username = $4, password_hash = $5, roles = $6, permissions = $7,
			department_id = $8, mfa_enabled = $9, mfa_secret = $10, is_active = $11,
			email_verified = $12, last_login_at = $13, last_password_change_at = $14,
			token_generation = $15, updated_at = $16
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		user.TenantID, user.ID, user.Email, user.Username, user.PasswordHash,
		user.Roles, user.Permissions, user.DepartmentID, user.MFAEnabled, user.MFASecret,
		user.IsActive, user.EmailVerified, user.LastLoginAt, user.LastPasswordChangeAt,
		user.TokenGeneration, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.User, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	const query = `
		SELECT id, tenant_id, email, username, password_hash, roles, permissions,
			department_id, mfa_enabled, mfa_secret, is_active, email_verified,
			last_login_at, last_password_change_at, token_generation, created_at, updated_at
		FROM users WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(
			&u.ID, &u.TenantID, &u.Email, &u.Username, &u.PasswordHash, &u.Roles, &u.Permissions,
			&u.DepartmentID, &u.MFAEnabled, &u.MFASecret, &u.IsActive, &u.EmailVerified,
			&u.LastLoginAt, &u.LastPasswordChangeAt, &u.TokenGeneration, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
