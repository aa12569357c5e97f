package postgres

import (
	"context"
	"fmt"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
)

var _ repository.RefreshTokenRepository = (*RefreshTokenRepo)(nil)

// RefreshTokenRepo implements repository.RefreshTokenRepository.
// GetByTokenHashForUpdate takes a row lock the same way
// StockRepo.GetForUpdate does in the inventory domain, so two concurrent
// refreshes of one token serialize instead of racing past the
// reuse-detection check.
type RefreshTokenRepo struct {
	q Querier
}

// NewRefreshTokenRepository builds the adapter. Pass pool or tx (Querier).
func NewRefreshTokenRepository(q Querier) *RefreshTokenRepo {
	return &RefreshTokenRepo{q: q}
}

func (r *RefreshTokenRepo) Create(ctx context.Context, token *entity.RefreshToken) error {
	if err := requireTenant(token.TenantID); err != nil {
		return err
	}
	const query = `
		INSERT INTO refresh_tokens (
			id, user_id, tenant_id, token_hash, jti, family_id, parent_token_id,
			is_revoked, expires_at, created_at, device_fingerprint_hash
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.q.Exec(ctx, query,
		token.ID, token.UserID, token.TenantID, token.TokenHash, token.JTI, token.FamilyID,
		token.ParentTokenID, token.IsRevoked, token.ExpiresAt, token.CreatedAt,
		token.DeviceFingerprintHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepo) GetByTokenHashForUpdate(ctx context.Context, tenantID, tokenHash string) (*entity.RefreshToken, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	const query = `
		SELECT id, user_id, tenant_id, token_hash, jti, family_id, parent_token_id,
			is_revoked, expires_at, created_at, device_fingerprint_hash
		FROM refresh_tokens WHERE tenant_id = $1 AND token_hash = $2
		FOR UPDATE`
	var t entity.RefreshToken
	err := r.q.QueryRow(ctx, query, tenantID, tokenHash).Scan(
		&t.ID, &t.UserID, &t.TenantID, &t.TokenHash, &t.JTI, &t.FamilyID, &t.ParentTokenID,
		&t.IsRevoked, &t.ExpiresAt, &t.CreatedAt, &t.DeviceFingerprintHash,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get refresh token for update: %w", err)
	}
	return &t, nil
}

func (r *RefreshTokenRepo) Revoke(ctx context.Context, tenantID, id string) error {
	if err := requireTenant(tenantID); err != nil {
		return err
	}
	const query = `UPDATE refresh_tokens SET is_revoked = true WHERE tenant_id = $1 AND id = $2`
	_, err := r.q.Exec(ctx, query, tenantID, id)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepo) RevokeFamily(ctx context.Context, tenantID, familyID string) error {
	if err := requireTenant(tenantID); err != nil {
		return err
	}
	const query = `UPDATE refresh_tokens SET is_revoked = true WHERE tenant_id = $1 AND family_id = $2 AND is_revoked = false`
	_, err := r.q.Exec(ctx, query, tenantID, familyID)
	if err != nil {
		return fmt.Errorf("revoke refresh token family: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepo) CountNonRevokedForUser(ctx context.Context, tenantID, userID string) (int, error) {
	if err := requireTenant(tenantID); err != nil {
		return 0, err
	}
	const query = `SELECT count(*) FROM refresh_tokens WHERE tenant_id = $1 AND user_id = $2 AND is_revoked = false AND expires_at > now()`
	var n int
	if err := r.q.QueryRow(ctx, query, tenantID, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count non-revoked refresh tokens: %w", err)
	}
	return n, nil
}
