package repository

import (
	"context"

	"github.com/taskforge/core-api/internal/domain/entity"
)

// RefreshTokenRepository is the persistence port for refresh-token
// rotation and family revocation (spec §4.5, §9). GetByTokenHashForUpdate
// must take a row lock (`SELECT ... FOR UPDATE`) so that two concurrent
// refreshes of the same token race safely (spec §5, §8 scenario 5).
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	GetByTokenHashForUpdate(ctx context.Context, tenantID, tokenHash string) (*entity.RefreshToken, error)
	Revoke(ctx context.Context, tenantID, id string) error
	RevokeFamily(ctx context.Context, tenantID, familyID string) error
	// CountNonRevokedForUser supports the idempotence property in spec §8:
	// "register -> login -> refresh -> refresh -> logout leaves zero
	// non-revoked tokens for that user."
	CountNonRevokedForUser(ctx context.Context, tenantID, userID string) (int, error)
}
