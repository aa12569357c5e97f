package entity

import "time"

// RefreshToken is a rotating credential. The raw token value is returned
// to the client exactly once and never persisted; only TokenHash (a
// salted digest) survives. FamilyID is stable across every rotation that
// descends from one login; ParentTokenID links a token to the one it
// replaced, forming an append-only family graph (see
// internal/domain/repository.RefreshTokenRepository for the
// revoke-by-family operation).
type RefreshToken struct {
	ID                   string
	UserID               string
	TenantID             string
	TokenHash            string
	JTI                  string
	FamilyID             string
	ParentTokenID         *string
	IsRevoked            bool
	ExpiresAt            time.Time
	CreatedAt            time.Time
	DeviceFingerprintHash *string
}

// IsExpired reports whether the token has passed its expiry relative to now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
