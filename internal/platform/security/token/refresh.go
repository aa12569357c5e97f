package token

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
	"github.com/taskforge/core-api/internal/platform/events"
)

// RefreshTokenTTL is fixed by spec §4.5 at 7 days.
const RefreshTokenTTL = 7 * 24 * time.Hour

// rawTokenBytes is 256 bits, the spec's minimum entropy for the opaque
// refresh-token value.
const rawTokenBytes = 32

// RefreshService implements the rotation algorithm of spec §4.5: lookup
// by digest, expiry check, replay-triggers-family-revocation, then
// rotate. It never returns the raw value it persisted — only the value
// handed back to the caller, which the repository never sees.
type RefreshService struct {
	repo   repository.RefreshTokenRepository
	pepper []byte // server-side secret mixed into the digest (the "salted" half)
}

// NewRefreshService builds a RefreshService. pepper is a long-lived
// server secret (distinct from the RSA signing keys) read from
// configuration; it is never persisted alongside the digest it produces.
func NewRefreshService(repo repository.RefreshTokenRepository, pepper []byte) *RefreshService {
	return &RefreshService{repo: repo, pepper: pepper}
}

// Digest computes the salted one-way digest stored in TokenHash. HMAC
// rather than a per-token random salt, because rotation must look a
// presented token up by digest in O(1) — a per-record salt would force
// a full-table scan. Exported so callers that need to look a token up
// before calling Rotate (e.g. to resolve its owning user) can compute
// the same digest without duplicating the HMAC construction.
func (s *RefreshService) Digest(raw string) string {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func generateRawToken() (string, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issued is the pair of credentials handed back to the client on
// login and refresh.
type Issued struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // seconds, per the §6 response shape
}

// IssueNewFamily mints the first refresh token of a brand-new family
// (login) plus a matching access token.
func (s *RefreshService) IssueNewFamily(ctx context.Context, signer *Signer, in AccessTokenInput, deviceFingerprintHash *string) (*Issued, error) {
	raw, err := generateRawToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	record := &entity.RefreshToken{
		ID:                    uuid.New().String(),
		UserID:                in.UserID,
		TenantID:              in.TenantID,
		TokenHash:             s.Digest(raw),
		JTI:                   uuid.New().String(),
		FamilyID:              uuid.New().String(),
		ParentTokenID:         nil,
		IsRevoked:             false,
		ExpiresAt:             now.Add(RefreshTokenTTL),
		CreatedAt:             now,
		DeviceFingerprintHash: deviceFingerprintHash,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	access, err := signer.Sign(in)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &Issued{AccessToken: access, RefreshToken: raw, ExpiresIn: int(AccessTokenTTL.Seconds())}, nil
}

// Rotate implements spec §4.5's four-step algorithm. recorder is used
// to emit SecurityAlert on replay detection (step 3); the caller's
// mediator stage is responsible for flushing it to the outbox within
// the same transaction that this call's repository writes occur in.
func (s *RefreshService) Rotate(ctx context.Context, signer *Signer, tenantID, raw string, in AccessTokenInput, recorder *events.Recorder) (*Issued, error) {
	digest := s.Digest(raw)

	current, err := s.repo.GetByTokenHashForUpdate(ctx, tenantID, digest)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}

	now := time.Now().UTC()
	if current.IsExpired(now) {
		_ = s.repo.Revoke(ctx, tenantID, current.ID)
		return nil, domain.ErrInvalidToken
	}

	if current.IsRevoked {
		// Replay of an already-rotated-away token: the entire family is
		// compromised, not just this one record.
		if err := s.repo.RevokeFamily(ctx, tenantID, current.FamilyID); err != nil {
			return nil, fmt.Errorf("revoke family on replay: %w", err)
		}
		if recorder != nil {
			recorder.Emit(events.TypeSecurityAlert, current.UserID, 1, map[string]any{
				"reason":    "refresh_token_replay",
				"family_id": current.FamilyID,
				"user_id":   current.UserID,
			})
		}
		return nil, domain.ErrTokenReplay
	}

	if err := s.repo.Revoke(ctx, tenantID, current.ID); err != nil {
		return nil, fmt.Errorf("revoke rotated token: %w", err)
	}

	newRaw, err := generateRawToken()
	if err != nil {
		return nil, err
	}
	parentID := current.ID
	next := &entity.RefreshToken{
		ID:            uuid.New().String(),
		UserID:        current.UserID,
		TenantID:      tenantID,
		TokenHash:     s.Digest(newRaw),
		JTI:           uuid.New().String(),
		FamilyID:      current.FamilyID,
		ParentTokenID: &parentID,
		IsRevoked:     false,
		ExpiresAt:     now.Add(RefreshTokenTTL),
		CreatedAt:     now,
	}
	if err := s.repo.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("persist rotated token: %w", err)
	}

	access, err := signer.Sign(in)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	return &Issued{AccessToken: access, RefreshToken: newRaw, ExpiresIn: int(AccessTokenTTL.Seconds())}, nil
}

// Logout revokes only the presented token, per spec §4.5 "Logout
// revokes the presented token only (not the family)."
func (s *RefreshService) Logout(ctx context.Context, tenantID, raw string) error {
	digest := s.Digest(raw)
	current, err := s.repo.GetByTokenHashForUpdate(ctx, tenantID, digest)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil
		}
		return fmt.Errorf("lookup refresh token: %w", err)
	}
	return s.repo.Revoke(ctx, tenantID, current.ID)
}
