package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/core-api/internal/application/cqrs"
	"github.com/taskforge/core-api/internal/application/dto"
	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/platform/authz"
	"github.com/taskforge/core-api/internal/platform/cache"
	"github.com/taskforge/core-api/internal/platform/events"
	"github.com/taskforge/core-api/internal/platform/reqcontext"
	"github.com/taskforge/core-api/internal/platform/security/password"
	"github.com/taskforge/core-api/internal/platform/security/token"
	"github.com/taskforge/core-api/internal/platform/textnorm"
)

// pendingMFATTL bounds how long a generated-but-unconfirmed TOTP secret
// stays redeemable. GenerateEnrollment and a VerifyMFA call are expected
// to happen in the same short setup flow, not days apart.
const pendingMFATTL = 10 * time.Minute

// Service bundles the collaborators every auth handler needs and exposes
// Register, which wires all seven commands into a Mediator.
type Service struct {
	passwords *password.Service
	signer    *token.Signer
	refresh   *token.RefreshService
	mfa       *token.MFAService
	cache     cache.Cache
}

// NewService constructs the auth Service.
func NewService(passwords *password.Service, signer *token.Signer, refresh *token.RefreshService, mfa *token.MFAService, c cache.Cache) *Service {
	return &Service{passwords: passwords, signer: signer, refresh: refresh, mfa: mfa, cache: c}
}

// pendingMFAKey is where handleEnableMFA stashes a generated secret
// until handleVerifyMFA confirms possession of it, keyed by user so a
// caller can never supply — or guess — the secret being verified.
func pendingMFAKey(userID string) string {
	return fmt.Sprintf("mfa:pending:%s", userID)
}

// Register wires every auth command handler into m.
func (s *Service) Register(m *cqrs.Mediator) {
	m.RegisterCommand(RegisterCommand{}, authz.Requirement{}, s.handleRegister)
	m.RegisterCommand(LoginCommand{}, authz.Requirement{}, s.handleLogin)
	m.RegisterCommand(RefreshCommand{}, authz.Requirement{}, s.handleRefresh)
	m.RegisterCommand(LogoutCommand{}, authz.Requirement{}, s.handleLogout)
	m.RegisterCommand(EnableMFACommand{}, authz.Requirement{}, s.handleEnableMFA)
	m.RegisterCommand(VerifyMFACommand{}, authz.Requirement{}, s.handleVerifyMFA)
	m.RegisterCommand(DisableMFACommand{}, authz.Requirement{}, s.handleDisableMFA)
}

func (s *Service) accessInput(u *entity.User) token.AccessTokenInput {
	return token.AccessTokenInput{
		UserID:          u.ID,
		Email:           u.Email,
		TenantID:        u.TenantID,
		Roles:           u.Roles,
		Permissions:     u.Permissions,
		DepartmentID:    u.DepartmentID,
		TokenGeneration: u.TokenGeneration,
	}
}

func (s *Service) handleRegister(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(RegisterCommand)
	email := textnorm.NormalizeEmail(cmd.Email)

	existing, err := tx.Users().GetByEmail(ctx, rc.TenantID, email)
	if err != nil && err != domain.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	if compromised, _ := s.passwords.CheckBreach(ctx, cmd.Password); compromised {
		return nil, domain.NewError(domain.CodeValidationError, "password has appeared in a known data breach")
	}

	hash, err := s.passwords.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:                    uuid.New().String(),
		TenantID:              rc.TenantID,
		Email:                 email,
		Username:              cmd.Username,
		PasswordHash:          hash,
		Roles:                 []string{entity.RoleMember},
		Permissions:           entity.DefaultPermissionsForRole(entity.RoleMember),
		IsActive:              true,
		EmailVerified:         false,
		LastPasswordChangeAt:  now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := tx.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	recorder.Emit(events.TypeUserRegistered, user.ID, 1, map[string]any{
		"actor_user_id": user.ID,
		"email":         user.Email,
	})

	resp := dto.FromUser(user)
	return resp, nil
}

func (s *Service) handleLogin(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(LoginCommand)
	email := textnorm.NormalizeEmail(cmd.Email)

	user, err := tx.Users().GetByEmail(ctx, rc.TenantID, email)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveAccount
	}

	ok, newHash, err := s.passwords.VerifyAndRehash(cmd.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if newHash != "" {
		user.PasswordHash = newHash
		if err := tx.Users().Update(ctx, user); err != nil {
			return nil, err
		}
	}

	if user.MFAEnabled {
		if cmd.MFACode == "" {
			return nil, domain.ErrMFARequired
		}
		if !s.mfa.Verify(user.MFASecret, cmd.MFACode) {
			return nil, domain.ErrInvalidMFACode
		}
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := tx.Users().Update(ctx, user); err != nil {
		return nil, err
	}

	issued, err := s.refresh.IssueNewFamily(ctx, s.signer, s.accessInput(user), cmd.DeviceFingerprintHash)
	if err != nil {
		return nil, err
	}

	recorder.Emit(events.TypeUserLoggedIn, user.ID, 1, map[string]any{
		"actor_user_id": user.ID,
	})

	return dto.TokenPairResponse{
		AccessToken:  issued.AccessToken,
		RefreshToken: issued.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    issued.ExpiresIn,
	}, nil
}

func (s *Service) handleRefresh(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(RefreshCommand)

	// The refresh token's user isn't known until after lookup, so the
	// RefreshService performs the lookup itself; fetch the user only
	// once we have an id so we can sign a fresh access token that
	// reflects this moment's roles/permissions.
	digestUser, err := s.userForRefreshToken(ctx, tx, rc.TenantID, cmd.RefreshToken)
	if err != nil {
		return nil, err
	}

	issued, err := s.refresh.Rotate(ctx, s.signer, rc.TenantID, cmd.RefreshToken, s.accessInput(digestUser), recorder)
	if err != nil {
		return nil, err
	}

	return dto.TokenPairResponse{
		AccessToken:  issued.AccessToken,
		RefreshToken: issued.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    issued.ExpiresIn,
	}, nil
}

// userForRefreshToken looks up the refresh-token row's owner so the
// rotated access token carries current claims. A dedicated lookup
// (rather than threading it through RefreshService) keeps that package
// free of a dependency on UserRepository.
func (s *Service) userForRefreshToken(ctx context.Context, tx cqrs.Tx, tenantID, raw string) (*entity.User, error) {
	record, err := tx.RefreshTokens().GetByTokenHashForUpdate(ctx, tenantID, s.refresh.Digest(raw))
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	user, err := tx.Users().GetByID(ctx, tenantID, record.UserID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) handleLogout(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(LogoutCommand)
	if err := s.refresh.Logout(ctx, rc.TenantID, cmd.RefreshToken); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Service) handleEnableMFA(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(EnableMFACommand)
	user, err := tx.Users().GetByID(ctx, rc.TenantID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.mfa.GenerateEnrollment(user.Email)
	if err != nil {
		return nil, err
	}
	// The secret is not written onto the user until VerifyMFACommand
	// confirms possession of the device; until then it lives only in
	// this short-lived, server-held entry, never round-tripped through
	// the client (spec §4.5's MFA gating is only meaningful once
	// enrollment is proven, not merely requested).
	encoded, err := json.Marshal(enrollment.Secret)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, pendingMFAKey(user.ID), encoded, pendingMFATTL)
	return dto.MFAEnrollmentResponse{Secret: enrollment.Secret, URI: enrollment.URI}, nil
}

func (s *Service) handleVerifyMFA(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(VerifyMFACommand)
	user, err := tx.Users().GetByID(ctx, rc.TenantID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	raw, ok := s.cache.Get(ctx, pendingMFAKey(user.ID))
	if !ok {
		return nil, domain.NewError(domain.CodeValidationError, "no pending MFA enrollment to verify, or it has expired")
	}
	var pendingSecret string
	if err := json.Unmarshal(raw, &pendingSecret); err != nil {
		return nil, err
	}
	if !s.mfa.Verify(pendingSecret, cmd.Code) {
		return nil, domain.ErrInvalidMFACode
	}

	user.MFASecret = pendingSecret
	user.MFAEnabled = true
	if err := tx.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, pendingMFAKey(user.ID))
	recorder.Emit(events.TypeMFAEnabled, user.ID, 1, map[string]any{"actor_user_id": user.ID})
	return map[string]bool{"enabled": true}, nil
}

func (s *Service) handleDisableMFA(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(DisableMFACommand)
	user, err := tx.Users().GetByID(ctx, rc.TenantID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	ok, err := s.passwords.Verify(cmd.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	user.MFASecret = ""
	user.MFAEnabled = false
	if err := tx.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return map[string]bool{"enabled": false}, nil
}
