// Package auth implements the auth command/query handlers of spec
// §4.5/§4.9: Register, Login, Refresh, Logout, EnableMFA, VerifyMFA,
// DisableMFA. Grounded on original_source/app/auth/handlers.py, adapted
// to the mediator pipeline and to spec's opaque-refresh-token design.
package auth

import (
	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/platform/security/password"
)

// RegisterCommand creates a new user within the request's tenant.
type RegisterCommand struct {
	Email    string
	Username string
	Password string
}

func (c RegisterCommand) Validate() error {
	if c.Email == "" || c.Username == "" {
		return domain.NewError(domain.CodeValidationError, "email and username are required")
	}
	if err := password.ValidateStrength(c.Password); err != nil {
		return domain.NewError(domain.CodeValidationError, err.Error())
	}
	return nil
}

// LoginCommand authenticates a user and issues a fresh token family.
type LoginCommand struct {
	Email                 string
	Password              string
	MFACode               string
	DeviceFingerprintHash *string
}

func (c LoginCommand) Validate() error {
	if c.Email == "" || c.Password == "" {
		return domain.NewError(domain.CodeValidationError, "email and password are required")
	}
	return nil
}

// RefreshCommand rotates a presented refresh token.
type RefreshCommand struct {
	RefreshToken string
}

func (c RefreshCommand) Validate() error {
	if c.RefreshToken == "" {
		return domain.NewError(domain.CodeValidationError, "refresh_token is required")
	}
	return nil
}

// LogoutCommand revokes the presented refresh token only.
type LogoutCommand struct {
	RefreshToken string
}

func (c LogoutCommand) Validate() error {
	if c.RefreshToken == "" {
		return domain.NewError(domain.CodeValidationError, "refresh_token is required")
	}
	return nil
}

// EnableMFACommand begins TOTP enrollment for the acting user.
type EnableMFACommand struct {
	UserID string
}

func (c EnableMFACommand) Validate() error {
	if c.UserID == "" {
		return domain.NewError(domain.CodeValidationError, "user_id is required")
	}
	return nil
}

// VerifyMFACommand confirms a pending enrollment with a TOTP code. The
// secret it checks against is the one handleEnableMFA stashed
// server-side for this user, never one the caller supplies — a client
// has no way to enable MFA with a secret it simply made up.
type VerifyMFACommand struct {
	UserID string
	Code   string
}

func (c VerifyMFACommand) Validate() error {
	if c.UserID == "" || c.Code == "" {
		return domain.NewError(domain.CodeValidationError, "user_id and code are required")
	}
	return nil
}

// DisableMFACommand clears MFASecret and flips MFAEnabled off, requiring
// the current password as a step-down confirmation.
type DisableMFACommand struct {
	UserID   string
	Password string
}

func (c DisableMFACommand) Validate() error {
	if c.UserID == "" || c.Password == "" {
		return domain.NewError(domain.CodeValidationError, "user_id and password are required")
	}
	return nil
}
