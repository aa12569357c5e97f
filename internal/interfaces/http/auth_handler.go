package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/core-api/internal/application/auth"
	"github.com/taskforge/core-api/internal/application/cqrs"
)

// AuthHandler exposes registration, login, refresh, logout, and MFA
// enrollment over the mediator's auth commands.
type AuthHandler struct {
	mediator *cqrs.Mediator
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(mediator *cqrs.Mediator) *AuthHandler {
	return &AuthHandler{mediator: mediator}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	TenantID string `json:"tenant_id"`
}

// Register godoc
// @Summary      Register a new user in the caller's tenant
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  registerRequest  true  "email, username, password, tenant_id"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  errorBody
// @Failure      409   {object}  errorBody
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in registerRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	result, err := h.mediator.Send(c.Context(), requestContext(c), auth.RegisterCommand{
		Email:    in.Email,
		Username: in.Username,
		Password: in.Password,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, result)
}

type loginRequest struct {
	Email                 string  `json:"email"`
	Password              string  `json:"password"`
	MFACode               string  `json:"mfa_code"`
	DeviceFingerprintHash *string `json:"device_fingerprint_hash"`
}

// Login godoc
// @Summary      Authenticate and issue a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  loginRequest  true  "email, password, mfa_code"
// @Success      200   {object}  dto.TokenPairResponse
// @Failure      401   {object}  errorBody
// @Failure      423   {object}  errorBody
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	result, err := h.mediator.Send(c.Context(), requestContext(c), auth.LoginCommand{
		Email:                 in.Email,
		Password:              in.Password,
		MFACode:               in.MFACode,
		DeviceFingerprintHash: in.DeviceFingerprintHash,
	})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh godoc
// @Summary      Rotate a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  refreshRequest  true  "refresh_token"
// @Success      200   {object}  dto.TokenPairResponse
// @Failure      401   {object}  errorBody
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var in refreshRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	result, err := h.mediator.Send(c.Context(), requestContext(c), auth.RefreshCommand{RefreshToken: in.RefreshToken})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

// Logout godoc
// @Summary      Revoke a single refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  refreshRequest  true  "refresh_token"
// @Success      204
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var in refreshRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	if _, err := h.mediator.Send(c.Context(), requestContext(c), auth.LogoutCommand{RefreshToken: in.RefreshToken}); err != nil {
		return err
	}
	return respondNoContent(c)
}

// EnableMFA godoc
// @Summary      Begin TOTP enrollment for the authenticated user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.MFAEnrollmentResponse
// @Router       /api/v1/auth/mfa/enable [post]
func (h *AuthHandler) EnableMFA(c *fiber.Ctx) error {
	rc := requestContext(c)
	result, err := h.mediator.Send(c.Context(), rc, auth.EnableMFACommand{UserID: rc.UserID})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

type verifyMFARequest struct {
	Code string `json:"code"`
}

// VerifyMFA godoc
// @Summary      Confirm TOTP enrollment with a code from the device
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  verifyMFARequest  true  "code"
// @Success      200   {object}  map[string]bool
// @Router       /api/v1/auth/mfa/verify [post]
func (h *AuthHandler) VerifyMFA(c *fiber.Ctx) error {
	var in verifyMFARequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	rc := requestContext(c)
	result, err := h.mediator.Send(c.Context(), rc, auth.VerifyMFACommand{
		UserID: rc.UserID,
		Code:   in.Code,
	})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

type disableMFARequest struct {
	Password string `json:"password"`
}

// DisableMFA godoc
// @Summary      Disable TOTP for the authenticated user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  disableMFARequest  true  "password"
// @Success      200   {object}  map[string]bool
// @Router       /api/v1/auth/mfa/disable [post]
func (h *AuthHandler) DisableMFA(c *fiber.Ctx) error {
	var in disableMFARequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	rc := requestContext(c)
	result, err := h.mediator.Send(c.Context(), rc, auth.DisableMFACommand{UserID: rc.UserID, Password: in.Password})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}
