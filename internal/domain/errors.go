// Package domain holds the pure business types and sentinel errors
// shared by every layer above it. It imports nothing from
// internal/infrastructure or internal/interfaces.
package domain

import "errors"

// Code is a stable, machine-readable error code from the taxonomy in
// spec §7. HTTP status mapping lives in the interfaces/http error
// handler, not here.
type Code string

const (
	CodeValidationError    Code = "VALIDATION_ERROR"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeMFARequired        Code = "MFA_REQUIRED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeInvalidTransition  Code = "INVALID_TRANSITION"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeTenantMismatch     Code = "TENANT_MISMATCH"
	CodeInternal           Code = "INTERNAL"
)

// Error is a known, structured error that the HTTP boundary can map
// directly to an envelope without losing information to a stack trace.
type Error struct {
	Code    Code
	Message string
	// Details carries machine-auditable context (e.g. field names)
	// that is safe to return to the caller.
	Details map[string]any
}

func (e *Error) Error() string { return e.Message }

// NewError builds a structured Error.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetails attaches details and returns the same error for chaining.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// Sentinel errors used internally by repositories and domain logic;
// handlers translate these into *Error with the matching Code. Keeping
// them as package-level errors.New values (rather than *Error directly)
// lets repository code use errors.Is without constructing envelopes it
// has no business building.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account inactive")
	ErrMFARequired        = errors.New("mfa required")
	ErrInvalidMFACode     = errors.New("invalid mfa code")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenReplay        = errors.New("refresh token replay detected")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrTenantInactive     = errors.New("tenant inactive")
	ErrTenantMismatch     = errors.New("tenant mismatch")
	ErrMissingTenant      = errors.New("missing tenant context")
	ErrRateLimited        = errors.New("rate limited")
)
