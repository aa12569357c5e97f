package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/core-api/internal/domain"
)

// codeStatus maps every stable code in spec §7's taxonomy to its HTTP
// status. Kept as a lookup table rather than a chain of ifs so adding a
// code to internal/domain/errors.go and forgetting it here is obvious
// from a missing table entry rather than a silent 500.
var codeStatus = map[domain.Code]int{
	domain.CodeValidationError:   fiber.StatusBadRequest,
	domain.CodeUnauthenticated:   fiber.StatusUnauthorized,
	domain.CodeInvalidToken:      fiber.StatusUnauthorized,
	domain.CodeMFARequired:       fiber.StatusLocked,
	domain.CodeForbidden:         fiber.StatusForbidden,
	domain.CodeNotFound:          fiber.StatusNotFound,
	domain.CodeConflict:          fiber.StatusConflict,
	domain.CodeInvalidTransition: fiber.StatusConflict,
	domain.CodeRateLimited:       fiber.StatusTooManyRequests,
	domain.CodeTenantMismatch:    fiber.StatusBadRequest,
	domain.CodeInternal:          fiber.StatusInternalServerError,
}

// sentinelCode maps the plain errors.New sentinels used inside
// repositories and domain logic to the taxonomy code a *domain.Error
// would have carried, so handlers can return either shape and the HTTP
// layer still answers consistently.
var sentinelCode = map[error]domain.Code{
	domain.ErrNotFound:           domain.CodeNotFound,
	domain.ErrAlreadyExists:      domain.CodeConflict,
	domain.ErrInvalidCredentials: domain.CodeUnauthenticated,
	domain.ErrInactiveAccount:    domain.CodeForbidden,
	domain.ErrMFARequired:        domain.CodeMFARequired,
	domain.ErrInvalidMFACode:     domain.CodeValidationError,
	domain.ErrInvalidToken:       domain.CodeInvalidToken,
	domain.ErrTokenReplay:        domain.CodeInvalidToken,
	domain.ErrForbidden:          domain.CodeForbidden,
	domain.ErrConflict:           domain.CodeConflict,
	domain.ErrInvalidTransition:  domain.CodeInvalidTransition,
	domain.ErrTenantInactive:     domain.CodeNotFound,
	domain.ErrTenantMismatch:     domain.CodeTenantMismatch,
	domain.ErrMissingTenant:      domain.CodeValidationError,
	domain.ErrRateLimited:        domain.CodeRateLimited,
}

// classify turns any error a handler or the mediator returned into the
// (status, code, message, details) tuple respondError serializes.
// Unknown errors never leak their message or a stack — spec §7 "Unknown
// exceptions ... surfaced as INTERNAL with only the correlation id."
func classify(err error) (status int, code string, message string, details map[string]any) {
	var de *domain.Error
	if errors.As(err, &de) {
		status, ok := codeStatus[de.Code]
		if !ok {
			status = fiber.StatusInternalServerError
		}
		return status, string(de.Code), de.Message, de.Details
	}

	for sentinel, c := range sentinelCode {
		if errors.Is(err, sentinel) {
			return codeStatus[c], string(c), sentinel.Error(), nil
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fiber.StatusServiceUnavailable, string(domain.CodeInternal), "request cancelled or timed out", nil
	}

	return fiber.StatusInternalServerError, string(domain.CodeInternal), "an internal error occurred", nil
}
