package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/repository"
	"github.com/taskforge/core-api/internal/infrastructure/metrics"
	"github.com/taskforge/core-api/internal/platform/security/token"
	"github.com/taskforge/core-api/internal/platform/tenantresolver"
)

// publicAuthPaths need no bearer token — they are how a caller obtains
// one. Grounded on original_source/app/shared/middleware/auth.py's
// public_paths list.
var publicAuthPaths = map[string]bool{
	"/api/v1/auth/register": true,
	"/api/v1/auth/login":    true,
	"/api/v1/auth/refresh":  true,
	"/health":               true,
	"/ready":                true,
	"/live":                 true,
}

// Authentication is the fifth pipeline stage. It verifies a bearer
// access token when present, re-resolves the tenant with the token's
// tenant_id claim folded in (enforcing agreement with whatever
// TenantResolver already found), and rejects a token whose
// token_generation claim is behind the user's current generation — the
// immediate-revocation mechanism spec §9's "Role/permission drift" note
// names as the alternative to waiting out the access token's TTL.
func Authentication(signer *token.Signer, resolver *tenantresolver.Resolver, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if publicAuthPaths[c.Path()] {
			return c.Next()
		}

		header := c.Get("Authorization")
		if header == "" {
			return domain.ErrInvalidCredentials
		}
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
			return domain.NewError(domain.CodeUnauthenticated, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := signer.Verify(raw)
		if err != nil {
			return domain.NewError(domain.CodeUnauthenticated, "invalid or expired access token")
		}

		rc := requestContext(c)
		tenant, err := resolver.Resolve(c.Context(), tenantresolver.Signals{
			HeaderTenantID: c.Get("X-Tenant-ID"),
			Host:           c.Hostname(),
			ClaimTenantID:  claims.TenantID,
		})
		if err != nil {
			if reason := crossTenantReason(err); reason != "" {
				metrics.ObserveCrossTenantDenial(reason)
				lg := logFromCtx(c)
				lg.Warn().
					Str("actor_user_id", claims.Subject).
					Str("claim_tenant_id", claims.TenantID).
					Str("header_tenant_id", c.Get("X-Tenant-ID")).
					Str("host", c.Hostname()).
					Str("reason", reason).
					Msg("cross-tenant access attempt denied at authentication")
			}
			return err
		}

		user, err := users.GetByID(c.Context(), tenant.ID, claims.Subject)
		if err != nil {
			return domain.NewError(domain.CodeUnauthenticated, "invalid or expired access token")
		}
		if !user.IsActive {
			return domain.ErrInactiveAccount
		}
		if claims.TokenGeneration < user.TokenGeneration {
			return domain.NewError(domain.CodeUnauthenticated, "token has been revoked")
		}

		rc.TenantID = tenant.ID
		rc.UserID = claims.Subject
		rc.Roles = claims.Roles
		rc.Permissions = claims.Permissions
		rc.DepartmentID = claims.DepartmentID
		return c.Next()
	}
}

// crossTenantReason classifies a tenantresolver.Resolve error into the
// label spec §7's cross-tenant denial counter expects, or "" if err
// isn't a cross-tenant signal at all (e.g. ErrMissingTenant, which just
// means no tenant was identified, not that one was identified and
// disputed).
func crossTenantReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTenantMismatch):
		return "header_claim_mismatch"
	case errors.Is(err, domain.ErrTenantInactive):
		return "tenant_inactive"
	default:
		return ""
	}
}
