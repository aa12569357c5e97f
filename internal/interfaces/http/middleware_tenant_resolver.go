package http

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/infrastructure/metrics"
	"github.com/taskforge/core-api/internal/platform/tenantresolver"
)

// publicInfraPaths never need a resolved tenant at all.
var publicInfraPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// TenantResolver is the fourth pipeline stage. It resolves from
// whatever of header/subdomain/register-body is present; if nothing is
// present it leaves the RequestContext's TenantID empty rather than
// failing outright, since a bearer-only client carries its tenant as a
// JWT claim that Authentication — the next stage — hasn't verified yet.
// Any signal present here that disagrees with another is rejected
// immediately (spec §9 "header/claim tenant mismatch requires
// agreement").
func TenantResolver(resolver *tenantresolver.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if publicInfraPaths[c.Path()] {
			return c.Next()
		}

		signals := tenantresolver.Signals{
			HeaderTenantID: c.Get("X-Tenant-ID"),
			Host:           c.Hostname(),
		}
		if c.Method() == fiber.MethodPost && c.Path() == "/api/v1/auth/register" {
			signals.BodyTenantID = peekBodyTenantID(c)
		}

		tenant, err := resolver.Resolve(c.Context(), signals)
		switch {
		case err == nil:
			requestContext(c).TenantID = tenant.ID
		case errors.Is(err, domain.ErrMissingTenant):
			// Deferred: Authentication may still supply a tenant_id claim.
		default:
			if reason := crossTenantReason(err); reason != "" {
				metrics.ObserveCrossTenantDenial(reason)
				lg := logFromCtx(c)
				lg.Warn().
					Str("header_tenant_id", signals.HeaderTenantID).
					Str("host", signals.Host).
					Str("body_tenant_id", signals.BodyTenantID).
					Str("reason", reason).
					Msg("cross-tenant access attempt denied at tenant resolution")
			}
			return err
		}
		return c.Next()
	}
}

// peekBodyTenantID extracts just the tenant_id field from a
// /auth/register body without consuming or otherwise touching the
// buffer the handler parses again afterward — Fiber's c.Body() returns
// the same already-read buffer on every call within one request.
func peekBodyTenantID(c *fiber.Ctx) string {
	var body struct {
		TenantID string `json:"tenant_id"`
	}
	_ = json.Unmarshal(c.Body(), &body)
	return body.TenantID
}
