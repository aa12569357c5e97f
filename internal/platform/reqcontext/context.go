// Package reqcontext implements the Request Context described in spec
// §4.1 and §9: an explicit value threaded into every mediator and
// handler call rather than ambient state. Passing it explicitly
// (instead of stashing fields on context.Context or framework locals)
// makes tenant isolation auditable at the type level. Repositories do
// not take a RequestContext; handlers pass them its TenantID.
package reqcontext

import (
	"time"

	"github.com/taskforge/core-api/internal/domain"
)

// RequestContext carries everything downstream code needs to know about
// who is making a request and which tenant it is scoped to.
type RequestContext struct {
	TenantID         string
	UserID           string // empty before authentication
	DepartmentID     *string
	CorrelationID    string
	Roles            []string
	Permissions      []string
	RequestStartedAt time.Time
}

// RequireTenant returns domain.ErrMissingTenant if TenantID is unset.
// The mediator calls this before dispatching every command and query;
// the repositories in internal/infrastructure/postgres apply the same
// check to the tenantID they are given through their own requireTenant.
func (rc *RequestContext) RequireTenant() error {
	if rc == nil || rc.TenantID == "" {
		return domain.ErrMissingTenant
	}
	return nil
}

// HasPermission mirrors entity.User.HasPermission over the flattened
// claims carried in the request context (post-authentication).
func (rc *RequestContext) HasPermission(permission string) bool {
	for _, p := range rc.Permissions {
		if p == "*" || p == permission {
			return true
		}
	}
	return false
}

// HasRole reports whether any of the context's roles matches.
func (rc *RequestContext) HasRole(role string) bool {
	for _, r := range rc.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports TENANT_ADMIN or SYSTEM_ADMIN membership.
func (rc *RequestContext) IsAdmin() bool {
	return rc.HasRole("TENANT_ADMIN") || rc.HasRole("SYSTEM_ADMIN")
}

// New builds a fresh RequestContext stamped with the current time, used
// by the middleware pipeline's earliest stage.
func New(correlationID string) *RequestContext {
	return &RequestContext{
		CorrelationID:    correlationID,
		RequestStartedAt: time.Now().UTC(),
	}
}
