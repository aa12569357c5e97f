// Package authz implements the three AND-composed gates of spec §4.7:
// role, permission, and resource. Grounded on
// original_source/app/shared/security/authorization.py's
// Role/Permission enums and check_resource_access predicate, translated
// into Go's idiomatic typed-constant-plus-predicate-function style.
package authz

import (
	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/platform/reqcontext"
)

// CrossTenantObserver is notified whenever a request resolves to a
// resource that genuinely belongs to a different tenant than the
// caller's own, so metrics (spec §7) can be incremented without this
// package depending on Prometheus directly.
type CrossTenantObserver interface {
	ObserveCrossTenantDenial(reason string)
}

// ResourceGate evaluates a per-command predicate against the concrete
// target of a request. It receives the already-role/permission-passed
// RequestContext; returning false denies with Forbidden regardless of
// role or permission outcome.
type ResourceGate func(rc *reqcontext.RequestContext) bool

// Requirement is the fixed AND-composition of the three gates for one
// command or query. A nil Roles set means "no role check" (the caller
// need not be authenticated); an
// empty Permission means "no permission check"; a nil ResourceGate means
// "no resource check" (e.g. creating a brand-new resource has nothing
// to check against yet).
type Requirement struct {
	Roles        []string
	Permission   string
	ResourceGate ResourceGate
}

// Authorize runs all three gates in order, short-circuiting on the first
// failure. Every failure maps to the same domain.ErrForbidden so the
// caller never leaks which gate tripped, per spec §4.7 "never leaking
// the existence of the resource."
func Authorize(rc *reqcontext.RequestContext, req Requirement) error {
	if len(req.Roles) > 0 && !hasAnyRole(rc, req.Roles) {
		return domain.ErrForbidden
	}
	if req.Permission != "" && !rc.HasPermission(req.Permission) {
		return domain.ErrForbidden
	}
	if req.ResourceGate != nil && !req.ResourceGate(rc) {
		return domain.ErrForbidden
	}
	return nil
}

func hasAnyRole(rc *reqcontext.RequestContext, roles []string) bool {
	for _, r := range roles {
		if rc.HasRole(r) {
			return true
		}
	}
	return false
}

// TaskResourceGate implements spec §4.7's Task resource predicate:
// assigned_to == user OR created_by == user OR user is an admin OR
// (same department AND tasks.read in permissions).
func TaskResourceGate(task *entity.Task) ResourceGate {
	return func(rc *reqcontext.RequestContext) bool {
		if task.AssignedToUserID != nil && *task.AssignedToUserID == rc.UserID {
			return true
		}
		if task.CreatedByUserID == rc.UserID {
			return true
		}
		if rc.IsAdmin() {
			return true
		}
		if task.DepartmentID != nil && rc.DepartmentID != nil && *task.DepartmentID == *rc.DepartmentID &&
			rc.HasPermission(entity.PermissionTasksRead) {
			return true
		}
		return false
	}
}
