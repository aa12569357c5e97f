package entity

import "time"

// Roles recognized by the authorization gates. Permissions default per
// role but may be overridden per-user.
const (
	RoleSystemAdmin    = "SYSTEM_ADMIN"
	RoleTenantAdmin    = "TENANT_ADMIN"
	RoleProjectManager = "PROJECT_MANAGER"
	RoleMember         = "MEMBER"
	RoleGuest          = "GUEST"
)

// Permission strings. "*" (used only by SYSTEM_ADMIN) grants everything.
const (
	PermissionAll             = "*"
	PermissionTasksRead       = "tasks.read"
	PermissionTasksCreate     = "tasks.create"
	PermissionTasksUpdate     = "tasks.update"
	PermissionTasksDelete     = "tasks.delete"
	PermissionTasksAssign     = "tasks.assign"
	PermissionReportsView     = "reports.view"
	PermissionUsersManage     = "users.manage"
	PermissionTenantConfigure = "tenant.configure"
)

// DefaultPermissionsForRole returns the default permission set for a role,
// per spec §4.7. Tenant admins get the wildcard "tasks.*" expressed as the
// concrete set of task permissions plus their own management permissions.
func DefaultPermissionsForRole(role string) []string {
	switch role {
	case RoleSystemAdmin:
		return []string{PermissionAll}
	case RoleTenantAdmin:
		return []string{
			PermissionTasksRead, PermissionTasksCreate, PermissionTasksUpdate,
			PermissionTasksDelete, PermissionTasksAssign,
			PermissionUsersManage, PermissionReportsView, PermissionTenantConfigure,
		}
	case RoleProjectManager:
		return []string{
			PermissionTasksRead, PermissionTasksCreate, PermissionTasksUpdate,
			PermissionTasksAssign, PermissionReportsView,
		}
	case RoleMember:
		return []string{PermissionTasksRead, PermissionTasksCreate, PermissionTasksUpdate}
	case RoleGuest:
		return []string{PermissionTasksRead}
	default:
		return nil
	}
}

// User belongs to exactly one Tenant. MFASecret is non-empty iff
// MFAEnabled (data model invariant enforced by the auth handlers, not by
// this struct).
type User struct {
	ID                   string
	TenantID             string
	Email                string // case-folded
	Username             string
	PasswordHash         string
	Roles                []string
	Permissions          []string
	DepartmentID         *string
	MFAEnabled           bool
	MFASecret            string
	IsActive             bool
	EmailVerified        bool
	LastLoginAt          *time.Time
	LastPasswordChangeAt time.Time
	// TokenGeneration is bumped whenever roles/permissions change or all
	// sessions are force-revoked; the Authentication middleware rejects
	// any access token whose embedded generation is stale. See SPEC_FULL
	// "token_generation claim".
	TokenGeneration int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasPermission reports whether the user's effective permission set
// grants the given permission, honoring the SYSTEM_ADMIN wildcard.
func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == PermissionAll || p == permission {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user can act as an administrator for
// resource-gate and state-machine purposes (TENANT_ADMIN or SYSTEM_ADMIN).
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleTenantAdmin) || u.HasRole(RoleSystemAdmin)
}
