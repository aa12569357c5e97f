package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/platform/reqcontext"
)

func memberContext(userID string) *reqcontext.RequestContext {
	return &reqcontext.RequestContext{
		UserID:      userID,
		Roles:       []string{entity.RoleMember},
		Permissions: entity.DefaultPermissionsForRole(entity.RoleMember),
	}
}

func TestAuthorize_RoleGateDeniesWrongRole(t *testing.T) {
	rc := memberContext("user-1")
	err := Authorize(rc, Requirement{Roles: []string{entity.RoleTenantAdmin}})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAuthorize_PermissionGateDeniesMissingPermission(t *testing.T) {
	rc := memberContext("user-1")
	err := Authorize(rc, Requirement{Permission: entity.PermissionTasksDelete})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAuthorize_PermissionGateAllowsWildcard(t *testing.T) {
	rc := &reqcontext.RequestContext{UserID: "sysadmin", Roles: []string{entity.RoleSystemAdmin}, Permissions: []string{entity.PermissionAll}}
	err := Authorize(rc, Requirement{Permission: entity.PermissionTasksDelete})
	assert.NoError(t, err)
}

func TestTaskResourceGate_AllowsAssignee(t *testing.T) {
	assignee := "user-1"
	task := &entity.Task{AssignedToUserID: &assignee, CreatedByUserID: "user-2"}
	rc := memberContext("user-1")
	err := Authorize(rc, Requirement{ResourceGate: TaskResourceGate(task)})
	assert.NoError(t, err)
}

func TestTaskResourceGate_AllowsCreator(t *testing.T) {
	task := &entity.Task{CreatedByUserID: "user-1"}
	rc := memberContext("user-1")
	err := Authorize(rc, Requirement{ResourceGate: TaskResourceGate(task)})
	assert.NoError(t, err)
}

func TestTaskResourceGate_AllowsAdminRegardlessOfOwnership(t *testing.T) {
	task := &entity.Task{CreatedByUserID: "someone-else"}
	rc := &reqcontext.RequestContext{UserID: "admin-1", Roles: []string{entity.RoleTenantAdmin}}
	err := Authorize(rc, Requirement{ResourceGate: TaskResourceGate(task)})
	assert.NoError(t, err)
}

func TestTaskResourceGate_AllowsSameDepartmentWithReadPermission(t *testing.T) {
	dept := "dept-1"
	task := &entity.Task{CreatedByUserID: "someone-else", DepartmentID: &dept}
	rc := &reqcontext.RequestContext{
		UserID:       "user-3",
		DepartmentID: &dept,
		Permissions:  []string{entity.PermissionTasksRead},
	}
	err := Authorize(rc, Requirement{ResourceGate: TaskResourceGate(task)})
	assert.NoError(t, err)
}

func TestTaskResourceGate_DeniesUnrelatedUser(t *testing.T) {
	task := &entity.Task{CreatedByUserID: "someone-else"}
	rc := memberContext("user-3")
	err := Authorize(rc, Requirement{ResourceGate: TaskResourceGate(task)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAuthorize_AllGatesPassingSucceeds(t *testing.T) {
	task := &entity.Task{CreatedByUserID: "user-1"}
	rc := memberContext("user-1")
	err := Authorize(rc, Requirement{
		Roles:        []string{entity.RoleMember, entity.RoleTenantAdmin},
		Permission:   entity.PermissionTasksUpdate,
		ResourceGate: TaskResourceGate(task),
	})
	assert.NoError(t, err)
}
