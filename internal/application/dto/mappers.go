package dto

import (
	"github.com/taskforge/core-api/internal/domain/entity"
)

// FromUser maps a domain User to its public response shape.
func FromUser(u *entity.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		TenantID:      u.TenantID,
		Email:         u.Email,
		Username:      u.Username,
		Roles:         u.Roles,
		Permissions:   u.Permissions,
		DepartmentID:  u.DepartmentID,
		MFAEnabled:    u.MFAEnabled,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}

// FromTask maps a domain Task to its public response shape.
func FromTask(t *entity.Task) TaskResponse {
	return TaskResponse{
		ID:               t.ID,
		TenantID:         t.TenantID,
		ProjectID:        t.ProjectID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           t.Status,
		Priority:         t.Priority,
		AssignedToUserID: t.AssignedToUserID,
		CreatedByUserID:  t.CreatedByUserID,
		Watchers:         t.Watchers,
		Tags:             t.Tags,
		DueDate:          t.DueDate,
		EstimatedHours:   t.EstimatedHours,
		ActualHours:      t.ActualHours,
		BlockedReason:    t.BlockedReason,
		Version:          t.Version,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// FromTenant maps a domain Tenant to its public response shape.
func FromTenant(t *entity.Tenant) TenantResponse {
	return TenantResponse{
		ID:               t.ID,
		Name:             t.Name,
		Subdomain:        t.Subdomain,
		SubscriptionPlan: t.SubscriptionPlan,
		MaxUsers:         t.MaxUsers,
		IsActive:         t.IsActive,
		Settings:         t.Settings,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

// FromComment maps a domain Comment to its public response shape.
func FromComment(c *entity.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		UserID:    c.UserID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}
