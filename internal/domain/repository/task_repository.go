package repository

import (
	"context"

	"github.com/taskforge/core-api/internal/domain/entity"
)

// TaskFilter narrows ListByTenant. Zero-valued fields are unconstrained.
type TaskFilter struct {
	ProjectID        string
	Status           string
	AssignedToUserID string
	IncludeDeleted   bool
	Limit            int
	Offset           int
}

// TaskStatistics is the aggregate result backing
// GET /tasks/reports/statistics.
type TaskStatistics struct {
	TotalTasks       int
	ByStatus         map[string]int
	ByPriority       map[string]int
	OverdueCount     int
	AvgActualHours   float64
}

// TaskRepository is the persistence port for Task and its owned
// Comments, every method tenant-scoped.
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Task, error)
	// GetByIDForUpdate takes a row lock, used by the mediator's
	// transactional stage before applying an aggregate mutation so the
	// optimistic-concurrency check in taskagg.CheckVersion is race-free.
	GetByIDForUpdate(ctx context.Context, tenantID, id string) (*entity.Task, error)
	// TenantOf looks up which tenant owns id, ignoring tenant scoping
	// entirely. It exists only so a GetByID/GetByIDForUpdate miss can be
	// classified as "doesn't exist anywhere" versus "exists, but under a
	// different tenant" for spec §7's cross-tenant denial metric — the
	// caller must still surface domain.ErrNotFound either way, never the
	// found tenant, to the requester.
	TenantOf(ctx context.Context, id string) (tenantID string, found bool, err error)
	Update(ctx context.Context, task *entity.Task) error
	ListByTenant(ctx context.Context, tenantID string, filter TaskFilter) ([]*entity.Task, int, error)
	Statistics(ctx context.Context, tenantID string) (*TaskStatistics, error)
}

// CommentRepository is the persistence port for the append-only Comment
// child entity owned by Task.
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	ListByTask(ctx context.Context, tenantID, taskID string, limit, offset int) ([]*entity.Comment, error)
}
