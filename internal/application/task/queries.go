package task

import (
	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/repository"
)

// GetTaskByIDQuery fetches a single task. The resource gate runs inside
// the handler once the task has been loaded, same as the write side.
type GetTaskByIDQuery struct {
	TaskID string
}

func (q GetTaskByIDQuery) Validate() error {
	if q.TaskID == "" {
		return domain.NewError(domain.CodeValidationError, "task_id is required")
	}
	return nil
}

// ListTasksQuery backs GET /tasks. AssignedToUserID/Status/ProjectID
// narrow the listing; zero values are unconstrained.
type ListTasksQuery struct {
	ProjectID        string
	Status           string
	AssignedToUserID string
	Limit            int
	Offset           int
}

func (q ListTasksQuery) Validate() error { return nil }

func (q ListTasksQuery) toFilter() repository.TaskFilter {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	return repository.TaskFilter{
		ProjectID:        q.ProjectID,
		Status:           q.Status,
		AssignedToUserID: q.AssignedToUserID,
		Limit:            limit,
		Offset:           q.Offset,
	}
}

// GetTaskStatisticsQuery backs GET /tasks/reports/statistics.
type GetTaskStatisticsQuery struct{}

func (q GetTaskStatisticsQuery) Validate() error { return nil }

// ListTaskCommentsQuery backs a task's comment thread listing.
type ListTaskCommentsQuery struct {
	TaskID string
	Limit  int
	Offset int
}

func (q ListTaskCommentsQuery) Validate() error {
	if q.TaskID == "" {
		return domain.NewError(domain.CodeValidationError, "task_id is required")
	}
	return nil
}
