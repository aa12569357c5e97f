// Package task implements the Task command/query handlers of spec
// §4.10/§4.9: Create, Update, Assign, ChangeStatus, Delete, AddComment,
// plus the read-side GetByID/List/Statistics queries. Grounded on
// original_source/app/task/{commands,queries,handlers}.py, adapted to
// the mediator pipeline and to taskagg.Aggregate for state-transition
// rules instead of a Python dataclass aggregate.
package task

import (
	"time"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
)

// CreateTaskCommand creates a new task within the acting user's tenant.
// CreatedByUserID is never taken from the request body — the HTTP layer
// fills it from the authenticated RequestContext. DepartmentID comes from
// the request body's department_id field.
type CreateTaskCommand struct {
	ProjectID        string
	DepartmentID     *string
	Title            string
	Description      string
	Priority         string
	AssignedToUserID *string
	CreatedByUserID  string
	DueDate          *time.Time
	Tags             []string
	EstimatedHours   *float64
}

func (c CreateTaskCommand) Validate() error {
	if c.ProjectID == "" || c.Title == "" {
		return domain.NewError(domain.CodeValidationError, "project_id and title are required")
	}
	if c.Priority != "" && !isValidPriority(c.Priority) {
		return domain.NewError(domain.CodeValidationError, "invalid priority")
	}
	return nil
}

// UpdateTaskCommand applies a partial update to an existing task's
// mutable fields. Nil pointers/slices leave the corresponding field
// untouched; see taskagg.DetailsUpdate.
type UpdateTaskCommand struct {
	TaskID         string
	Title          *string
	Description    *string
	Priority       *string
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string
	Watchers       []string
	ExpectedVersion int64
}

func (c UpdateTaskCommand) Validate() error {
	if c.TaskID == "" {
		return domain.NewError(domain.CodeValidationError, "task_id is required")
	}
	if c.Priority != nil && !isValidPriority(*c.Priority) {
		return domain.NewError(domain.CodeValidationError, "invalid priority")
	}
	return nil
}

// AssignTaskCommand reassigns a task's owner.
type AssignTaskCommand struct {
	TaskID             string
	AssignedToUserID   string
	AssignedByUserID   string
	ExpectedVersion    int64
}

func (c AssignTaskCommand) Validate() error {
	if c.TaskID == "" || c.AssignedToUserID == "" {
		return domain.NewError(domain.CodeValidationError, "task_id and assigned_to_user_id are required")
	}
	return nil
}

// ChangeTaskStatusCommand drives the status state machine of spec §4.10.
type ChangeTaskStatusCommand struct {
	TaskID          string
	NewStatus       string
	BlockedReason   string
	ActorUserID     string
	ActorIsAdmin    bool
	ExpectedVersion int64
}

func (c ChangeTaskStatusCommand) Validate() error {
	if c.TaskID == "" || c.NewStatus == "" {
		return domain.NewError(domain.CodeValidationError, "task_id and new_status are required")
	}
	return nil
}

// DeleteTaskCommand soft-deletes a task.
type DeleteTaskCommand struct {
	TaskID      string
	ActorUserID string
}

func (c DeleteTaskCommand) Validate() error {
	if c.TaskID == "" {
		return domain.NewError(domain.CodeValidationError, "task_id is required")
	}
	return nil
}

// AddTaskCommentCommand appends a comment to a task's (append-only)
// comment thread.
type AddTaskCommentCommand struct {
	TaskID      string
	ActorUserID string
	Content     string
}

func (c AddTaskCommentCommand) Validate() error {
	if c.TaskID == "" || c.Content == "" {
		return domain.NewError(domain.CodeValidationError, "task_id and content are required")
	}
	return nil
}

func isValidPriority(p string) bool {
	switch p {
	case entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh, entity.PriorityCritical:
		return true
	default:
		return false
	}
}
