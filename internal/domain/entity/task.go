package entity

import "time"

// Task statuses. DONE is terminal except to CANCELLED by an administrator.
const (
	StatusTodo       = "TODO"
	StatusInProgress = "IN_PROGRESS"
	StatusInReview   = "IN_REVIEW"
	StatusBlocked    = "BLOCKED"
	StatusDone       = "DONE"
	StatusCancelled  = "CANCELLED"
)

// Task priorities.
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

// Task is the aggregate root for work items. Comments are owned
// exclusively by their Task; cross-aggregate references (AssignedToUserID,
// CreatedByUserID, ProjectID) are by id only.
//
// DepartmentID is denormalized from the owning project at creation time
// rather than requiring a join through a separate Project aggregate —
// there is no standalone Project module in this system, so the
// resource-gate rule that reads "task.project.department_id" is
// evaluated directly against this field.
type Task struct {
	ID                string
	TenantID          string
	ProjectID         string
	DepartmentID      *string
	Title             string
	Description       string
	Status            string
	Priority          string
	AssignedToUserID  *string
	CreatedByUserID   string
	Watchers          []string
	Tags              []string
	DueDate           *time.Time
	EstimatedHours    *float64
	ActualHours       *float64
	BlockedReason     string
	Version           int64
	IsDeleted         bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
