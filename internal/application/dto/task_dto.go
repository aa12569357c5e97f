package dto

import "time"

// TaskResponse is the public shape of a Task.
type TaskResponse struct {
	ID               string     `json:"id"`
	TenantID         string     `json:"tenant_id"`
	ProjectID        string     `json:"project_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	AssignedToUserID *string    `json:"assigned_to_user_id,omitempty"`
	CreatedByUserID  string     `json:"created_by_user_id"`
	Watchers         []string   `json:"watchers"`
	Tags             []string   `json:"tags"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	EstimatedHours   *float64   `json:"estimated_hours,omitempty"`
	ActualHours      *float64   `json:"actual_hours,omitempty"`
	BlockedReason    string     `json:"blocked_reason,omitempty"`
	Version          int64      `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CommentResponse is the public shape of a Comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskListResponse is the paginated listing shape for GET /tasks.
type TaskListResponse struct {
	Items []TaskResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// TaskStatisticsResponse is the aggregate shape for GET /tasks/statistics.
type TaskStatisticsResponse struct {
	TotalCount      int            `json:"total_count"`
	CountByStatus   map[string]int `json:"count_by_status"`
	CountByPriority map[string]int `json:"count_by_priority"`
	OverdueCount    int            `json:"overdue_count"`
}
