package entity

import "time"

// Comment is append-only and owned exclusively by its Task.
type Comment struct {
	ID        string
	TenantID  string
	TaskID    string
	UserID    string
	Content   string
	CreatedAt time.Time
}
