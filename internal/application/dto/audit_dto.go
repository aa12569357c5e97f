package dto

import (
	"time"

	"github.com/taskforge/core-api/internal/domain/entity"
)

// AuditLogEntryResponse is the public shape of an AuditLogEntry.
type AuditLogEntryResponse struct {
	ID          string         `json:"id"`
	ActorUserID string         `json:"actor_user_id"`
	Action      string         `json:"action"`
	TargetType  string         `json:"target_type"`
	TargetID    string         `json:"target_id"`
	Changes     map[string]any `json:"changes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AuditLogListResponse is the paginated listing shape for
// GET /api/v1/audit-log.
type AuditLogListResponse struct {
	Items []AuditLogEntryResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// FromAuditLogEntry maps a domain AuditLogEntry to its public response
// shape.
func FromAuditLogEntry(e *entity.AuditLogEntry) AuditLogEntryResponse {
	return AuditLogEntryResponse{
		ID:          e.ID,
		ActorUserID: e.ActorUserID,
		Action:      e.Action,
		TargetType:  e.TargetType,
		TargetID:    e.TargetID,
		Changes:     e.Changes,
		CreatedAt:   e.CreatedAt,
	}
}
