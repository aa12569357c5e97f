package entity

import "time"

// AuditLogEntry is append-only and never served cross-tenant.
type AuditLogEntry struct {
	ID          string
	TenantID    string
	ActorUserID string
	Action      string
	TargetType  string
	TargetID    string
	Changes     map[string]any // structured before/after
	CreatedAt   time.Time
}
