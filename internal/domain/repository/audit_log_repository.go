package repository

import (
	"context"

	"github.com/taskforge/core-api/internal/domain/entity"
)

// AuditLogRepository is the persistence port for the append-only audit
// trail. ListByTenant never crosses tenant boundaries (spec §3).
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLogEntry) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.AuditLogEntry, error)
}
