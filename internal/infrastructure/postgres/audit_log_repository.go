package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo implements repository.AuditLogRepository.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository builds the adapter. Pass pool or tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

func (r *AuditLogRepo) Create(ctx context.Context, entry *entity.AuditLogEntry) error {
	if err := requireTenant(entry.TenantID); err != nil {
		return err
	}
	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("marshal audit log changes: %w", err)
	}
	const query = `
		INSERT INTO audit_log_entries (id, tenant_id, actor_user_id, action, target_type, target_id, changes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO NOTHING`
	_, err = r.q.Exec(ctx, query, entry.ID, entry.TenantID, entry.ActorUserID, entry.Action, entry.TargetType, entry.TargetID, changes, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log entry: %w", err)
	}
	return nil
}

func (r *AuditLogRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.AuditLogEntry, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	const query = `
		SELECT id, tenant_id, actor_user_id, action, target_type, target_id, changes, created_at
		FROM audit_log_entries WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit log entries: %w", err)
	}
	defer rows.Close()

	var list []*entity.AuditLogEntry
	for rows.Next() {
		var e entity.AuditLogEntry
		var changes []byte
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ActorUserID, &e.Action, &e.TargetType, &e.TargetID, &changes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log entry: %w", err)
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &e.Changes); err != nil {
				return nil, fmt.Errorf("unmarshal audit log changes: %w", err)
			}
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
