package audit

import (
	"context"

	"github.com/taskforge/core-api/internal/application/cqrs"
	"github.com/taskforge/core-api/internal/application/dto"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/platform/authz"
	"github.com/taskforge/core-api/internal/platform/reqcontext"
)

// readers is the role set allowed to read the audit trail: tenant
// administrators over their own tenant, or a platform administrator.
var readers = authz.Requirement{Roles: []string{entity.RoleTenantAdmin, entity.RoleSystemAdmin}}

// Service bundles the audit-log query handler.
type Service struct{}

// NewService constructs the audit Service.
func NewService() *Service { return &Service{} }

// Register wires the audit-log query into m.
func (s *Service) Register(m *cqrs.Mediator) {
	m.RegisterQuery(ListAuditLogQuery{}, s.handleList)
}

func (s *Service) handleList(ctx context.Context, tx cqrs.ReadTx, rc *reqcontext.RequestContext, queryAny any) (any, error) {
	if err := authz.Authorize(rc, readers); err != nil {
		return nil, err
	}
	q := queryAny.(ListAuditLogQuery)
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, err := tx.AuditLogs().ListByTenant(ctx, rc.TenantID, limit, q.Offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AuditLogEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.FromAuditLogEntry(e))
	}
	return dto.AuditLogListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: q.Offset},
	}, nil
}
