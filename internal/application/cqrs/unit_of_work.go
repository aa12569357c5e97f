package cqrs

import (
	"context"

	"github.com/taskforge/core-api/internal/domain/repository"
)

// Tx bundles every tenant-scoped repository a command handler might
// need, all bound to the same database transaction. Concrete
// implementation: internal/infrastructure/postgres.PgTx, handed out by
// PgUnitOfWork.
type Tx interface {
	Users() repository.UserRepository
	Tenants() repository.TenantRepository
	RefreshTokens() repository.RefreshTokenRepository
	Tasks() repository.TaskRepository
	Comments() repository.CommentRepository
	AuditLogs() repository.AuditLogRepository
	Outbox() repository.OutboxRepository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ReadTx is the read-only counterpart used by queries; it never commits
// or rolls back, it is simply closed when the query returns.
type ReadTx interface {
	Users() repository.UserRepository
	Tenants() repository.TenantRepository
	Tasks() repository.TaskRepository
	Comments() repository.CommentRepository
	AuditLogs() repository.AuditLogRepository
	Close(ctx context.Context)
}

// UnitOfWork opens transactions scoped to one tenant. Every query the
// repositories it hands out perform must filter by that tenant id —
// enforced at the repository layer, not here.
type UnitOfWork interface {
	Begin(ctx context.Context, tenantID string) (Tx, error)
	BeginRead(ctx context.Context, tenantID string) (ReadTx, error)
}
