package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/core-api/internal/application/cqrs"
	"github.com/taskforge/core-api/internal/domain/repository"
)

var _ cqrs.UnitOfWork = (*PgUnitOfWork)(nil)
var _ cqrs.Tx = (*PgTx)(nil)
var _ cqrs.ReadTx = (*PgReadTx)(nil)

// PgUnitOfWork opens pgx transactions bound to the mediator's
// Tx/ReadTx interfaces. It generalizes the inventory domain's
// pool.Begin -> bind repos to tx -> fn -> Commit/Rollback shape
// (formerly TxRunner.Run) into one that hands out every repository this
// system needs rather than a fixed three, and adds a read-only variant
// for the query side.
type PgUnitOfWork struct {
	pool *pgxpool.Pool
}

// NewPgUnitOfWork builds the unit of work over pool.
func NewPgUnitOfWork(pool *pgxpool.Pool) *PgUnitOfWork {
	return &PgUnitOfWork{pool: pool}
}

// Begin opens a read-write transaction and binds every repository to it.
// tenantID is accepted to match cqrs.UnitOfWork's signature; isolation
// itself is enforced by each repository method requiring a tenant id on
// every call, not by this transaction.
func (u *PgUnitOfWork) Begin(ctx context.Context, tenantID string) (cqrs.Tx, error) {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &PgTx{tx: tx}, nil
}

// BeginRead opens a read-only transaction, giving every query within one
// request a consistent snapshot even when it issues several statements
// (e.g. ListTasksQuery's count-then-fetch).
func (u *PgUnitOfWork) BeginRead(ctx context.Context, tenantID string) (cqrs.ReadTx, error) {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("begin read transaction: %w", err)
	}
	return &PgReadTx{tx: tx}, nil
}

// PgTx binds one pgx.Tx to every tenant-scoped repository this system
// needs, satisfying cqrs.Tx.
type PgTx struct {
	tx pgx.Tx
}

func (t *PgTx) Users() repository.UserRepository                 { return NewUserRepository(t.tx) }
func (t *PgTx) Tenants() repository.TenantRepository             { return NewTenantRepository(t.tx) }
func (t *PgTx) RefreshTokens() repository.RefreshTokenRepository { return NewRefreshTokenRepository(t.tx) }
func (t *PgTx) Tasks() repository.TaskRepository                 { return NewTaskRepository(t.tx) }
func (t *PgTx) Comments() repository.CommentRepository           { return NewCommentRepository(t.tx) }
func (t *PgTx) AuditLogs() repository.AuditLogRepository         { return NewAuditLogRepository(t.tx) }
func (t *PgTx) Outbox() repository.OutboxRepository              { return NewOutboxRepository(t.tx) }

func (t *PgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (t *PgTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// PgReadTx binds one read-only pgx.Tx to the repositories queries use,
// satisfying cqrs.ReadTx.
type PgReadTx struct {
	tx pgx.Tx
}

func (t *PgReadTx) Users() repository.UserRepository         { return NewUserRepository(t.tx) }
func (t *PgReadTx) Tenants() repository.TenantRepository     { return NewTenantRepository(t.tx) }
func (t *PgReadTx) Tasks() repository.TaskRepository         { return NewTaskRepository(t.tx) }
func (t *PgReadTx) Comments() repository.CommentRepository   { return NewCommentRepository(t.tx) }
func (t *PgReadTx) AuditLogs() repository.AuditLogRepository { return NewAuditLogRepository(t.tx) }

// Close discards the read-only transaction. A snapshot that is never
// written through has nothing to commit; rollback is just releasing it.
func (t *PgReadTx) Close(ctx context.Context) {
	_ = t.tx.Rollback(ctx)
}
