package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskforge/core-api/internal/domain"
)

// Querier is the subset of pgxpool.Pool and pgx.Tx every repository in
// this package needs. Repositories take one of these rather than a
// concrete pool, so the same repository type serves both the
// auto-committing pool (read paths) and a transaction (write paths)
// without a second implementation.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}

// isNoRows reports whether err is pgx's no-rows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// requireTenant guards every tenant-scoped query against an empty tenant
// id — the isolation guarantee of spec §4.6 enforced one layer below
// reqcontext.RequestContext.RequireTenant, since repositories are also
// reachable from the outbox worker and other call sites that don't carry
// a RequestContext at all.
func requireTenant(tenantID string) error {
	if tenantID == "" {
		return domain.ErrMissingTenant
	}
	return nil
}
