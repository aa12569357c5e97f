package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo implements repository.OutboxRepository. Insert always runs
// inside the caller's transaction (Querier bound to a pgx.Tx); every
// other method is called by the out-of-transaction polling worker against
// the pool directly.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository builds the adapter. Pass pool or tx (Querier).
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

func (r *OutboxRepo) Insert(ctx context.Context, row *entity.OutboxRow) error {
	const query = `
		INSERT INTO outbox_rows (id, tenant_id, event_type, aggregate_id, payload, version, occurred_at, attempts, next_attempt_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,0,$7)`
	_, err := r.q.Exec(ctx, query, row.ID, row.TenantID, row.EventType, row.AggregateID, row.Payload, row.Version, row.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}
	return nil
}

func (r *OutboxRepo) FetchUnpublished(ctx context.Context, limit int) ([]*entity.OutboxRow, error) {
	const query = `
		SELECT id, tenant_id, event_type, aggregate_id, payload, version, occurred_at,
			published_at, attempts, next_attempt_at, dead_lettered
		FROM outbox_rows
		WHERE published_at IS NULL AND dead_lettered = false AND next_attempt_at <= now()
		ORDER BY aggregate_id, occurred_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished outbox rows: %w", err)
	}
	defer rows.Close()

	var list []*entity.OutboxRow
	for rows.Next() {
		var row entity.OutboxRow
		if err := rows.Scan(&row.ID, &row.TenantID, &row.EventType, &row.AggregateID, &row.Payload,
			&row.Version, &row.OccurredAt, &row.PublishedAt, &row.Attempts, &row.NextAttemptAt,
			&row.DeadLettered); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}

func (r *OutboxRepo) MarkPublished(ctx context.Context, id string) error {
	const query = `UPDATE outbox_rows SET published_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark outbox row published: %w", err)
	}
	return nil
}

func (r *OutboxRepo) ScheduleRetry(ctx context.Context, id string, nextAttemptAt time.Time, attempts int) error {
	const query = `UPDATE outbox_rows SET next_attempt_at = $2, attempts = $3 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, nextAttemptAt, attempts)
	if err != nil {
		return fmt.Errorf("schedule outbox retry: %w", err)
	}
	return nil
}

func (r *OutboxRepo) MarkDeadLettered(ctx context.Context, id string) error {
	const query = `UPDATE outbox_rows SET dead_lettered = true WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark outbox row dead-lettered: %w", err)
	}
	return nil
}
