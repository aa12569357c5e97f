package repository

import (
	"context"
	"time"

	"github.com/taskforge/core-api/internal/domain/entity"
)

// OutboxRepository is the persistence port for the transactional outbox
// (spec §4.3). Insert must run inside the same transaction as the
// aggregate mutation that produced the events; every other method is
// used by the out-of-transaction polling worker.
type OutboxRepository interface {
	Insert(ctx context.Context, row *entity.OutboxRow) error
	// FetchUnpublished returns unpublished, non-dead-lettered rows whose
	// NextAttemptAt has passed, ordered by (aggregate_id, occurred_at)
	// so that within one aggregate delivery order matches commit order
	// (spec §5 "Ordering guarantees").
	FetchUnpublished(ctx context.Context, limit int) ([]*entity.OutboxRow, error)
	MarkPublished(ctx context.Context, id string) error
	ScheduleRetry(ctx context.Context, id string, nextAttemptAt time.Time, attempts int) error
	MarkDeadLettered(ctx context.Context, id string) error
}
