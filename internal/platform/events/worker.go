package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
)

// Backoff schedule from spec §4.3: base 1s, cap 60s, up to 10 attempts
// before dead-lettering.
const (
	backoffBase    = time.Second
	backoffCap     = 60 * time.Second
	maxAttempts    = 10
)

// Worker polls OutboxRepository at PollInterval and fans rows out
// through Bus. It is the only component that ever marks a row published.
type Worker struct {
	outbox       repository.OutboxRepository
	bus          *Bus
	log          zerolog.Logger
	pollInterval time.Duration
	batchSize    int
	deadLetters  DeadLetterObserver
}

// DeadLetterObserver is notified whenever a row is moved to the
// dead-letter state, so metrics (spec §4.3 "surfaced by metrics") can be
// incremented without this package depending on Prometheus directly.
type DeadLetterObserver interface {
	ObserveDeadLetter(eventType string)
}

// NewWorker constructs a worker. pollInterval and batchSize are
// configuration values (see pkg/config).
func NewWorker(outbox repository.OutboxRepository, bus *Bus, log zerolog.Logger, pollInterval time.Duration, batchSize int, deadLetters DeadLetterObserver) *Worker {
	return &Worker{
		outbox:       outbox,
		bus:          bus,
		log:          log,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		deadLetters:  deadLetters,
	}
}

// Run polls until ctx is cancelled, then returns. A batch already in
// flight keeps running under the cancelled ctx, so its remaining
// repository calls fail and those rows stay unpublished for a later
// poll. cmd/api/main.go cancels ctx right after the HTTP server shuts
// down and does not wait for Run to return.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("outbox worker shutting down")
			return
		case <-ticker.C:
			w.drainOnce(ctx)
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) {
	rows, err := w.outbox.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("outbox: fetch unpublished failed")
		return
	}
	for _, row := range rows {
		w.deliver(ctx, row)
	}
}

func (w *Worker) deliver(ctx context.Context, row *entity.OutboxRow) {
	var payload map[string]any
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		w.log.Error().Err(err).Str("outbox_id", row.ID).Msg("outbox: corrupt payload, dead-lettering")
		w.deadLetter(ctx, row)
		return
	}

	event := Event{
		ID:          row.ID,
		Type:        Type(row.EventType),
		AggregateID: row.AggregateID,
		TenantID:    row.TenantID,
		Payload:     payload,
		Version:     row.Version,
		OccurredAt:  row.OccurredAt,
	}

	if err := w.bus.Dispatch(ctx, event); err != nil {
		w.retryOrDeadLetter(ctx, row, err)
		return
	}

	if err := w.outbox.MarkPublished(ctx, row.ID); err != nil {
		w.log.Error().Err(err).Str("outbox_id", row.ID).Msg("outbox: mark published failed")
	}
}

func (w *Worker) retryOrDeadLetter(ctx context.Context, row *entity.OutboxRow, cause error) {
	attempts := row.Attempts + 1
	if attempts >= maxAttempts {
		w.log.Error().Err(cause).Str("outbox_id", row.ID).Int("attempts", attempts).
			Msg("outbox: exhausted retries, dead-lettering")
		w.deadLetter(ctx, row)
		return
	}

	delay := backoffBase << uint(attempts-1)
	if delay > backoffCap || delay <= 0 {
		delay = backoffCap
	}
	w.log.Warn().Err(cause).Str("outbox_id", row.ID).Int("attempts", attempts).
		Dur("retry_in", delay).Msg("outbox: subscriber failed, rescheduling")

	if err := w.outbox.ScheduleRetry(ctx, row.ID, time.Now().Add(delay), attempts); err != nil {
		w.log.Error().Err(err).Str("outbox_id", row.ID).Msg("outbox: schedule retry failed")
	}
}

func (w *Worker) deadLetter(ctx context.Context, row *entity.OutboxRow) {
	if err := w.outbox.MarkDeadLettered(ctx, row.ID); err != nil {
		w.log.Error().Err(err).Str("outbox_id", row.ID).Msg("outbox: mark dead-lettered failed")
	}
	if w.deadLetters != nil {
		w.deadLetters.ObserveDeadLetter(row.EventType)
	}
}
