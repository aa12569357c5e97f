package events

import (
	"github.com/google/uuid"
)

// Recorder is the "Emit" phase of spec §4.3: a command handler appends
// events to it in memory during execution. The mediator's transactional
// stage flushes Recorded() into OutboxRow rows inside the same database
// transaction as the aggregate mutation; on rollback, Recorded() is
// simply discarded and nothing was ever observable to a subscriber.
type Recorder struct {
	tenantID string
	events   []Event
}

// NewRecorder starts a fresh recorder scoped to one tenant (every event a
// single request can emit belongs to that request's tenant).
func NewRecorder(tenantID string) *Recorder {
	return &Recorder{tenantID: tenantID}
}

// Emit appends an event with a freshly minted id and the recorder's
// tenant id. occurredAt is left to the flush stage so that every event in
// one transaction shares a consistent commit-time ordering key.
func (r *Recorder) Emit(eventType Type, aggregateID string, version int, payload map[string]any) {
	r.events = append(r.events, Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateID: aggregateID,
		TenantID:    r.tenantID,
		Payload:     payload,
		Version:     version,
	})
}

// Recorded returns the events emitted so far, in emission order.
func (r *Recorder) Recorded() []Event {
	return r.events
}
