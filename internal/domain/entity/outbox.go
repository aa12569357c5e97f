package entity

import "time"

// OutboxRow is inserted in the same transaction as the aggregate mutation
// it records. The outbox worker polls for rows with PublishedAt == nil,
// ordered by OccurredAt within an AggregateID, and marks them published
// only after every subscriber has succeeded.
type OutboxRow struct {
	ID            string
	TenantID      string
	EventType     string
	AggregateID   string
	Payload       []byte // JSON-encoded event payload
	Version       int
	OccurredAt    time.Time
	PublishedAt   *time.Time
	Attempts      int
	NextAttemptAt time.Time
	DeadLettered  bool
}
