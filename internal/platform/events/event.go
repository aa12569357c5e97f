// Package events implements the in-process Event Bus and the
// transactional Outbox pattern of spec §4.3.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskforge/core-api/internal/domain/entity"
)

// Type is one of the canonical event types from spec §4.3.
type Type string

const (
	TypeUserRegistered        Type = "UserRegistered"
	TypeUserLoggedIn          Type = "UserLoggedIn"
	TypePasswordChanged       Type = "PasswordChanged"
	TypeMFAEnabled            Type = "MFAEnabled"
	TypeSecurityAlert         Type = "SecurityAlert"
	TypeTenantCreated         Type = "TenantCreated"
	TypeTenantSettingsUpdated Type = "TenantSettingsUpdated"
	TypeTenantDeactivated     Type = "TenantDeactivated"
	TypeTenantReactivated     Type = "TenantReactivated"
	TypeTaskCreated           Type = "TaskCreated"
	TypeTaskUpdated           Type = "TaskUpdated"
	TypeTaskAssigned          Type = "TaskAssigned"
	TypeTaskStatusChanged     Type = "TaskStatusChanged"
	TypeTaskDeleted           Type = "TaskDeleted"
	TypeTaskCommentAdded      Type = "TaskCommentAdded"
)

// Event is the wire shape from spec §4.3: "{id, type, aggregate_id,
// tenant_id, payload, version, occurred_at}". Versioning is per event
// type; subscribers may accept versions >= VMin they were written for.
type Event struct {
	ID          string
	Type        Type
	AggregateID string
	TenantID    string
	Payload     map[string]any
	Version     int
	OccurredAt  time.Time
}

// ToOutboxRow serializes e into the row shape persisted inside the same
// transaction as the aggregate mutation that produced it, stamping
// occurredAt so the caller controls commit-time ordering across a batch
// of events from one command.
func (e Event) ToOutboxRow(occurredAt time.Time) (*entity.OutboxRow, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return &entity.OutboxRow{
		ID:          e.ID,
		TenantID:    e.TenantID,
		EventType:   string(e.Type),
		AggregateID: e.AggregateID,
		Payload:     payload,
		Version:     e.Version,
		OccurredAt:  occurredAt,
	}, nil
}
