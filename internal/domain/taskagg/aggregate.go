// Package taskagg implements the Task aggregate's state-transition rules.
// It follows spec §4.10 and §9 "Aggregate roots": an aggregate is an
// opaque value with a narrow set of state-transition operations that
// return (new_state, events[]); persistence is a separate concern owned
// by the repository/mediator layers.
package taskagg

import (
	"fmt"
	"time"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
)

// validTransitions encodes the table in spec §4.10. Admin-only edges to
// CANCELLED are expressed separately because they carry an extra
// authorization requirement the plain table doesn't.
var validTransitions = map[string][]string{
	entity.StatusTodo:       {entity.StatusInProgress, entity.StatusBlocked},
	entity.StatusInProgress: {entity.StatusInReview, entity.StatusBlocked},
	entity.StatusInReview:   {entity.StatusInProgress, entity.StatusDone},
	entity.StatusBlocked:    {entity.StatusTodo, entity.StatusInProgress},
	entity.StatusDone:       {},
	entity.StatusCancelled:  {},
}

// adminOnlyTargets lists destinations reachable only when the actor is a
// tenant or system administrator, regardless of the current status.
var adminOnlyTargets = map[string]bool{
	entity.StatusCancelled: true,
}

// Aggregate wraps a Task with its transition rules. Build one with
// New, call a mutator, and persist Task() plus Events() atomically.
type Aggregate struct {
	task   *entity.Task
	events []StatusChangedEvent
}

// StatusChangedEvent is the in-memory event recorded by ChangeStatus; the
// mediator's outbox-flush stage serializes it into an OutboxRow.
type StatusChangedEvent struct {
	TaskID string
	From   string
	To     string
	Reason string
}

// New wraps an existing Task for mutation.
func New(task *entity.Task) *Aggregate {
	return &Aggregate{task: task}
}

// Task returns the (possibly mutated) underlying entity.
func (a *Aggregate) Task() *entity.Task { return a.task }

// Events returns the events recorded by mutator calls so far; it does
// not clear them.
func (a *Aggregate) Events() []StatusChangedEvent { return a.events }

// CanTransitionTo reports whether the given transition is structurally
// valid for an actor with isAdmin privileges, without mutating anything.
func (a *Aggregate) CanTransitionTo(newStatus string, isAdmin bool) error {
	current := a.task.Status

	if current == newStatus {
		return domain.ErrInvalidTransition
	}

	if adminOnlyTargets[newStatus] {
		if !isAdmin {
			return domain.ErrForbidden
		}
	} else {
		allowed := validTransitions[current]
		found := false
		for _, s := range allowed {
			if s == newStatus {
				found = true
				break
			}
		}
		if !found {
			return domain.ErrInvalidTransition
		}
	}

	if newStatus == entity.StatusInReview && a.task.AssignedToUserID == nil {
		return domain.NewError(domain.CodeValidationError, "task must be assigned before moving to IN_REVIEW")
	}

	return nil
}

// ChangeStatus validates and applies a transition, recording a
// StatusChangedEvent. blockedReason is required (and stored) when moving
// to BLOCKED; it is optional context for any other transition.
func (a *Aggregate) ChangeStatus(newStatus string, blockedReason string, isAdmin bool) error {
	if newStatus == entity.StatusBlocked && blockedReason == "" {
		return domain.NewError(domain.CodeValidationError, "blocked_reason is required when status is BLOCKED")
	}

	if err := a.CanTransitionTo(newStatus, isAdmin); err != nil {
		return err
	}

	from := a.task.Status
	a.task.Status = newStatus
	if newStatus == entity.StatusBlocked {
		a.task.BlockedReason = blockedReason
	} else {
		a.task.BlockedReason = ""
	}
	a.task.UpdatedAt = time.Now().UTC()
	a.task.Version++

	a.events = append(a.events, StatusChangedEvent{
		TaskID: a.task.ID,
		From:   from,
		To:     newStatus,
		Reason: blockedReason,
	})
	return nil
}

// AssignTo assigns the task to a user, bumping Version.
func (a *Aggregate) AssignTo(userID string) {
	a.task.AssignedToUserID = &userID
	a.task.UpdatedAt = time.Now().UTC()
	a.task.Version++
}

// DetailsUpdate is the partial update UpdateDetails applies to mutable
// task fields. Nil fields leave the corresponding field untouched; a
// non-nil pointer to an empty string is applied as-is.
type DetailsUpdate struct {
	Title          *string
	Description    *string
	Priority       *string
	DueDate        *time.Time
	EstimatedHours *float64
	Tags           []string
	Watchers       []string
}

func (a *Aggregate) UpdateDetails(u DetailsUpdate) {
	t := a.task
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDate != nil {
		t.DueDate = u.DueDate
	}
	if u.EstimatedHours != nil {
		t.EstimatedHours = u.EstimatedHours
	}
	if u.Tags != nil {
		t.Tags = u.Tags
	}
	if u.Watchers != nil {
		t.Watchers = u.Watchers
	}
	t.UpdatedAt = time.Now().UTC()
	t.Version++
}

// Delete performs the soft delete described in spec §4.10.
func (a *Aggregate) Delete() {
	a.task.IsDeleted = true
	a.task.UpdatedAt = time.Now().UTC()
	a.task.Version++
}

// CheckVersion implements the optimistic-concurrency guard: a write
// carrying a stale expectedVersion fails with domain.ErrConflict.
func (a *Aggregate) CheckVersion(expectedVersion int64) error {
	if a.task.Version != expectedVersion {
		return fmt.Errorf("%w: task %s is at version %d, expected %d", domain.ErrConflict, a.task.ID, a.task.Version, expectedVersion)
	}
	return nil
}
