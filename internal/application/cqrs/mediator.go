// Package cqrs implements the Command/Query Dispatch of spec §4.9: a
// mediator that serializes every state change through validate ->
// authorize -> begin tx -> handle -> flush outbox -> commit. Grounded on
// original_source/app/shared/cqrs/mediator.py's type-routed dispatch,
// translated from a runtime dict keyed by Python type to a Go registry
// keyed by reflect.Type, with the transactional/outbox stages folded in
// around the teacher's TxRunner pattern
// (internal/infrastructure/postgres/tx_runner.go).
package cqrs

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskforge/core-api/internal/platform/authz"
	"github.com/taskforge/core-api/internal/platform/events"
	"github.com/taskforge/core-api/internal/platform/reqcontext"
)

// Validator is implemented by commands/queries that carry field-level
// validation beyond what their types already express.
type Validator interface {
	Validate() error
}

// CommandHandler executes one command inside tx and returns its result.
// Handlers are responsible for the resource gate (the role/permission
// gates already passed by the time this is called) and for calling
// recorder.Emit for every domain event the command produces.
type CommandHandler func(ctx context.Context, tx Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmd any) (any, error)

// QueryHandler executes one read-only query. Queries never open a
// transaction or touch the outbox.
type QueryHandler func(ctx context.Context, tx ReadTx, rc *reqcontext.RequestContext, query any) (any, error)

type commandRegistration struct {
	requirement authz.Requirement
	handle      CommandHandler
}

// Mediator is the single entry point every HTTP handler calls through.
type Mediator struct {
	uow             UnitOfWork
	bus             *events.Bus
	log             zerolog.Logger
	commandHandlers map[reflect.Type]commandRegistration
	queryHandlers   map[reflect.Type]QueryHandler
}

// NewMediator builds an empty Mediator. It takes no event bus: the
// outbox Worker is the sole path from committed event to subscriber
// (see internal/platform/events.Worker) — the mediator never dispatches
// events itself, it only persists them to the outbox, and its bus field
// is left nil.
func NewMediator(uow UnitOfWork, log zerolog.Logger) *Mediator {
	return &Mediator{
		uow:             uow,
		log:             log,
		commandHandlers: make(map[reflect.Type]commandRegistration),
		queryHandlers:   make(map[reflect.Type]QueryHandler),
	}
}

// RegisterCommand associates one command type with its authorization
// requirement and handler. cmdSample is a zero value of the command
// type, used only to capture its reflect.Type.
func (m *Mediator) RegisterCommand(cmdSample any, requirement authz.Requirement, handle CommandHandler) {
	t := reflect.TypeOf(cmdSample)
	m.commandHandlers[t] = commandRegistration{requirement: requirement, handle: handle}
	m.log.Debug().Str("command", t.String()).Msg("registered command handler")
}

// RegisterQuery associates one query type with its handler.
func (m *Mediator) RegisterQuery(querySample any, handle QueryHandler) {
	t := reflect.TypeOf(querySample)
	m.queryHandlers[t] = handle
	m.log.Debug().Str("query", t.String()).Msg("registered query handler")
}

// Send dispatches cmd through the full pipeline: validate, authorize
// (role + permission gates only — the resource gate runs inside handle,
// once the concrete resource has been loaded), begin a transaction
// scoped to rc.TenantID, run the handler, flush any recorded events into
// the outbox, and commit. A failure at any stage rolls the transaction
// back; nothing it did is observable.
func (m *Mediator) Send(ctx context.Context, rc *reqcontext.RequestContext, cmd any) (any, error) {
	t := reflect.TypeOf(cmd)
	reg, ok := m.commandHandlers[t]
	if !ok {
		return nil, fmt.Errorf("no handler registered for command %s", t)
	}

	if v, ok := cmd.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	if err := rc.RequireTenant(); err != nil {
		return nil, err
	}
	if err := authz.Authorize(rc, reg.requirement); err != nil {
		return nil, err
	}

	tx, err := m.uow.Begin(ctx, rc.TenantID)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	recorder := events.NewRecorder(rc.TenantID)
	result, err := reg.handle(ctx, tx, rc, recorder, cmd)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}

	if err := flushOutbox(ctx, tx, recorder); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("flush outbox: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	m.log.Info().Str("command", t.String()).Str("tenant_id", rc.TenantID).Msg("command completed")
	return result, nil
}

// Query dispatches query to its registered handler over a read-only
// transaction snapshot. No outbox flush, no write lock contention.
func (m *Mediator) Query(ctx context.Context, rc *reqcontext.RequestContext, query any) (any, error) {
	t := reflect.TypeOf(query)
	handle, ok := m.queryHandlers[t]
	if !ok {
		return nil, fmt.Errorf("no handler registered for query %s", t)
	}

	if v, ok := query.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	if err := rc.RequireTenant(); err != nil {
		return nil, err
	}

	tx, err := m.uow.BeginRead(ctx, rc.TenantID)
	if err != nil {
		return nil, fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Close(ctx)

	return handle(ctx, tx, rc, query)
}

// flushOutbox writes every recorded event as an OutboxRow inside tx.
// Events within one commit get strictly increasing OccurredAt values so
// the worker's (aggregate_id, occurred_at) ordering matches emission
// order even when the underlying clock resolution is coarser than the
// number of events in one command.
func flushOutbox(ctx context.Context, tx Tx, recorder *events.Recorder) error {
	base := time.Now().UTC()
	for i, e := range recorder.Recorded() {
		row, err := e.ToOutboxRow(base.Add(time.Duration(i) * time.Microsecond))
		if err != nil {
			return err
		}
		if err := tx.Outbox().Insert(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
