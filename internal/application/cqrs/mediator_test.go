package cqrs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
	"github.com/taskforge/core-api/internal/platform/authz"
	"github.com/taskforge/core-api/internal/platform/events"
	"github.com/taskforge/core-api/internal/platform/reqcontext"
)

type fakeOutbox struct {
	inserted []*entity.OutboxRow
}

func (f *fakeOutbox) Insert(ctx context.Context, row *entity.OutboxRow) error {
	f.inserted = append(f.inserted, row)
	return nil
}
func (f *fakeOutbox) FetchUnpublished(ctx context.Context, limit int) ([]*entity.OutboxRow, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkPublished(ctx context.Context, id string) error { return nil }
func (f *fakeOutbox) ScheduleRetry(ctx context.Context, id string, nextAttemptAt time.Time, attempts int) error {
	return nil
}
func (f *fakeOutbox) MarkDeadLettered(ctx context.Context, id string) error { return nil }

type fakeTx struct {
	outbox     *fakeOutbox
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Users() repository.UserRepository                 { return nil }
func (f *fakeTx) Tenants() repository.TenantRepository             { return nil }
func (f *fakeTx) RefreshTokens() repository.RefreshTokenRepository { return nil }
func (f *fakeTx) Tasks() repository.TaskRepository                 { return nil }
func (f *fakeTx) Comments() repository.CommentRepository           { return nil }
func (f *fakeTx) AuditLogs() repository.AuditLogRepository         { return nil }
func (f *fakeTx) Outbox() repository.OutboxRepository              { return f.outbox }
func (f *fakeTx) Commit(ctx context.Context) error                 { f.committed = true; return nil }
func (f *fakeTx) Rollback(ctx context.Context) error                { f.rolledBack = true; return nil }

type fakeUoW struct {
	tx *fakeTx
}

func (f *fakeUoW) Begin(ctx context.Context, tenantID string) (Tx, error) { return f.tx, nil }
func (f *fakeUoW) BeginRead(ctx context.Context, tenantID string) (ReadTx, error) {
	return nil, nil
}

type createWidget struct{ Name string }

func (c createWidget) Validate() error {
	if c.Name == "" {
		return domain.NewError(domain.CodeValidationError, "name required")
	}
	return nil
}

func adminContext() *reqcontext.RequestContext {
	return &reqcontext.RequestContext{
		TenantID: "tenant-1",
		UserID:   "user-1",
		Roles:    []string{entity.RoleTenantAdmin},
	}
}

func TestSend_HappyPathCommitsAndFlushesOutbox(t *testing.T) {
	tx := &fakeTx{outbox: &fakeOutbox{}}
	m := NewMediator(&fakeUoW{tx: tx}, zerolog.Nop())
	m.RegisterCommand(createWidget{}, authz.Requirement{Roles: []string{entity.RoleTenantAdmin}},
		func(ctx context.Context, tx Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmd any) (any, error) {
			recorder.Emit(events.TypeTaskCreated, "widget-1", 1, map[string]any{"name": cmd.(createWidget).Name})
			return "widget-1", nil
		})

	result, err := m.Send(context.Background(), adminContext(), createWidget{Name: "gizmo"})
	require.NoError(t, err)
	assert.Equal(t, "widget-1", result)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
	require.Len(t, tx.outbox.inserted, 1)
	assert.Equal(t, "widget-1", tx.outbox.inserted[0].AggregateID)
}

func TestSend_ValidationFailureNeverOpensTransaction(t *testing.T) {
	tx := &fakeTx{outbox: &fakeOutbox{}}
	uow := &fakeUoW{tx: tx}
	m := NewMediator(uow, zerolog.Nop())
	m.RegisterCommand(createWidget{}, authz.Requirement{},
		func(ctx context.Context, tx Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmd any) (any, error) {
			return nil, nil
		})

	_, err := m.Send(context.Background(), adminContext(), createWidget{Name: ""})
	assert.Error(t, err)
	assert.False(t, tx.committed)
}

func TestSend_RoleGateDeniesBeforeHandlerRuns(t *testing.T) {
	tx := &fakeTx{outbox: &fakeOutbox{}}
	m := NewMediator(&fakeUoW{tx: tx}, zerolog.Nop())
	handlerRan := false
	m.RegisterCommand(createWidget{}, authz.Requirement{Roles: []string{entity.RoleSystemAdmin}},
		func(ctx context.Context, tx Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmd any) (any, error) {
			handlerRan = true
			return nil, nil
		})

	_, err := m.Send(context.Background(), adminContext(), createWidget{Name: "gizmo"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.False(t, handlerRan)
}

func TestSend_HandlerErrorRollsBack(t *testing.T) {
	tx := &fakeTx{outbox: &fakeOutbox{}}
	m := NewMediator(&fakeUoW{tx: tx}, zerolog.Nop())
	m.RegisterCommand(createWidget{}, authz.Requirement{},
		func(ctx context.Context, tx Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmd any) (any, error) {
			recorder.Emit(events.TypeTaskCreated, "widget-2", 1, nil)
			return nil, domain.ErrConflict
		})

	_, err := m.Send(context.Background(), adminContext(), createWidget{Name: "gizmo"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, tx.rolledBack)
	assert.Empty(t, tx.outbox.inserted, "events from a rolled-back handler must never reach the outbox")
}

func TestSend_MissingTenantRejected(t *testing.T) {
	tx := &fakeTx{outbox: &fakeOutbox{}}
	m := NewMediator(&fakeUoW{tx: tx}, zerolog.Nop())
	m.RegisterCommand(createWidget{}, authz.Requirement{},
		func(ctx context.Context, tx Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmd any) (any, error) {
			return nil, nil
		})

	rc := &reqcontext.RequestContext{UserID: "user-1"}
	_, err := m.Send(context.Background(), rc, createWidget{Name: "gizmo"})
	assert.ErrorIs(t, err, domain.ErrMissingTenant)
}

func TestSend_UnregisteredCommandErrors(t *testing.T) {
	tx := &fakeTx{outbox: &fakeOutbox{}}
	m := NewMediator(&fakeUoW{tx: tx}, zerolog.Nop())
	_, err := m.Send(context.Background(), adminContext(), struct{ X int }{})
	assert.Error(t, err)
}
