package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/core-api/internal/application/dto"
	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
	"github.com/taskforge/core-api/internal/platform/events"
	"github.com/taskforge/core-api/internal/platform/reqcontext"
)

type fakeTenantRepo struct {
	byID        map[string]*entity.Tenant
	bySubdomain map[string]*entity.Tenant
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{byID: map[string]*entity.Tenant{}, bySubdomain: map[string]*entity.Tenant{}}
}

func (f *fakeTenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	f.byID[t.ID] = t
	f.bySubdomain[t.Subdomain] = t
	return nil
}
func (f *fakeTenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}
func (f *fakeTenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*entity.Tenant, error) {
	t, ok := f.bySubdomain[subdomain]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}
func (f *fakeTenantRepo) Update(ctx context.Context, t *entity.Tenant) error {
	f.byID[t.ID] = t
	return nil
}
func (f *fakeTenantRepo) List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error) {
	var out []*entity.Tenant
	for _, t := range f.byID {
		out = append(out, t)
	}
	return out, nil
}

// fakeTx implements cqrs.Tx, exposing only Tenants(); every other
// accessor returns nil, which is fine since these handlers never touch
// them.
type fakeTx struct{ tenants repository.TenantRepository }

func (f fakeTx) Users() repository.UserRepository                 { return nil }
func (f fakeTx) Tenants() repository.TenantRepository             { return f.tenants }
func (f fakeTx) RefreshTokens() repository.RefreshTokenRepository { return nil }
func (f fakeTx) Tasks() repository.TaskRepository                 { return nil }
func (f fakeTx) Comments() repository.CommentRepository           { return nil }
func (f fakeTx) AuditLogs() repository.AuditLogRepository         { return nil }
func (f fakeTx) Outbox() repository.OutboxRepository              { return nil }
func (f fakeTx) Commit(ctx context.Context) error                 { return nil }
func (f fakeTx) Rollback(ctx context.Context) error                { return nil }

// fakeReadTx implements cqrs.ReadTx likewise.
type fakeReadTx struct{ tenants repository.TenantRepository }

func (f fakeReadTx) Users() repository.UserRepository         { return nil }
func (f fakeReadTx) Tenants() repository.TenantRepository     { return f.tenants }
func (f fakeReadTx) Tasks() repository.TaskRepository         { return nil }
func (f fakeReadTx) Comments() repository.CommentRepository   { return nil }
func (f fakeReadTx) AuditLogs() repository.AuditLogRepository { return nil }
func (f fakeReadTx) Close(ctx context.Context)                {}

func systemAdminContext() *reqcontext.RequestContext {
	return &reqcontext.RequestContext{
		TenantID:    "platform-tenant",
		UserID:      "root-1",
		Roles:       []string{entity.RoleSystemAdmin},
		Permissions: []string{entity.PermissionAll},
	}
}

func memberContext() *reqcontext.RequestContext {
	return &reqcontext.RequestContext{
		TenantID:    "tenant-1",
		UserID:      "user-1",
		Roles:       []string{entity.RoleMember},
		Permissions: entity.DefaultPermissionsForRole(entity.RoleMember),
	}
}

func TestHandleCreate_DefaultsPlanAndSeatLimit(t *testing.T) {
	svc := NewService()
	repo := newFakeTenantRepo()
	rc := systemAdminContext()

	result, err := svc.handleCreate(context.Background(), fakeTx{repo}, rc, events.NewRecorder(rc.TenantID), CreateTenantCommand{
		Name: "Acme Corp", Subdomain: "acme",
	})
	require.NoError(t, err)
	resp := result.(dto.TenantResponse)
	assert.Equal(t, entity.PlanBasic, resp.SubscriptionPlan)
	assert.Equal(t, 10, resp.MaxUsers)
	assert.True(t, resp.IsActive)
}

func TestHandleCreate_RejectsDuplicateSubdomain(t *testing.T) {
	svc := NewService()
	repo := newFakeTenantRepo()
	repo.bySubdomain["acme"] = &entity.Tenant{ID: "t1", Subdomain: "acme"}
	rc := systemAdminContext()

	_, err := svc.handleCreate(context.Background(), fakeTx{repo}, rc, events.NewRecorder(rc.TenantID), CreateTenantCommand{
		Name: "Acme Corp", Subdomain: "acme",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestDeactivateThenReactivate_RoundTrips(t *testing.T) {
	svc := NewService()
	repo := newFakeTenantRepo()
	repo.byID["t1"] = &entity.Tenant{ID: "t1", Subdomain: "acme", IsActive: true}
	rc := systemAdminContext()

	_, err := svc.handleDeactivate(context.Background(), fakeTx{repo}, rc, events.NewRecorder(rc.TenantID), DeactivateTenantCommand{TenantID: "t1"})
	require.NoError(t, err)
	assert.False(t, repo.byID["t1"].IsActive)

	_, err = svc.handleReactivate(context.Background(), fakeTx{repo}, rc, events.NewRecorder(rc.TenantID), ReactivateTenantCommand{TenantID: "t1"})
	require.NoError(t, err)
	assert.True(t, repo.byID["t1"].IsActive)
}

func TestHandleList_DeniesNonSystemAdmin(t *testing.T) {
	svc := NewService()
	repo := newFakeTenantRepo()
	rc := memberContext()

	_, err := svc.handleList(context.Background(), fakeReadTx{repo}, rc, ListTenantsQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
