package tenantresolver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
)

type fakeTenantRepo struct {
	byID        map[string]*entity.Tenant
	bySubdomain map[string]*entity.Tenant
}

func (f *fakeTenantRepo) Create(ctx context.Context, t *entity.Tenant) error { return nil }
func (f *fakeTenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}
func (f *fakeTenantRepo) GetBySubdomain(ctx context.Context, sub string) (*entity.Tenant, error) {
	t, ok := f.bySubdomain[sub]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}
func (f *fakeTenantRepo) Update(ctx context.Context, t *entity.Tenant) error { return nil }
func (f *fakeTenantRepo) List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error) {
	return nil, nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}
func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}
func (c *fakeCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}
func (c *fakeCache) DeleteByPattern(ctx context.Context, prefix string) {}
func (c *fakeCache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return 0, nil
}

func repoWithTenant(t *entity.Tenant) *fakeTenantRepo {
	return &fakeTenantRepo{
		byID:        map[string]*entity.Tenant{t.ID: t},
		bySubdomain: map[string]*entity.Tenant{t.Subdomain: t},
	}
}

func TestResolve_HeaderSignalAlone(t *testing.T) {
	tenant := &entity.Tenant{ID: "11111111-1111-1111-1111-111111111111", Subdomain: "acme", IsActive: true}
	r := NewResolver(repoWithTenant(tenant), newFakeCache(), "taskforge.io")

	got, err := r.Resolve(context.Background(), Signals{HeaderTenantID: tenant.ID})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
}

func TestResolve_SubdomainSignalAlone(t *testing.T) {
	tenant := &entity.Tenant{ID: "11111111-1111-1111-1111-111111111111", Subdomain: "acme", IsActive: true}
	r := NewResolver(repoWithTenant(tenant), newFakeCache(), "taskforge.io")

	got, err := r.Resolve(context.Background(), Signals{Host: "acme.taskforge.io"})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
}

func TestResolve_ReservedSubdomainIsNeverResolved(t *testing.T) {
	tenant := &entity.Tenant{ID: "11111111-1111-1111-1111-111111111111", Subdomain: "www", IsActive: true}
	r := NewResolver(repoWithTenant(tenant), newFakeCache(), "taskforge.io")

	_, err := r.Resolve(context.Background(), Signals{Host: "www.taskforge.io"})
	assert.ErrorIs(t, err, domain.ErrMissingTenant)
}

func TestResolve_AgreeingSignalsSucceed(t *testing.T) {
	tenant := &entity.Tenant{ID: "11111111-1111-1111-1111-111111111111", Subdomain: "acme", IsActive: true}
	r := NewResolver(repoWithTenant(tenant), newFakeCache(), "taskforge.io")

	got, err := r.Resolve(context.Background(), Signals{
		HeaderTenantID: tenant.ID,
		Host:           "acme.taskforge.io",
		ClaimTenantID:  tenant.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
}

func TestResolve_DisagreeingSignalsAreRejected(t *testing.T) {
	tenantA := &entity.Tenant{ID: "11111111-1111-1111-1111-111111111111", Subdomain: "acme", IsActive: true}
	tenantB := &entity.Tenant{ID: "22222222-2222-2222-2222-222222222222", Subdomain: "other", IsActive: true}
	repo := &fakeTenantRepo{
		byID: map[string]*entity.Tenant{tenantA.ID: tenantA, tenantB.ID: tenantB},
	}
	r := NewResolver(repo, newFakeCache(), "taskforge.io")

	_, err := r.Resolve(context.Background(), Signals{
		HeaderTenantID: tenantA.ID,
		ClaimTenantID:  tenantB.ID,
	})
	assert.ErrorIs(t, err, domain.ErrTenantMismatch)
}

func TestResolve_InactiveTenantRejected(t *testing.T) {
	tenant := &entity.Tenant{ID: "11111111-1111-1111-1111-111111111111", Subdomain: "acme", IsActive: false}
	r := NewResolver(repoWithTenant(tenant), newFakeCache(), "taskforge.io")

	_, err := r.Resolve(context.Background(), Signals{HeaderTenantID: tenant.ID})
	assert.ErrorIs(t, err, domain.ErrTenantInactive)
}

func TestResolve_NoSignalsIsMissingTenant(t *testing.T) {
	r := NewResolver(&fakeTenantRepo{byID: map[string]*entity.Tenant{}}, newFakeCache(), "taskforge.io")
	_, err := r.Resolve(context.Background(), Signals{})
	assert.ErrorIs(t, err, domain.ErrMissingTenant)
}

func TestResolve_SubdomainIsCachedAfterFirstLookup(t *testing.T) {
	tenant := &entity.Tenant{ID: "11111111-1111-1111-1111-111111111111", Subdomain: "acme", IsActive: true}
	repo := repoWithTenant(tenant)
	c := newFakeCache()
	r := NewResolver(repo, c, "taskforge.io")

	_, err := r.Resolve(context.Background(), Signals{Host: "acme.taskforge.io"})
	require.NoError(t, err)

	_, ok := c.Get(context.Background(), "tenant:subdomain:acme")
	assert.True(t, ok, "subdomain resolution should populate the cache")
}

func TestResolve_SubdomainMatchIsCaseInsensitive(t *testing.T) {
	tenant := &entity.Tenant{ID: "11111111-1111-1111-1111-111111111111", Subdomain: "acme", IsActive: true}
	r := NewResolver(repoWithTenant(tenant), newFakeCache(), "TaskForge.IO")

	got, err := r.Resolve(context.Background(), Signals{Host: "ACME.TaskForge.io"})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.ID)
}
