package repository

import (
	"context"

	"github.com/taskforge/core-api/internal/domain/entity"
)

// TenantRepository is the persistence port for Tenant. Unlike every other
// repository in this package, lookups here are not themselves
// tenant-scoped — this is the one place in the system allowed to query
// by subdomain or list across tenants, because resolving *which* tenant
// a request belongs to is this repository's entire job (spec §4.6).
type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*entity.Tenant, error)
	Update(ctx context.Context, tenant *entity.Tenant) error
	List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error)
}
