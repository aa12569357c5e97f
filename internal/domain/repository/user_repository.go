package repository

import (
	"context"

	"github.com/taskforge/core-api/internal/domain/entity"
)

// UserRepository is the persistence port for User. Every method takes
// tenantID explicitly and filters by it; this is the isolation guarantee
// of spec §4.6 expressed at the type level — a repository helper refuses
// to execute a query without a tenant id (see
// internal/infrastructure/postgres.requireTenant).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.User, error)
}
