package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo implements repository.TenantRepository. Unlike every other
// repository in this package it never filters by tenant id — resolving
// which tenant a request belongs to is its job, not something it can
// presuppose.
type TenantRepo struct {
	q Querier
}

// NewTenantRepository builds the adapter. Pass pool or tx (Querier).
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

func (r *TenantRepo) Create(ctx context.Context, tenant *entity.Tenant) error {
	settings, err := json.Marshal(tenant.Settings)
	if err != nil {
		return fmt.Errorf("marshal tenant settings: %w", err)
	}
	const query = `
		INSERT INTO tenants (id, name, subdomain, subscription_plan, max_users, is_active, settings, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err = r.q.Exec(ctx, query,
		tenant.ID, tenant.Name, tenant.Subdomain, tenant.SubscriptionPlan, tenant.MaxUsers,
		tenant.IsActive, settings, tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	const query = `
		SELECT id, name, subdomain, subscription_plan, max_users, is_active, settings, created_at, updated_at
		FROM tenants WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *TenantRepo) GetBySubdomain(ctx context.Context, subdomain string) (*entity.Tenant, error) {
	const query = `
		SELECT id, name, subdomain, subscription_plan, max_users, is_active, settings, created_at, updated_at
		FROM tenants WHERE subdomain = $1`
	return r.scanOne(ctx, query, subdomain)
}

func (r *TenantRepo) scanOne(ctx context.Context, query string, arg string) (*entity.Tenant, error) {
	var t entity.Tenant
	var settings []byte
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&t.ID, &t.Name, &t.Subdomain, &t.SubscriptionPlan, &t.MaxUsers, &t.IsActive,
		&settings, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if err := json.Unmarshal(settings, &t.Settings); err != nil {
		return nil, fmt.Errorf("unmarshal tenant settings: %w", err)
	}
	return &t, nil
}

func (r *TenantRepo) Update(ctx context.Context, tenant *entity.Tenant) error {
	settings, err := json.Marshal(tenant.Settings)
	if err != nil {
		return fmt.Errorf("marshal tenant settings: %w", err)
	}
	const query = `
		UPDATE tenants SET name = $2, subscription_plan = $3, max_users = $4,
			is_active = $5, settings = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		tenant.ID, tenant.Name, tenant.SubscriptionPlan, tenant.MaxUsers,
		tenant.IsActive, settings, tenant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TenantRepo) List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error) {
	const query = `
		SELECT id, name, subdomain, subscription_plan, max_users, is_active, settings, created_at, updated_at
		FROM tenants ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var list []*entity.Tenant
	for rows.Next() {
		var t entity.Tenant
		var settings []byte
		if err := rows.Scan(&t.ID, &t.Name, &t.Subdomain, &t.SubscriptionPlan, &t.MaxUsers,
			&t.IsActive, &settings, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		if err := json.Unmarshal(settings, &t.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal tenant settings: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
