package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/core-api/internal/application/cqrs"
	"github.com/taskforge/core-api/internal/application/dto"
	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
	"github.com/taskforge/core-api/internal/platform/authz"
	"github.com/taskforge/core-api/internal/platform/events"
	"github.com/taskforge/core-api/internal/platform/reqcontext"
)

// platformAdmin is the authorization requirement shared by every
// command/query in this package: tenant rows are platform-level, not
// scoped to the caller's own tenant, so only SYSTEM_ADMIN may touch them.
var platformAdmin = authz.Requirement{Roles: []string{entity.RoleSystemAdmin}}

// Service bundles the tenant-directory command/query handlers.
type Service struct{}

// NewService constructs the tenant Service.
func NewService() *Service { return &Service{} }

// Register wires every tenant command and query into m.
func (s *Service) Register(m *cqrs.Mediator) {
	m.RegisterCommand(CreateTenantCommand{}, platformAdmin, s.handleCreate)
	m.RegisterCommand(UpdateTenantSettingsCommand{}, platformAdmin, s.handleUpdateSettings)
	m.RegisterCommand(DeactivateTenantCommand{}, platformAdmin, s.handleDeactivate)
	m.RegisterCommand(ReactivateTenantCommand{}, platformAdmin, s.handleReactivate)

	m.RegisterQuery(GetTenantQuery{}, s.handleGet)
	m.RegisterQuery(ListTenantsQuery{}, s.handleList)
}

func (s *Service) handleCreate(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(CreateTenantCommand)

	if existing, err := tx.Tenants().GetBySubdomain(ctx, cmd.Subdomain); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	plan := cmd.SubscriptionPlan
	if plan == "" {
		plan = entity.PlanBasic
	}
	maxUsers := cmd.MaxUsers
	if maxUsers == 0 {
		maxUsers = 10
	}
	settings := cmd.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	now := time.Now().UTC()
	t := &entity.Tenant{
		ID:               uuid.New().String(),
		Name:             cmd.Name,
		Subdomain:        cmd.Subdomain,
		SubscriptionPlan: plan,
		MaxUsers:         maxUsers,
		IsActive:         true,
		Settings:         settings,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.Tenants().Create(ctx, t); err != nil {
		return nil, err
	}

	recorder.Emit(events.TypeTenantCreated, t.ID, 1, map[string]any{
		"name":          t.Name,
		"subdomain":     t.Subdomain,
		"actor_user_id": rc.UserID,
	})
	return dto.FromTenant(t), nil
}

func (s *Service) handleUpdateSettings(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(UpdateTenantSettingsCommand)
	t, err := tx.Tenants().GetByID(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		t.Name = *cmd.Name
	}
	if cmd.SubscriptionPlan != nil {
		t.SubscriptionPlan = *cmd.SubscriptionPlan
	}
	if cmd.MaxUsers != nil {
		t.MaxUsers = *cmd.MaxUsers
	}
	if cmd.Settings != nil {
		t.Settings = cmd.Settings
	}
	t.UpdatedAt = time.Now().UTC()

	if err := tx.Tenants().Update(ctx, t); err != nil {
		return nil, err
	}
	recorder.Emit(events.TypeTenantSettingsUpdated, t.ID, 1, map[string]any{
		"tenant_id":     t.ID,
		"actor_user_id": rc.UserID,
	})
	return dto.FromTenant(t), nil
}

func (s *Service) handleDeactivate(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(DeactivateTenantCommand)
	t, err := tx.Tenants().GetByID(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	t.IsActive = false
	t.UpdatedAt = time.Now().UTC()
	if err := tx.Tenants().Update(ctx, t); err != nil {
		return nil, err
	}
	recorder.Emit(events.TypeTenantDeactivated, t.ID, 1, map[string]any{
		"tenant_id":     t.ID,
		"actor_user_id": rc.UserID,
	})
	return dto.FromTenant(t), nil
}

func (s *Service) handleReactivate(ctx context.Context, tx cqrs.Tx, rc *reqcontext.RequestContext, recorder *events.Recorder, cmdAny any) (any, error) {
	cmd := cmdAny.(ReactivateTenantCommand)
	t, err := tx.Tenants().GetByID(ctx, cmd.TenantID)
	if err != nil {
		return nil, err
	}
	t.IsActive = true
	t.UpdatedAt = time.Now().UTC()
	if err := tx.Tenants().Update(ctx, t); err != nil {
		return nil, err
	}
	recorder.Emit(events.TypeTenantReactivated, t.ID, 1, map[string]any{
		"tenant_id":     t.ID,
		"actor_user_id": rc.UserID,
	})
	return dto.FromTenant(t), nil
}

func (s *Service) handleGet(ctx context.Context, tx cqrs.ReadTx, rc *reqcontext.RequestContext, queryAny any) (any, error) {
	if err := authz.Authorize(rc, platformAdmin); err != nil {
		return nil, err
	}
	q := queryAny.(GetTenantQuery)
	t, err := tx.Tenants().GetByID(ctx, q.TenantID)
	if err != nil {
		return nil, err
	}
	return dto.FromTenant(t), nil
}

func (s *Service) handleList(ctx context.Context, tx cqrs.ReadTx, rc *reqcontext.RequestContext, queryAny any) (any, error) {
	if err := authz.Authorize(rc, platformAdmin); err != nil {
		return nil, err
	}
	q := queryAny.(ListTenantsQuery)
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	tenants, err := tx.Tenants().List(ctx, limit, q.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		items = append(items, dto.FromTenant(t))
	}
	return dto.TenantListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: q.Offset},
	}, nil
}
