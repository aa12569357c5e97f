// Package tenant implements tenant-directory administration: creating a
// tenant, updating its settings, and the reversible deactivate/reactivate
// pair of spec §4.2. Grounded on
// original_source/app/tenant/{repository,schemas}.py — the original has
// no dedicated command/handler module for tenant management, only a
// repository and Pydantic schemas, so this package's shape follows the
// auth and task packages' mediator convention rather than a direct port.
//
// Every operation here is restricted to SYSTEM_ADMIN: tenant rows are
// the one aggregate that exists outside any single tenant's scope
// (repository.TenantRepository's lookups are deliberately not
// tenant-scoped), so only the platform-level role may touch them.
package tenant

import (
	"github.com/taskforge/core-api/internal/domain"
	"github.com/taskforge/core-api/internal/domain/entity"
)

// CreateTenantCommand provisions a new tenant namespace.
type CreateTenantCommand struct {
	Name             string
	Subdomain        string
	SubscriptionPlan string
	MaxUsers         int
	Settings         map[string]any
}

func (c CreateTenantCommand) Validate() error {
	if c.Name == "" || c.Subdomain == "" {
		return domain.NewError(domain.CodeValidationError, "name and subdomain are required")
	}
	if entity.ReservedSubdomains[c.Subdomain] {
		return domain.NewError(domain.CodeValidationError, "subdomain is reserved")
	}
	switch c.SubscriptionPlan {
	case "", entity.PlanBasic, entity.PlanProfessional, entity.PlanEnterprise:
	default:
		return domain.NewError(domain.CodeValidationError, "invalid subscription_plan")
	}
	if c.MaxUsers < 0 {
		return domain.NewError(domain.CodeValidationError, "max_users must be non-negative")
	}
	return nil
}

// UpdateTenantSettingsCommand replaces a tenant's opaque settings blob
// and/or its subscription plan and seat limit. Nil/zero fields leave the
// existing value untouched.
type UpdateTenantSettingsCommand struct {
	TenantID         string
	Name             *string
	SubscriptionPlan *string
	MaxUsers         *int
	Settings         map[string]any
}

func (c UpdateTenantSettingsCommand) Validate() error {
	if c.TenantID == "" {
		return domain.NewError(domain.CodeValidationError, "tenant_id is required")
	}
	if c.SubscriptionPlan != nil {
		switch *c.SubscriptionPlan {
		case entity.PlanBasic, entity.PlanProfessional, entity.PlanEnterprise:
		default:
			return domain.NewError(domain.CodeValidationError, "invalid subscription_plan")
		}
	}
	if c.MaxUsers != nil && *c.MaxUsers < 0 {
		return domain.NewError(domain.CodeValidationError, "max_users must be non-negative")
	}
	return nil
}

// DeactivateTenantCommand suspends a tenant; reversible via
// ReactivateTenantCommand (spec §4.2 "deactivation is reversible").
type DeactivateTenantCommand struct {
	TenantID string
}

func (c DeactivateTenantCommand) Validate() error {
	if c.TenantID == "" {
		return domain.NewError(domain.CodeValidationError, "tenant_id is required")
	}
	return nil
}

// ReactivateTenantCommand reverses a prior deactivation.
type ReactivateTenantCommand struct {
	TenantID string
}

func (c ReactivateTenantCommand) Validate() error {
	if c.TenantID == "" {
		return domain.NewError(domain.CodeValidationError, "tenant_id is required")
	}
	return nil
}
