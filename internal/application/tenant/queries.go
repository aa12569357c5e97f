package tenant

import "github.com/taskforge/core-api/internal/domain"

// GetTenantQuery fetches one tenant by id.
type GetTenantQuery struct {
	TenantID string
}

func (q GetTenantQuery) Validate() error {
	if q.TenantID == "" {
		return domain.NewError(domain.CodeValidationError, "tenant_id is required")
	}
	return nil
}

// ListTenantsQuery backs the platform-admin tenant directory listing.
type ListTenantsQuery struct {
	Limit  int
	Offset int
}

func (q ListTenantsQuery) Validate() error { return nil }
