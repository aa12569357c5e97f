package dto

import "time"

// TenantResponse is the public shape of a Tenant.
type TenantResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Subdomain        string         `json:"subdomain"`
	SubscriptionPlan string         `json:"subscription_plan"`
	MaxUsers         int            `json:"max_users"`
	IsActive         bool           `json:"is_active"`
	Settings         map[string]any `json:"settings"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TenantListResponse is the paginated listing shape for the
// platform-admin tenant directory.
type TenantListResponse struct {
	Items []TenantResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
