package entity

import "time"

// Subscription plans a tenant may be on.
const (
	PlanBasic        = "BASIC"
	PlanProfessional = "PROFESSIONAL"
	PlanEnterprise   = "ENTERPRISE"
)

// ReservedSubdomains may never be claimed by a tenant; they are reserved
// for platform infrastructure (www, the API itself, the app shell, admin
// tooling).
var ReservedSubdomains = map[string]bool{
	"www":   true,
	"api":   true,
	"app":   true,
	"admin": true,
}

// Tenant is an isolated organizational namespace. Every other entity in
// the system carries a TenantID and every repository query filters by it.
type Tenant struct {
	ID               string
	Name             string
	Subdomain        string // globally unique, lowercased ASCII
	SubscriptionPlan string
	MaxUsers         int
	IsActive         bool
	Settings         map[string]any
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
