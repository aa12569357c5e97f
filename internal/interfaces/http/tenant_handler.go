package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/core-api/internal/application/cqrs"
	"github.com/taskforge/core-api/internal/application/tenant"
)

// TenantHandler exposes the platform-admin tenant directory: creation,
// settings updates, and the reversible deactivate/reactivate pair.
type TenantHandler struct {
	mediator *cqrs.Mediator
}

// NewTenantHandler constructs the tenant handler.
func NewTenantHandler(mediator *cqrs.Mediator) *TenantHandler {
	return &TenantHandler{mediator: mediator}
}

type createTenantRequest struct {
	Name             string         `json:"name"`
	Subdomain        string         `json:"subdomain"`
	SubscriptionPlan string         `json:"subscription_plan"`
	MaxUsers         int            `json:"max_users"`
	Settings         map[string]any `json:"settings"`
}

// Create godoc
// @Summary      Provision a new tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        body  body  createTenantRequest  true  "name, subdomain, subscription_plan, max_users"
// @Success      201   {object}  dto.TenantResponse
// @Failure      409   {object}  errorBody
// @Router       /api/v1/tenants [post]
func (h *TenantHandler) Create(c *fiber.Ctx) error {
	var in createTenantRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	result, err := h.mediator.Send(c.Context(), requestContext(c), tenant.CreateTenantCommand{
		Name:             in.Name,
		Subdomain:        in.Subdomain,
		SubscriptionPlan: in.SubscriptionPlan,
		MaxUsers:         in.MaxUsers,
		Settings:         in.Settings,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, result)
}

// GetByID godoc
// @Summary      Fetch a tenant by id
// @Tags         tenants
// @Produce      json
// @Param        id   path  string  true  "tenant id"
// @Success      200  {object}  dto.TenantResponse
// @Router       /api/v1/tenants/{id} [get]
func (h *TenantHandler) GetByID(c *fiber.Ctx) error {
	result, err := h.mediator.Query(c.Context(), requestContext(c), tenant.GetTenantQuery{TenantID: c.Params("id")})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

// List godoc
// @Summary      List the tenant directory
// @Tags         tenants
// @Produce      json
// @Param        limit   query  int  false  "page size"
// @Param        offset  query  int  false  "page offset"
// @Success      200  {object}  dto.TenantListResponse
// @Router       /api/v1/tenants [get]
func (h *TenantHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	result, err := h.mediator.Query(c.Context(), requestContext(c), tenant.ListTenantsQuery{Limit: limit, Offset: offset})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

type updateTenantSettingsRequest struct {
	Name             *string        `json:"name"`
	SubscriptionPlan *string        `json:"subscription_plan"`
	MaxUsers         *int           `json:"max_users"`
	Settings         map[string]any `json:"settings"`
}

// UpdateSettings godoc
// @Summary      Update a tenant's settings, plan, or seat limit
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "tenant id"
// @Param        body  body  updateTenantSettingsRequest  true  "fields to change"
// @Success      200   {object}  dto.TenantResponse
// @Router       /api/v1/tenants/{id} [patch]
func (h *TenantHandler) UpdateSettings(c *fiber.Ctx) error {
	var in updateTenantSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return err
	}
	result, err := h.mediator.Send(c.Context(), requestContext(c), tenant.UpdateTenantSettingsCommand{
		TenantID:         c.Params("id"),
		Name:             in.Name,
		SubscriptionPlan: in.SubscriptionPlan,
		MaxUsers:         in.MaxUsers,
		Settings:         in.Settings,
	})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

// Deactivate godoc
// @Summary      Suspend a tenant
// @Tags         tenants
// @Produce      json
// @Param        id   path  string  true  "tenant id"
// @Success      200  {object}  dto.TenantResponse
// @Router       /api/v1/tenants/{id}/deactivate [post]
func (h *TenantHandler) Deactivate(c *fiber.Ctx) error {
	result, err := h.mediator.Send(c.Context(), requestContext(c), tenant.DeactivateTenantCommand{TenantID: c.Params("id")})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}

// Reactivate godoc
// @Summary      Reverse a prior tenant deactivation
// @Tags         tenants
// @Produce      json
// @Param        id   path  string  true  "tenant id"
// @Success      200  {object}  dto.TenantResponse
// @Router       /api/v1/tenants/{id}/reactivate [post]
func (h *TenantHandler) Reactivate(c *fiber.Ctx) error {
	result, err := h.mediator.Send(c.Context(), requestContext(c), tenant.ReactivateTenantCommand{TenantID: c.Params("id")})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}
