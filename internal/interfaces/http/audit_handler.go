package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/core-api/internal/application/audit"
	"github.com/taskforge/core-api/internal/application/cqrs"
)

// AuditHandler exposes the read-only, tenant-scoped audit trail.
type AuditHandler struct {
	mediator *cqrs.Mediator
}

// NewAuditHandler constructs the audit handler.
func NewAuditHandler(mediator *cqrs.Mediator) *AuditHandler {
	return &AuditHandler{mediator: mediator}
}

// List godoc
// @Summary      List the caller's tenant audit trail
// @Tags         audit
// @Produce      json
// @Param        limit   query  int  false  "page size"
// @Param        offset  query  int  false  "page offset"
// @Success      200  {object}  dto.AuditLogListResponse
// @Router       /api/v1/audit-log [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	result, err := h.mediator.Query(c.Context(), requestContext(c), audit.ListAuditLogQuery{Limit: limit, Offset: offset})
	if err != nil {
		return err
	}
	return respondOK(c, result)
}
