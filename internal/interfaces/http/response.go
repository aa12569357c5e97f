// Package http implements the External Interfaces of spec §6: the
// Fiber app, its nine-stage middleware pipeline (§4.8), and the
// handlers that translate HTTP requests into mediator commands/queries.
// Grounded on the teacher's internal/interfaces/http package (Fiber
// handlers taking *fiber.Ctx, swagger-style doc comments, one handler
// struct per resource) generalized from its ad hoc per-handler error
// JSON to the single envelope spec §6 fixes.
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/core-api/internal/application/dto"
)

// envelope is the outer shape every response wears, success or error,
// per spec §6 "Response envelope".
type envelope struct {
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *errorBody   `json:"error,omitempty"`
	Metadata envelopeMeta `json:"metadata"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type envelopeMeta struct {
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Pagination    *dto.PageResponse `json:"pagination,omitempty"`
}

// respondOK writes a 200 success envelope, copying a paginated
// response's Page into metadata.pagination; data still carries it too.
func respondOK(c *fiber.Ctx, data any) error {
	return respondStatus(c, fiber.StatusOK, data)
}

// respondCreated writes a 201 success envelope.
func respondCreated(c *fiber.Ctx, data any) error {
	return respondStatus(c, fiber.StatusCreated, data)
}

// respondNoContent writes a 204 with no body, per spec §6's
// /auth/logout and DELETE /tasks/{id} contracts.
func respondNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func respondStatus(c *fiber.Ctx, status int, data any) error {
	meta := envelopeMeta{Timestamp: time.Now().UTC()}
	if page, ok := extractPage(data); ok {
		meta.Pagination = &page
	}
	return c.Status(status).JSON(envelope{Success: true, Data: data, Metadata: meta})
}

// extractPage reads the Page field of the three list response DTOs so
// it can ride in metadata.pagination. The DTO is left intact, so the
// same page object also appears inside data.
func extractPage(data any) (dto.PageResponse, bool) {
	switch v := data.(type) {
	case dto.TaskListResponse:
		return v.Page, true
	case dto.TenantListResponse:
		return v.Page, true
	case dto.AuditLogListResponse:
		return v.Page, true
	default:
		return dto.PageResponse{}, false
	}
}

// respondError writes the error envelope for err, using the correlation
// id already stamped on the context by RequestLog.
func respondError(c *fiber.Ctx, err error) error {
	status, code, message, details := classify(err)
	if status >= fiber.StatusInternalServerError {
		logFromCtx(c).Error().Err(err).
			Str("correlation_id", correlationID(c)).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("unhandled error")
	}
	return c.Status(status).JSON(envelope{
		Success: false,
		Error:   &errorBody{Code: code, Message: message, Details: details},
		Metadata: envelopeMeta{
			Timestamp:     time.Now().UTC(),
			CorrelationID: correlationID(c),
		},
	})
}
