package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/taskforge/core-api/internal/platform/cache"
)

// responseCacheTTL is short on purpose: this cache only smooths read
// traffic between writes, and every write to a cached resource
// invalidates its namespace immediately via CacheInvalidationSubscriber.
const responseCacheTTL = 30 * time.Second

// ResponseCache is the seventh pipeline stage: a whole-response GET
// cache for the task listing/detail/statistics endpoints, namespaced
// under the same "tenant:{id}:tasks" prefix
// events.CacheInvalidationSubscriber clears on every task mutation, so
// a cached page never outlives the write that should invalidate it by
// more than the outbox's delivery latency.
func ResponseCache(c cache.Cache) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if ctx.Method() != fiber.MethodGet || !strings.HasPrefix(ctx.Path(), "/api/v1/tasks") {
			return ctx.Next()
		}
		rc := requestContext(ctx)
		if rc == nil || rc.TenantID == "" {
			return ctx.Next()
		}

		key := cache.TenantKey(rc.TenantID, "tasks", "http", ctx.OriginalURL())
		if cached, ok := c.Get(ctx.Context(), key); ok {
			ctx.Set("X-Cache", "HIT")
			ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return ctx.Status(fiber.StatusOK).Send(cached)
		}

		if err := ctx.Next(); err != nil {
			return err
		}
		if ctx.Response().StatusCode() == fiber.StatusOK {
			body := append([]byte(nil), ctx.Response().Body()...)
			c.Set(ctx.Context(), key, body, responseCacheTTL)
		}
		return nil
	}
}
