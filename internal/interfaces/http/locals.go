package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/taskforge/core-api/internal/platform/reqcontext"
)

// Fiber locals keys. Unexported and typed as plain strings (rather than
// an unexported struct key, the net/http idiom) because c.Locals is
// itself just a map[string]any — Fiber offers no typed-context
// equivalent to worry about collisions with.
const (
	localRequestContext = "rc"
	localLogger         = "log"
)

// requestContext returns the *reqcontext.RequestContext the middleware
// pipeline built for this request. It is always present by the time a
// handler runs — RequestLog, the earliest stage after recover, stamps one
// unconditionally.
func requestContext(c *fiber.Ctx) *reqcontext.RequestContext {
	rc, _ := c.Locals(localRequestContext).(*reqcontext.RequestContext)
	return rc
}

func setRequestContext(c *fiber.Ctx, rc *reqcontext.RequestContext) {
	c.Locals(localRequestContext, rc)
}

func correlationID(c *fiber.Ctx) string {
	if rc := requestContext(c); rc != nil {
		return rc.CorrelationID
	}
	return ""
}

func setLogger(c *fiber.Ctx, log zerolog.Logger) {
	c.Locals(localLogger, log)
}

// logFromCtx returns the request-scoped logger, falling back to the
// package-level zerolog logger if RequestLog hasn't run yet (e.g. a
// panic recovered before it).
func logFromCtx(c *fiber.Ctx) zerolog.Logger {
	if zl, ok := c.Locals(localLogger).(zerolog.Logger); ok {
		return zl
	}
	return log.Logger
}
