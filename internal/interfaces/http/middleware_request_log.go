package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskforge/core-api/internal/platform/reqcontext"
)

// RequestLog is the second pipeline stage. It mints or propagates the
// correlation id, builds this request's RequestContext, binds a
// correlation-id-scoped logger, and logs start/completion — grounded on
// original_source/app/shared/middleware/logging.py's
// logging_middleware (same X-Correlation-ID propagation, same
// start/duration/status log pair).
func RequestLog(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationID := c.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		rc := reqcontext.New(correlationID)
		setRequestContext(c, rc)

		reqLog := base.With().Str("correlation_id", correlationID).Logger()
		setLogger(c, reqLog)

		c.Set("X-Correlation-ID", correlationID)

		start := time.Now()
		reqLog.Info().Str("method", c.Method()).Str("path", c.Path()).Msg("request started")

		err := c.Next()

		reqLog.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request completed")

		return err
	}
}
