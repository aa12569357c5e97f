package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS is the ninth and innermost pipeline stage before the router
// itself. allowedOrigins comes straight from config.HTTP.AllowedOrigins;
// an empty list disables cross-origin requests entirely rather than
// defaulting to a permissive wildcard.
func CORS(allowedOrigins []string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOrigins, ","),
		AllowHeaders:     "Authorization, Content-Type, X-Tenant-ID, X-Correlation-ID",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE",
		AllowCredentials: len(allowedOrigins) > 0,
	})
}
