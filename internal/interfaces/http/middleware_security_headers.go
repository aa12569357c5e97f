package http

import "github.com/gofiber/fiber/v2"

// SecurityHeaders sets the fixed response headers spec §6 names. It runs
// before any of TenantResolver/Authentication/RateLimit so the headers
// are present on every response, error paths included.
func SecurityHeaders(c *fiber.Ctx) error {
	c.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
	c.Set("Content-Security-Policy", "default-src 'self'")
	c.Set("X-Frame-Options", "DENY")
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
	return c.Next()
}
