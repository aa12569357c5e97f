package http

import "github.com/gofiber/fiber/v2"

// ErrorHandler is installed as fiber.Config.ErrorHandler — the outermost
// stage of spec §4.8's pipeline. Fiber calls it for any error a handler
// or a later middleware stage returns (including one recovered from a
// panic by the recover middleware wired alongside it in Router), so this
// single function is the one place request errors become response
// envelopes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}
