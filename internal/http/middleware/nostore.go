package middleware

import "github.com/gofiber/fiber/v2"

// NoStore marks responses as not cacheable, so a deleted photo stops being
// served as soon as its file is gone.
func NoStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		c.Set(fiber.HeaderCacheControl, "no-store")
		return err
	}
}
