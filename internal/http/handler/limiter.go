package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// UploadLimiter allows max requests per client IP per minute. Rejections go
// through the app's ErrorHandler so they carry the usual JSON envelope.
func UploadLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		LimitReached: func(*fiber.Ctx) error {
			return fiber.ErrTooManyRequests
		},
	})
}
