package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"foodmemories/internal/http/middleware"
	"foodmemories/internal/logging"
	"foodmemories/internal/service"
)

// errorPayload defines the standardized error response body.
// Clients read message; code is for machines, request_id for support.
type errorPayload struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Message:   message,
		Code:      code,
		RequestID: middleware.RequestIDFrom(c),
	})
}

// writeServiceError maps service errors to responses. notFound is the message
// used when the addressed record does not exist.
func writeServiceError(c *fiber.Ctx, log *slog.Logger, err error, notFound string) error {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		code := "VALIDATION_ERROR"
		if errors.Is(err, service.ErrFileTooLarge) {
			code = "FILE_TOO_LARGE"
		}
		return writeError(c, fiber.StatusBadRequest, code, vErr.Message)
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", notFound)
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	default:
		log.Error("request_failed",
			slog.String("request_id", middleware.RequestIDFrom(c)),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			logging.Err(err),
		)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "Bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "Not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "Method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "Photo exceeds the maximum upload size")
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "RATE_LIMITED", "Too many requests, try again later")
		default:
			log.Error("unhandled_error",
				slog.String("request_id", middleware.RequestIDFrom(c)),
				slog.String("path", c.Path()),
				logging.Err(err),
			)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
	}
}
