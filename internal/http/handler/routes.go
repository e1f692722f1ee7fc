package handler

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"foodmemories/internal/http/middleware"
	"foodmemories/internal/logging"
	"foodmemories/internal/service"
	"foodmemories/internal/storage"
)

// Dependencies are what the HTTP routes need from the rest of the application.
type Dependencies struct {
	DB           Pinger
	Started      time.Time
	Participants service.ParticipantService
	Photos       service.PhotoService
	Store        storage.Storage
	Logger       *slog.Logger
	// UploadLimiter, when set, guards POST /api/photos.
	UploadLimiter fiber.Handler
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parsing and status mapping only, business rules live in service.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}

	app.Get("/health", HealthCheck(deps.DB, deps.Started))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	participants := api.Group("/participants")
	participants.Get("/", ListParticipants(deps.Participants, log))
	participants.Post("/", CreateParticipant(deps.Participants, log))
	participants.Get("/:id", GetParticipant(deps.Participants, log))
	participants.Put("/:id", UpdateParticipant(deps.Participants, log))
	participants.Delete("/:id", DeleteParticipant(deps.Participants, log))

	photos := api.Group("/photos")
	photos.Get("/", ListPhotos(deps.Photos, log))
	upload := []fiber.Handler{UploadPhoto(deps.Photos, log)}
	if deps.UploadLimiter != nil {
		upload = append([]fiber.Handler{deps.UploadLimiter}, upload...)
	}
	photos.Post("/", upload...)
	photos.Get("/:id", GetPhoto(deps.Photos, log))
	photos.Delete("/:id", DeletePhoto(deps.Photos, log))

	if deps.Store != nil {
		app.Use(UploadsPrefix, middleware.NoStore(), ServeUploads(deps.Store, log))
	}
}
