package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"foodmemories/docs"
	"foodmemories/internal/config"
	"foodmemories/internal/database"
	handlers "foodmemories/internal/http/handler"
	"foodmemories/internal/http/middleware"
	"foodmemories/internal/logging"
	"foodmemories/internal/otel"
	"foodmemories/internal/service"
	"foodmemories/internal/storage"
)

// multipart framing on top of the photo itself
const formOverheadBytes = 1 << 20

// @title Food Memories API
// @version 1.0
// @BasePath /
func main() {
	started := time.Now()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, started); err != nil {
		log.Error("server_failed", logging.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log *slog.Logger, started time.Time) error {
	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// Document store: PostgreSQL or MongoDB, chosen by the DB_URI scheme
	store, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()
	log.Info("database_connected", slog.String("driver", store.Driver), slog.String("db_host", database.HostOf(cfg.Database.URI)))

	objStore, err := newByteStore(cfg)
	if err != nil {
		return err
	}
	log.Info("storage_configured", slog.String("driver", cfg.Upload.Driver), slog.String("upload_root", cfg.Upload.Root))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}
	photoMetrics, err := service.NewPhotoMetrics(reg)
	if err != nil {
		return err
	}

	participantSvc := service.NewParticipantService(store.Participants)
	photoSvc := service.NewPhotoService(objStore, store.Photos, store.Participants, service.PhotoOptions{
		MaxBytes:      cfg.Upload.MaxBytes,
		PublicBaseURL: cfg.Upload.PublicBaseURL,
		Logger:        log,
		Metrics:       photoMetrics,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
		BodyLimit:    int(cfg.Upload.MaxBytes) + formOverheadBytes,
	})

	app.Use(recover.New())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))

	var uploadLimiter fiber.Handler
	if cfg.Upload.RatePerMinute > 0 {
		uploadLimiter = handlers.UploadLimiter(cfg.Upload.RatePerMinute)
	}

	handlers.RegisterRoutes(app, handlers.Dependencies{
		DB:            store,
		Started:       started,
		Participants:  participantSvc,
		Photos:        photoSvc,
		Store:         objStore,
		Logger:        log,
		UploadLimiter: uploadLimiter,
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	log.Info("server_started", slog.String("port", cfg.Port))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func newByteStore(cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.Upload.Driver {
	case config.DriverLocal:
		return storage.NewLocal(cfg.Upload.Root)
	case config.DriverMinIO:
		return storage.NewMinIO(cfg.MinIO)
	default:
		return nil, errors.New("unsupported STORAGE_DRIVER " + cfg.Upload.Driver)
	}
}
