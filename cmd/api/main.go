package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"khrental/internal/config"
	"khrental/internal/handler"
	"khrental/internal/middleware"
	"khrental/internal/repository"
	"khrental/internal/service"
	"khrental/internal/service/auth"
	"khrental/internal/service/media"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	config.SetupLogging(cfg)
	if envErr != nil {
		slog.Info("no .env file found, using environment variables")
	}

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := repository.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to apply schema migrations", "error", err)
		os.Exit(1)
	}

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redis.Close()

	var store media.ObjectStore
	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		slog.Warn("failed to connect to minio, image uploads will fail", "error", err)
	} else {
		store = minioClient
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redis, store, cfg)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    int(cfg.UploadMaxBytes)*8 + 1<<20,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Accept-Language, Authorization, If-Match",
		AllowMethods:  "GET, POST, PATCH, OPTIONS",
		ExposeHeaders: "ETag",
	}))
	app.Use(middleware.RequestContext(cfg.DefaultLocale))

	setupRoutes(app, handlers, services.Auth)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")
	protected := v1.Group("", middleware.AuthRequired(authService))

	requests := protected.Group("/maintenance-requests")
	requests.Get("/", h.Maintenance.List)
	requests.Post("/", h.Maintenance.Create)
	requests.Get("/:id", h.Maintenance.Get)
	requests.Post("/:id/assign", middleware.RequireStaff(), h.Maintenance.Assign)
	requests.Post("/:id/start", middleware.RequireStaff(), h.Maintenance.StartWork)
	requests.Post("/:id/complete", middleware.RequireStaff(), h.Maintenance.Complete)
	requests.Post("/:id/cancel", h.Maintenance.Cancel)
	requests.Post("/:id/images", h.Maintenance.AddImages)
	requests.Post("/:id/comments", h.Maintenance.AddComment)
	requests.Get("/:id/comments", h.Maintenance.ListComments)
	requests.Get("/:id/audit", middleware.RequireStaff(), h.Maintenance.ListAudit)

	audit := protected.Group("/audit")
	audit.Get("/recent", middleware.RequireAdmin(), h.Report.Activity)

	dashboard := protected.Group("/dashboard")
	dashboard.Get("/stats", middleware.RequireStaff(), h.Report.Stats)
	dashboard.Get("/overview", middleware.RequireAdmin(), h.Report.Overview)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
}
