package service

import (
	"github.com/redis/go-redis/v9"

	"khrental/internal/config"
	"khrental/internal/repository"
	"khrental/internal/service/audit"
	"khrental/internal/service/auth"
	"khrental/internal/service/commentlog"
	"khrental/internal/service/dashboard"
	"khrental/internal/service/email"
	"khrental/internal/service/facade"
	"khrental/internal/service/lifecycle"
	"khrental/internal/service/media"
	"khrental/internal/service/notification"
)

type Services struct {
	Auth         auth.Service
	Lifecycle    lifecycle.Service
	Requests     facade.Service
	Media        media.Service
	Email        email.Service
	Audit        audit.Service
	Notification notification.Service
	Dashboard    dashboard.Service
}

// NewServices wires the service graph. store may be nil when object storage
// is unavailable; uploads then fail with a storage error.
func NewServices(repos *repository.Repositories, redis *redis.Client, store media.ObjectStore, cfg *config.Config) *Services {
	emailService := email.NewService(cfg)
	authService := auth.NewService(repos.User, cfg)
	mediaService := media.NewService(store, cfg)
	commentService := commentlog.NewService(repos.Comment, redis, cfg.CacheTTL)
	notificationService := notification.NewService(repos.Notification, repos.User, emailService, cfg.DefaultLocale)

	lifecycleService := lifecycle.NewService(
		repos.MaintenanceRequest,
		repos.RequestImage,
		repos.User,
		commentService,
		mediaService,
		redis,
		cfg.UploadConcurrency,
	)
	lifecycleService.SetNotificationService(notificationService)

	return &Services{
		Auth:         authService,
		Lifecycle:    lifecycleService,
		Requests:     facade.NewService(lifecycleService, cfg.DefaultLocale),
		Media:        mediaService,
		Email:        emailService,
		Audit:        audit.NewService(repos.AuditLog),
		Notification: notificationService,
		Dashboard:    dashboard.NewService(repos.MaintenanceRequest, redis, cfg.CacheTTL),
	}
}
