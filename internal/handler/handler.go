package handler

import (
	"github.com/gofiber/fiber/v2"

	"khrental/internal/domain"
	"khrental/internal/service"
)

type Handlers struct {
	Maintenance  *MaintenanceHandler
	Report       *ReportHandler
	Notification *NotificationHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Maintenance:  NewMaintenanceHandler(services.Requests, services.Audit),
		Report:       NewReportHandler(services.Audit, services.Dashboard),
		Notification: NewNotificationHandler(services.Notification),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	return domain.NewPageParams(c.QueryInt("page", 1), c.QueryInt("page_size", domain.DefaultPageSize))
}
