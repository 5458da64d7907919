package handler

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"khrental/internal/domain"
	"khrental/internal/service/audit"
	"khrental/internal/service/dashboard"
)

const (
	defaultActivityLimit = 10
	maxActivityLimit     = 50
)

// ReportHandler serves the read-only views behind the staff dashboard.
type ReportHandler struct {
	auditService     audit.Service
	dashboardService dashboard.Service
}

func NewReportHandler(auditService audit.Service, dashboardService dashboard.Service) *ReportHandler {
	return &ReportHandler{auditService: auditService, dashboardService: dashboardService}
}

type Overview struct {
	Stats    *dashboard.Stats  `json:"stats"`
	Activity []domain.AuditLog `json:"activity"`
}

func activityLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", defaultActivityLimit)
	switch {
	case limit <= 0:
		return defaultActivityLimit
	case limit > maxActivityLimit:
		return maxActivityLimit
	}
	return limit
}

func (h *ReportHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.dashboardService.GetStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *ReportHandler) Activity(c *fiber.Ctx) error {
	logs, err := h.auditService.GetRecentActivities(c.UserContext(), activityLimit(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(logs)
}

// Overview returns the request counts and the latest audit entries together.
func (h *ReportHandler) Overview(c *fiber.Ctx) error {
	var overview Overview
	limit := activityLimit(c)

	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		stats, err := h.dashboardService.GetStats(ctx)
		overview.Stats = stats
		return err
	})
	g.Go(func() error {
		logs, err := h.auditService.GetRecentActivities(ctx, limit)
		overview.Activity = logs
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if overview.Activity == nil {
		overview.Activity = []domain.AuditLog{}
	}
	return c.Status(fiber.StatusOK).JSON(overview)
}
