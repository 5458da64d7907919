package handler

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"khrental/internal/domain"
	"khrental/internal/middleware"
	"khrental/internal/mocks"
	"khrental/internal/service/dashboard"
)

func newReportApp(auditSvc *mocks.AuditService, dashSvc *mocks.DashboardService) *fiber.App {
	h := NewReportHandler(auditSvc, dashSvc)
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Get("/audit/recent", h.Activity)
	app.Get("/dashboard/stats", h.Stats)
	app.Get("/dashboard/overview", h.Overview)
	return app
}

func TestActivity_LimitIsClamped(t *testing.T) {
	auditSvc := new(mocks.AuditService)
	app := newReportApp(auditSvc, new(mocks.DashboardService))

	auditSvc.On("GetRecentActivities", mock.Anything, maxActivityLimit).Return([]domain.AuditLog{}, nil).Once()
	auditSvc.On("GetRecentActivities", mock.Anything, defaultActivityLimit).Return([]domain.AuditLog{}, nil).Once()

	for _, url := range []string{"/audit/recent?limit=1000", "/audit/recent?limit=-3"} {
		resp, err := app.Test(httptest.NewRequest("GET", url, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	auditSvc.AssertExpectations(t)
}

func TestStats(t *testing.T) {
	dashSvc := new(mocks.DashboardService)
	app := newReportApp(new(mocks.AuditService), dashSvc)

	dashSvc.On("GetStats", mock.Anything).Return(&dashboard.Stats{Total: 4, Open: 3, OpenEmergency: 1}, nil).Once()

	resp, err := app.Test(httptest.NewRequest("GET", "/dashboard/stats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stats dashboard.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, int64(1), stats.OpenEmergency)
}

func TestOverview(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		auditSvc := new(mocks.AuditService)
		dashSvc := new(mocks.DashboardService)
		app := newReportApp(auditSvc, dashSvc)

		dashSvc.On("GetStats", mock.Anything).Return(&dashboard.Stats{Total: 2, Open: 2}, nil).Once()
		auditSvc.On("GetRecentActivities", mock.Anything, 5).
			Return([]domain.AuditLog{{Action: "ASSIGN"}, {Action: "CREATE"}}, nil).Once()

		resp, err := app.Test(httptest.NewRequest("GET", "/dashboard/overview?limit=5", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var overview Overview
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&overview))
		assert.Equal(t, int64(2), overview.Stats.Total)
		require.Len(t, overview.Activity, 2)
		assert.Equal(t, "ASSIGN", overview.Activity[0].Action)
	})

	t.Run("Stats Failure", func(t *testing.T) {
		auditSvc := new(mocks.AuditService)
		dashSvc := new(mocks.DashboardService)
		app := newReportApp(auditSvc, dashSvc)

		dashSvc.On("GetStats", mock.Anything).Return(nil, domain.StorageError("count requests", assert.AnError)).Once()
		auditSvc.On("GetRecentActivities", mock.Anything, defaultActivityLimit).Return([]domain.AuditLog{}, nil).Maybe()

		resp, err := app.Test(httptest.NewRequest("GET", "/dashboard/overview", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}
