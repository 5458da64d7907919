package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khrental/internal/domain"
	"khrental/internal/mocks"
	"khrental/internal/service/dashboard"
)

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	requestRepo := new(mocks.MaintenanceRequestRepository)
	last := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	requestRepo.On("CountByStatus", ctx).Return(map[domain.RequestStatus]int64{
		domain.StatusPending:   3,
		domain.StatusAssigned:  2,
		domain.StatusCompleted: 5,
	}, nil).Once()
	requestRepo.On("CountOpenByPriority", ctx, domain.PriorityEmergency).Return(int64(1), nil).Once()
	requestRepo.On("GetLastActivityAt", ctx).Return(&last, nil).Once()

	stats, err := dashboard.NewService(requestRepo, nil, 0).GetStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.Total)
	assert.Equal(t, int64(5), stats.Open)
	assert.Equal(t, int64(1), stats.OpenEmergency)
	assert.Equal(t, int64(0), stats.ByStatus[domain.StatusCancelled])
	assert.Len(t, stats.ByStatus, 5)
	assert.Equal(t, last, *stats.LastActivityAt)
}

func TestGetStats_Error(t *testing.T) {
	ctx := context.Background()
	requestRepo := new(mocks.MaintenanceRequestRepository)
	requestRepo.On("CountByStatus", ctx).Return(nil, domain.StorageError("count", assert.AnError)).Once()

	_, err := dashboard.NewService(requestRepo, nil, time.Minute).GetStats(ctx)

	assert.ErrorIs(t, err, domain.ErrStorage)
	requestRepo.AssertNotCalled(t, "CountOpenByPriority")
}
