package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khrental/internal/domain"
	"khrental/internal/repository"
)

type MaintenanceRequestRepository struct {
	mock.Mock
}

func (m *MaintenanceRequestRepository) Create(ctx context.Context, req *domain.MaintenanceRequest, images []domain.RequestImage, audit *domain.AuditLog) error {
	args := m.Called(ctx, req, images, audit)
	return args.Error(0)
}

func (m *MaintenanceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so the caller cannot modify the fixture.
	return args.Get(0).(*domain.MaintenanceRequest).Clone(), args.Error(1)
}

func (m *MaintenanceRequestRepository) List(ctx context.Context, filter domain.MaintenanceRequestFilter, params domain.PaginationParams) ([]domain.MaintenanceRequest, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.MaintenanceRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MaintenanceRequestRepository) Apply(ctx context.Context, change repository.RequestChange) error {
	args := m.Called(ctx, change)
	if args.Error(0) == nil {
		change.Request.Version = change.ExpectedVersion + 1
	}
	return args.Error(0)
}

func (m *MaintenanceRequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.RequestStatus]int64), args.Error(1)
}

func (m *MaintenanceRequestRepository) CountOpenByPriority(ctx context.Context, priority domain.Priority) (int64, error) {
	args := m.Called(ctx, priority)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MaintenanceRequestRepository) GetLastActivityAt(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}
