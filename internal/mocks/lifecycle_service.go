package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khrental/internal/domain"
	"khrental/internal/service/notification"
)

type LifecycleService struct {
	mock.Mock
}

func (m *LifecycleService) request(args mock.Arguments) (*domain.MaintenanceRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MaintenanceRequest), args.Error(1)
}

func (m *LifecycleService) Create(ctx context.Context, actor domain.Actor, input domain.CreateMaintenanceRequestInput, uploads []domain.Upload) (*domain.MaintenanceRequest, error) {
	return m.request(m.Called(ctx, actor, input, uploads))
}

func (m *LifecycleService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	return m.request(m.Called(ctx, actor, id))
}

func (m *LifecycleService) List(ctx context.Context, actor domain.Actor, filter domain.MaintenanceRequestFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.MaintenanceRequest], error) {
	args := m.Called(ctx, actor, filter, params)
	return args.Get(0).(domain.PaginatedResponse[domain.MaintenanceRequest]), args.Error(1)
}

func (m *LifecycleService) Assign(ctx context.Context, actor domain.Actor, id, staffID uuid.UUID) (*domain.MaintenanceRequest, error) {
	return m.request(m.Called(ctx, actor, id, staffID))
}

func (m *LifecycleService) StartWork(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	return m.request(m.Called(ctx, actor, id))
}

func (m *LifecycleService) Complete(ctx context.Context, actor domain.Actor, id uuid.UUID, notes string, uploads []domain.Upload) (*domain.MaintenanceRequest, error) {
	return m.request(m.Called(ctx, actor, id, notes, uploads))
}

func (m *LifecycleService) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.MaintenanceRequest, error) {
	return m.request(m.Called(ctx, actor, id, reason))
}

func (m *LifecycleService) AddComment(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.CreateCommentInput) (*domain.MaintenanceRequest, error) {
	return m.request(m.Called(ctx, actor, id, input))
}

func (m *LifecycleService) AddImage(ctx context.Context, actor domain.Actor, id uuid.UUID, upload domain.Upload, imageType domain.ImageType) (*domain.MaintenanceRequest, error) {
	return m.request(m.Called(ctx, actor, id, upload, imageType))
}

func (m *LifecycleService) AddImages(ctx context.Context, actor domain.Actor, id uuid.UUID, uploads []domain.Upload, imageType domain.ImageType) (*domain.ImageBatchResult, error) {
	args := m.Called(ctx, actor, id, uploads, imageType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImageBatchResult), args.Error(1)
}

func (m *LifecycleService) SetNotificationService(notifSvc notification.Service) {
	m.Called(notifSvc)
}

func (m *LifecycleService) SetClock(now func() time.Time) {
	m.Called(now)
}
