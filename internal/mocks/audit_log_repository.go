package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khrental/internal/domain"
)

type AuditLogRepository struct {
	mock.Mock
}

func (m *AuditLogRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *AuditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	args := m.Called(ctx, entityType, entityID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.AuditLog), args.Get(1).(int64), args.Error(2)
}
