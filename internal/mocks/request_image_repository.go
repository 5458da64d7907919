package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khrental/internal/domain"
)

type RequestImageRepository struct {
	mock.Mock
}

func (m *RequestImageRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.RequestImage, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RequestImage), args.Error(1)
}
