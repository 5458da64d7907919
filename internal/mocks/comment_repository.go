package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"khrental/internal/domain"
)

type CommentRepository struct {
	mock.Mock
}

func (m *CommentRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Comment, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}
