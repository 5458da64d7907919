package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"khrental/internal/domain"
)

type MediaService struct {
	mock.Mock
}

func (m *MediaService) Upload(ctx context.Context, upload domain.Upload, folder string) (*domain.StoredObject, error) {
	args := m.Called(ctx, upload, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StoredObject), args.Error(1)
}

func (m *MediaService) Remove(ctx context.Context, storagePath string) error {
	args := m.Called(ctx, storagePath)
	return args.Error(0)
}

func (m *MediaService) PublicURL(storagePath string) string {
	args := m.Called(storagePath)
	return args.String(0)
}
