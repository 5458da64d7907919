package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"khrental/internal/service/email"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendRequestUpdate(ctx context.Context, toEmail string, update email.RequestUpdate) error {
	args := m.Called(ctx, toEmail, update)
	return args.Error(0)
}
