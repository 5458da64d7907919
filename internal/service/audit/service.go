package audit

import (
	"context"

	"github.com/google/uuid"

	"khrental/internal/domain"
	"khrental/internal/repository"
)

type Service interface {
	GetRecentActivities(ctx context.Context, limit int) ([]domain.AuditLog, error)
	// ListByRequest returns a request's trail oldest first.
	ListByRequest(ctx context.Context, requestID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error)
}

type service struct {
	auditRepo repository.AuditLogRepository
}

func NewService(auditRepo repository.AuditLogRepository) Service {
	return &service{
		auditRepo: auditRepo,
	}
}

func (s *service) GetRecentActivities(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	params := domain.PaginationParams{
		Page:     1,
		PageSize: limit,
	}
	params.Validate()

	logs, _, err := s.auditRepo.List(ctx, params)
	return logs, err
}

func (s *service) ListByRequest(ctx context.Context, requestID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.AuditLog], error) {
	params.Validate()

	logs, total, err := s.auditRepo.ListByEntity(ctx, domain.EntityMaintenanceRequest, requestID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.AuditLog]{}, err
	}
	return domain.NewPaginatedResponse(logs, params.Page, params.PageSize, total), nil
}
