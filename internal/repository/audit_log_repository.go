package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khrental/internal/domain"
)

type AuditLogRepository interface {
	List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error)
}

type auditLogRepository struct {
	db *sqlx.DB
}

func NewAuditLogRepository(db *sqlx.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`); err != nil {
		return nil, 0, translate("count audit logs", err)
	}

	query := `
		SELECT * FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	logs := []domain.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, query, params.PageSize, params.Offset()); err != nil {
		return nil, 0, translate("list audit logs", err)
	}
	return logs, total, nil
}

// ListByEntity returns an entity's trail oldest first so it reads as a
// timeline.
func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, params domain.PaginationParams) ([]domain.AuditLog, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM audit_logs WHERE entity_type = $1 AND entity_id = $2`
	if err := r.db.GetContext(ctx, &total, countQuery, entityType, entityID); err != nil {
		return nil, 0, translate("count entity audit logs", err)
	}

	query := `
		SELECT * FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4`

	logs := []domain.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, query, entityType, entityID, params.PageSize, params.Offset()); err != nil {
		return nil, 0, translate("list entity audit logs", err)
	}
	return logs, total, nil
}
