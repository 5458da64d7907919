package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khrental/internal/domain"
)

type RequestImageRepository interface {
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.RequestImage, error)
}

type requestImageRepository struct {
	db *sqlx.DB
}

func NewRequestImageRepository(db *sqlx.DB) RequestImageRepository {
	return &requestImageRepository{db: db}
}

func (r *requestImageRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.RequestImage, error) {
	query := `
		SELECT id, request_id, image_url, image_type, uploaded_by, description, uploaded_at, storage_path
		FROM maintenance_request_images
		WHERE request_id = $1
		ORDER BY seq ASC`

	images := []domain.RequestImage{}
	if err := r.db.SelectContext(ctx, &images, query, requestID); err != nil {
		return nil, translate("list request images", err)
	}
	return images, nil
}
