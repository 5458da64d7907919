package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khrental/internal/domain"
)

type CommentRepository interface {
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Comment, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// ListByRequest returns the whole thread oldest first. Visibility filtering
// is the caller's job; the store always holds every comment.
func (r *commentRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]domain.Comment, error) {
	query := `
		SELECT id, request_id, content, author_id, author_name, author_role, is_internal, created_at
		FROM maintenance_request_comments
		WHERE request_id = $1
		ORDER BY seq ASC`

	rows, err := r.db.QueryxContext(ctx, query, requestID)
	if err != nil {
		return nil, translate("list request comments", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		err := rows.Scan(
			&c.ID, &c.RequestID, &c.Content,
			&c.CreatedBy.ID, &c.CreatedBy.Name, &c.CreatedBy.Role,
			&c.IsInternal, &c.CreatedAt,
		)
		if err != nil {
			return nil, translate("scan request comment", err)
		}
		comments = append(comments, c)
	}

	return comments, translate("iterate request comments", rows.Err())
}
