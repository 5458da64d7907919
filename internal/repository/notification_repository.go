package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khrental/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		notif.ID, notif.UserID, notif.Type, notif.Title, notif.Message, jsonArg(notif.Data),
	).Scan(&notif.CreatedAt)
	return translate("insert notification", err)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	params.Validate()

	where := `WHERE user_id = $1`
	if unreadOnly {
		where += ` AND is_read = false`
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications `+where, userID); err != nil {
		return nil, 0, translate("count notifications", err)
	}

	query := `SELECT * FROM notifications ` + where + ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID, params.PageSize, params.Offset()); err != nil {
		return nil, 0, translate("list notifications", err)
	}
	return notifications, total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true, read_at = NOW() WHERE id = $1 AND user_id = $2 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	return translate("mark notification read", err)
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = true, read_at = NOW() WHERE user_id = $1 AND is_read = false`
	_, err := r.db.ExecContext(ctx, query, userID)
	return translate("mark all notifications read", err)
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, translate("count unread notifications", err)
	}
	return count, nil
}
