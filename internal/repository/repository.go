package repository

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"khrental/internal/domain"
)

type Repositories struct {
	User               UserRepository
	MaintenanceRequest MaintenanceRequestRepository
	RequestImage       RequestImageRepository
	Comment            CommentRepository
	AuditLog           AuditLogRepository
	Notification       NotificationRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:               NewUserRepository(db),
		MaintenanceRequest: NewMaintenanceRequestRepository(db),
		RequestImage:       NewRequestImageRepository(db),
		Comment:            NewCommentRepository(db),
		AuditLog:           NewAuditLogRepository(db),
		Notification:       NewNotificationRepository(db),
	}
}

// translate maps driver errors onto the domain taxonomy.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError("%s", op)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			return domain.ValidationError("%s: referenced record does not exist", op)
		case "23505":
			return domain.ConflictError("%s: duplicate record", op)
		case "23514":
			return domain.ValidationError("%s: value out of range", op)
		}
	}

	return domain.StorageError(op, err)
}

// jsonArg passes raw JSON as text; lib/pq sends []byte as bytea, which jsonb
// columns reject.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
