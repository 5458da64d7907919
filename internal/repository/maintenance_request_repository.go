package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"khrental/internal/domain"
)

const requestColumns = `id, title, description, request_type, priority, status, property_id, rentee_id,
	assigned_to, notes, cancellation_reason, created_at, assigned_at, started_at, completed_at,
	cancelled_at, updated_at, version`

// RequestChange is everything one lifecycle mutation writes. It is applied
// in a single transaction and only if the stored version still equals
// ExpectedVersion.
type RequestChange struct {
	Request         *domain.MaintenanceRequest
	ExpectedVersion int64
	NewImages       []domain.RequestImage
	NewComments     []domain.Comment
	Audit           *domain.AuditLog
}

type MaintenanceRequestRepository interface {
	Create(ctx context.Context, req *domain.MaintenanceRequest, images []domain.RequestImage, audit *domain.AuditLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRequest, error)
	List(ctx context.Context, filter domain.MaintenanceRequestFilter, params domain.PaginationParams) ([]domain.MaintenanceRequest, int64, error)
	Apply(ctx context.Context, change RequestChange) error
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error)
	CountOpenByPriority(ctx context.Context, priority domain.Priority) (int64, error)
	GetLastActivityAt(ctx context.Context) (*time.Time, error)
}

type maintenanceRequestRepository struct {
	db *sqlx.DB
}

func NewMaintenanceRequestRepository(db *sqlx.DB) MaintenanceRequestRepository {
	return &maintenanceRequestRepository{db: db}
}

func (r *maintenanceRequestRepository) Create(ctx context.Context, req *domain.MaintenanceRequest, images []domain.RequestImage, audit *domain.AuditLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return translate("begin create request", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO maintenance_requests (id, title, description, request_type, priority, status,
			property_id, rentee_id, assigned_to, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
		RETURNING version`

	err = tx.QueryRowxContext(ctx, query,
		req.ID, req.Title, req.Description, req.RequestType, req.Priority, req.Status,
		req.PropertyID, req.RenteeID, req.AssignedTo, req.CreatedAt, req.UpdatedAt,
	).Scan(&req.Version)
	if err != nil {
		return translate("insert maintenance request", err)
	}

	if err := insertImages(ctx, tx, images); err != nil {
		return err
	}
	if err := insertAudit(ctx, tx, audit); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translate("commit create request", err)
	}
	return nil
}

func (r *maintenanceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	var req domain.MaintenanceRequest
	query := `SELECT ` + requestColumns + ` FROM maintenance_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, translate(fmt.Sprintf("maintenance request %s", id), err)
	}
	return &req, nil
}

func (r *maintenanceRequestRepository) List(ctx context.Context, filter domain.MaintenanceRequestFilter, params domain.PaginationParams) ([]domain.MaintenanceRequest, int64, error) {
	params.Validate()

	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.PropertyID != nil {
		add("property_id = $%d", *filter.PropertyID)
	}
	if filter.RenteeID != nil {
		add("rentee_id = $%d", *filter.RenteeID)
	}
	if filter.AssignedTo != nil {
		add("assigned_to = $%d", *filter.AssignedTo)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM maintenance_requests`+where, args...); err != nil {
		return nil, 0, translate("count maintenance requests", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM maintenance_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		requestColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	requests := []domain.MaintenanceRequest{}
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, translate("list maintenance requests", err)
	}
	return requests, total, nil
}

func (r *maintenanceRequestRepository) Apply(ctx context.Context, change RequestChange) error {
	req := change.Request

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return translate("begin request change", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE maintenance_requests
		SET title = $3, description = $4, request_type = $5, priority = $6, status = $7,
			assigned_to = $8, notes = $9, cancellation_reason = $10, assigned_at = $11,
			started_at = $12, completed_at = $13, cancelled_at = $14, updated_at = $15,
			version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version`

	var version int64
	err = tx.QueryRowxContext(ctx, query,
		req.ID, change.ExpectedVersion, req.Title, req.Description, req.RequestType, req.Priority, req.Status,
		req.AssignedTo, req.Notes, req.CancellationReason, req.AssignedAt,
		req.StartedAt, req.CompletedAt, req.CancelledAt, req.UpdatedAt,
	).Scan(&version)
	if err != nil {
		err = translate(fmt.Sprintf("maintenance request %s", req.ID), err)
		if domain.KindOf(err) != domain.KindNotFound {
			return err
		}
		var exists bool
		if qerr := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM maintenance_requests WHERE id = $1)`, req.ID); qerr != nil {
			return translate("check maintenance request", qerr)
		}
		if exists {
			return domain.ConflictError("maintenance request %s was modified concurrently", req.ID)
		}
		return err
	}

	if err := insertImages(ctx, tx, change.NewImages); err != nil {
		return err
	}
	if err := insertComments(ctx, tx, change.NewComments); err != nil {
		return err
	}
	if err := insertAudit(ctx, tx, change.Audit); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return translate("commit request change", err)
	}

	req.Version = version
	return nil
}

func (r *maintenanceRequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	var rows []struct {
		Status domain.RequestStatus `db:"status"`
		Count  int64                `db:"count"`
	}
	query := `SELECT status, COUNT(*) AS count FROM maintenance_requests GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, translate("count requests by status", err)
	}

	counts := make(map[domain.RequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *maintenanceRequestRepository) CountOpenByPriority(ctx context.Context, priority domain.Priority) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM maintenance_requests WHERE priority = $1 AND status NOT IN ('completed', 'cancelled')`
	if err := r.db.GetContext(ctx, &count, query, priority); err != nil {
		return 0, translate("count open requests", err)
	}
	return count, nil
}

func (r *maintenanceRequestRepository) GetLastActivityAt(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	if err := r.db.GetContext(ctx, &last, `SELECT MAX(updated_at) FROM maintenance_requests`); err != nil {
		return nil, translate("last request activity", err)
	}
	return last, nil
}

func insertImages(ctx context.Context, tx *sqlx.Tx, images []domain.RequestImage) error {
	query := `
		INSERT INTO maintenance_request_images (id, request_id, image_url, image_type, uploaded_by, description, uploaded_at, storage_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, img := range images {
		if _, err := tx.ExecContext(ctx, query,
			img.ID, img.RequestID, img.ImageURL, img.ImageType, img.UploadedBy,
			img.Description, img.UploadedAt, img.StoragePath,
		); err != nil {
			return translate("insert request image", err)
		}
	}
	return nil
}

func insertComments(ctx context.Context, tx *sqlx.Tx, comments []domain.Comment) error {
	query := `
		INSERT INTO maintenance_request_comments (id, request_id, content, author_id, author_name, author_role, is_internal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, c := range comments {
		if _, err := tx.ExecContext(ctx, query,
			c.ID, c.RequestID, c.Content, c.CreatedBy.ID, c.CreatedBy.Name, c.CreatedBy.Role,
			c.IsInternal, c.CreatedAt,
		); err != nil {
			return translate("insert request comment", err)
		}
	}
	return nil
}

func insertAudit(ctx context.Context, tx *sqlx.Tx, log *domain.AuditLog) error {
	if log == nil {
		return nil
	}
	query := `
		INSERT INTO audit_logs (id, user_id, user_name, user_role, action, entity_type, entity_id, old_value, new_value, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	err := tx.QueryRowxContext(ctx, query,
		log.ID, log.UserID, log.UserName, log.UserRole, log.Action, log.EntityType, log.EntityID,
		jsonArg(log.OldValue), jsonArg(log.NewValue), log.IPAddress, log.UserAgent,
	).Scan(&log.CreatedAt)
	return translate("insert audit log", err)
}
