package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"khrental/internal/domain"
)

const userColumns = `id, email, full_name, role, is_active, created_at, updated_at, deleted_at`

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByRoles(ctx context.Context, roles []domain.Role) ([]domain.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.FullName, user.Role, user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	return translate("insert user", err)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, translate(fmt.Sprintf("user %s", id), err)
	}
	return &user, nil
}

func (r *userRepository) GetByRoles(ctx context.Context, roles []domain.Role) ([]domain.User, error) {
	if len(roles) == 0 {
		return []domain.User{}, nil
	}

	roleStrings := make([]string, len(roles))
	for i, role := range roles {
		roleStrings[i] = string(role)
	}

	users := []domain.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE role = ANY($1) AND is_active AND deleted_at IS NULL ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &users, query, pq.Array(roleStrings)); err != nil {
		return nil, translate("list users by role", err)
	}
	return users, nil
}
