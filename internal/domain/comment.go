package domain

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	RequestID  uuid.UUID     `json:"request_id" db:"request_id"`
	Content    string        `json:"content" db:"content"`
	CreatedBy  CommentAuthor `json:"created_by" db:"-"`
	IsInternal bool          `json:"is_internal" db:"is_internal"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}

type CommentAuthor struct {
	ID   uuid.UUID `json:"id" db:"author_id"`
	Name string    `json:"name" db:"author_name"`
	Role Role      `json:"role" db:"author_role"`
}

type CreateCommentInput struct {
	Content    string `json:"content" validate:"required,min=1,max=2000"`
	IsInternal bool   `json:"is_internal"`
}
