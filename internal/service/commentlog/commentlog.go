// Package commentlog holds the append-only comment thread of a maintenance
// request. Visibility is decided when the thread is read, never when a
// comment is written.
package commentlog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"khrental/internal/domain"
)

const MaxContentLength = 2000

// Append builds a new comment. Content is trimmed and must not be empty.
func Append(content string, author domain.CommentAuthor, isInternal bool, now time.Time) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, domain.ValidationError("comment content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return domain.Comment{}, domain.ValidationError("comment exceeds %d characters", MaxContentLength)
	}

	return domain.Comment{
		ID:         uuid.New(),
		Content:    content,
		CreatedBy:  author,
		IsInternal: isInternal,
		CreatedAt:  now,
	}, nil
}

// VisibleTo returns the part of the thread role may read, keeping insertion
// order. The input is never modified.
func VisibleTo(comments []domain.Comment, role domain.Role) []domain.Comment {
	if role.CanSeeInternal() {
		return append([]domain.Comment{}, comments...)
	}

	visible := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		if !c.IsInternal {
			visible = append(visible, c)
		}
	}
	return visible
}
