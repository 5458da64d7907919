package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Type      EventType       `json:"type" db:"type"`
	Title     string          `json:"title" db:"title"`
	Message   string          `json:"message" db:"message"`
	Data      json.RawMessage `json:"data,omitempty" db:"data"`
	IsRead    bool            `json:"is_read" db:"is_read"`
	ReadAt    *time.Time      `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventRequestCreated   EventType = "request.created"
	EventRequestAssigned  EventType = "request.assigned"
	EventRequestStarted   EventType = "request.started"
	EventRequestCompleted EventType = "request.completed"
	EventRequestCancelled EventType = "request.cancelled"
	EventCommentAdded     EventType = "request.comment_added"
	EventImagesAdded      EventType = "request.images_added"
)

// Event is what the lifecycle hands to the notifier after a successful
// mutation. Request is a snapshot; the notifier must not write it back.
type Event struct {
	Type     EventType
	Actor    Actor
	Request  *MaintenanceRequest
	Comment  *Comment
	Images   int
	Occurred time.Time
}
