package domain

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceRequest struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	Title              string        `json:"title" db:"title"`
	Description        string        `json:"description" db:"description"`
	RequestType        string        `json:"request_type" db:"request_type"`
	Priority           Priority      `json:"priority" db:"priority"`
	Status             RequestStatus `json:"status" db:"status"`
	PropertyID         uuid.UUID     `json:"property_id" db:"property_id"`
	RenteeID           uuid.UUID     `json:"rentee_id" db:"rentee_id"`
	AssignedTo         *uuid.UUID    `json:"assigned_to,omitempty" db:"assigned_to"`
	Notes              *string       `json:"notes,omitempty" db:"notes"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	AssignedAt         *time.Time    `json:"assigned_at,omitempty" db:"assigned_at"`
	StartedAt          *time.Time    `json:"started_at,omitempty" db:"started_at"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
	Version            int64         `json:"version" db:"version"`

	Images   []RequestImage `json:"images" db:"-"`
	Comments []Comment      `json:"comments" db:"-"`
}

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusAssigned   RequestStatus = "assigned"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are legal.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityMedium    Priority = "medium"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return true
	default:
		return false
	}
}

// Clone returns a deep copy so a transition can be applied without touching
// the aggregate the caller fetched.
func (r *MaintenanceRequest) Clone() *MaintenanceRequest {
	c := *r
	c.AssignedTo = clonePtr(r.AssignedTo)
	c.Notes = clonePtr(r.Notes)
	c.CancellationReason = clonePtr(r.CancellationReason)
	c.AssignedAt = clonePtr(r.AssignedAt)
	c.StartedAt = clonePtr(r.StartedAt)
	c.CompletedAt = clonePtr(r.CompletedAt)
	c.CancelledAt = clonePtr(r.CancelledAt)
	c.Images = append([]RequestImage(nil), r.Images...)
	c.Comments = append([]Comment(nil), r.Comments...)
	return &c
}

func (r *MaintenanceRequest) IsAssignedTo(userID uuid.UUID) bool {
	return r.AssignedTo != nil && *r.AssignedTo == userID
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type CreateMaintenanceRequestInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	RequestType string     `json:"request_type" validate:"max=100"`
	Priority    Priority   `json:"priority" validate:"omitempty,oneof=low medium high emergency"`
	PropertyID  uuid.UUID  `json:"property_id" validate:"required"`
	RenteeID    *uuid.UUID `json:"rentee_id,omitempty"`
}

type AssignInput struct {
	StaffID uuid.UUID `json:"staff_id" validate:"required"`
}

type CancelInput struct {
	Reason string `json:"reason" validate:"required"`
}

type MaintenanceRequestFilter struct {
	Status     *RequestStatus
	PropertyID *uuid.UUID
	RenteeID   *uuid.UUID
	AssignedTo *uuid.UUID
}
