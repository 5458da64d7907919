package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	FullName  string     `json:"full_name" db:"full_name"`
	Role      Role       `json:"role" db:"role"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleStaff       Role = "staff"
	RoleMaintenance Role = "maintenance"
	RoleRentee      Role = "rentee"
	RoleRequester   Role = "requester"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleMaintenance, RoleRentee, RoleRequester:
		return true
	default:
		return false
	}
}

// IsStaff covers both staff and maintenance crew; they share one rule set.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleMaintenance
}

// CanSeeInternal reports whether internal comments are visible to the role.
func (r Role) CanSeeInternal() bool {
	return r == RoleAdmin || r.IsStaff()
}

// Actor is the authenticated party invoking an operation.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role Role      `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
