package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const EntityMaintenanceRequest = "MAINTENANCE_REQUEST"

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	UserName   *string         `json:"user_name,omitempty" db:"user_name"`
	UserRole   *string         `json:"user_role,omitempty" db:"user_role"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	OldValue   json.RawMessage `json:"old_value,omitempty" db:"old_value"`
	NewValue   json.RawMessage `json:"new_value,omitempty" db:"new_value"`
	IPAddress  *string         `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string         `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// RequestMeta carries the caller's network details into audit rows.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// NewAuditLog builds an audit row for a maintenance request mutation.
func NewAuditLog(actor Actor, action string, requestID uuid.UUID, oldValue, newValue any, meta *RequestMeta) *AuditLog {
	oldJSON, _ := json.Marshal(oldValue)
	newJSON, _ := json.Marshal(newValue)

	name := actor.Name
	role := string(actor.Role)
	log := &AuditLog{
		ID:         uuid.New(),
		UserID:     actor.ID,
		UserName:   &name,
		UserRole:   &role,
		Action:     action,
		EntityType: EntityMaintenanceRequest,
		EntityID:   requestID,
		OldValue:   oldJSON,
		NewValue:   newJSON,
	}

	if meta != nil {
		if meta.IPAddress != "" {
			log.IPAddress = &meta.IPAddress
		}
		if meta.UserAgent != "" {
			log.UserAgent = &meta.UserAgent
		}
	}

	return log
}
