package entity

import (
	"time"

	"github.com/google/uuid"
)

// APIKeyPermissions bundles the coarse rights granted to a key.
type APIKeyPermissions struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
	Admin bool `json:"admin"`
}

// APIKey is a bearer secret presented by the external workflow engine on
// receiver callbacks. Keys are scoped to one workflow type and are
// deactivated, never deleted, to revoke access.
type APIKey struct {
	ID           uuid.UUID         `json:"id"`
	KeyName      string            `json:"key_name"`
	Key          string            `json:"-"`
	WorkflowType WorkflowType      `json:"workflow_type"`
	Permissions  APIKeyPermissions `json:"permissions"`
	IsActive     bool              `json:"is_active"`
	LastUsedAt   *time.Time        `json:"last_used_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
