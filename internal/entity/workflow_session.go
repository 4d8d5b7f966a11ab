package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WorkflowType identifies a category of asynchronous generation work executed
// by the external workflow engine.
type WorkflowType string

const (
	WorkflowBrandVoice      WorkflowType = "brand_voice_analysis"
	WorkflowMascot          WorkflowType = "mascot_generation"
	WorkflowPostsCollection WorkflowType = "posts_collection"
	WorkflowPostGeneration  WorkflowType = "post_generation"
)

// Valid reports whether the workflow type is one of the known kinds.
func (t WorkflowType) Valid() bool {
	switch t {
	case WorkflowBrandVoice, WorkflowMascot, WorkflowPostsCollection, WorkflowPostGeneration:
		return true
	}
	return false
}

// SessionStatus is the lifecycle state of a workflow session.
type SessionStatus string

const (
	StatusProcessing SessionStatus = "processing"
	StatusCompleted  SessionStatus = "completed"
	StatusError      SessionStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// WorkflowSession tracks one invocation of an asynchronous workflow. There is
// at most one row per (user, workflow type); re-triggering supersedes the
// previous invocation in place.
type WorkflowSession struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	WorkflowType     WorkflowType    `json:"workflow_type"`
	CompanyProfileID *uuid.UUID      `json:"company_profile_id,omitempty"`
	WebhookConfigID  uuid.UUID       `json:"webhook_config_id"`
	Status           SessionStatus   `json:"status"`
	SessionData      json.RawMessage `json:"session_data,omitempty"`
	ErrorMessage     *string         `json:"error_message,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}
