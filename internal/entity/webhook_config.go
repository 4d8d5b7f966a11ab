package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WebhookConfiguration is one immutable version of the routing entry for a
// workflow type. Admin edits append a new version instead of mutating in
// place; each session pins the version that was active when it started, so
// in-flight work is unaffected by later edits.
type WebhookConfiguration struct {
	ID                 uuid.UUID         `json:"id"`
	WorkflowType       WorkflowType      `json:"workflow_type"`
	Version            int               `json:"version"`
	InboundEndpoint    string            `json:"inbound_endpoint"`
	OutboundWebhookURL string            `json:"outbound_webhook_url"`
	FieldMappings      map[string]string `json:"field_mappings"`
	ExpectedPayload    json.RawMessage   `json:"expected_payload,omitempty"`
	Documentation      *string           `json:"documentation,omitempty"`
	IsActive           bool              `json:"is_active"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}
