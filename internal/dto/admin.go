package dto

import "encoding/json"

// CreateWebhookConfigRequest registers a new configuration version for a
// workflow type. Existing versions are never edited in place.
type CreateWebhookConfigRequest struct {
	WorkflowType       string            `json:"workflow_type"`
	InboundEndpoint    string            `json:"inbound_endpoint"`
	OutboundWebhookURL string            `json:"outbound_webhook_url"`
	FieldMappings      map[string]string `json:"field_mappings,omitempty"`
	ExpectedPayload    json.RawMessage   `json:"expected_payload,omitempty"`
	Documentation      *string           `json:"documentation,omitempty"`
}

// CreateAPIKeyRequest provisions a new receiver credential.
type CreateAPIKeyRequest struct {
	KeyName      string `json:"key_name"`
	WorkflowType string `json:"workflow_type"`
	Write        bool   `json:"write"`
}

// CreateAPIKeyResponse returns the secret exactly once, at creation time.
type CreateAPIKeyResponse struct {
	ID       string `json:"id"`
	KeyName  string `json:"key_name"`
	APIKey   string `json:"api_key"`
	Workflow string `json:"workflow_type"`
}

// ToggleResponse reports the new active state after a toggle.
type ToggleResponse struct {
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`
}
