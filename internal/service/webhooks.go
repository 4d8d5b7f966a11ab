package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/brandforge/content-engine/api/internal/dto"
	"github.com/brandforge/content-engine/api/internal/entity"
	"github.com/brandforge/content-engine/api/internal/repository"
)

// WebhooksService manages the versioned routing registry for workflow types.
type WebhooksService struct {
	repo repository.WebhookConfigsRepository
}

// NewWebhooksService creates a new instance of WebhooksService.
func NewWebhooksService(repo repository.WebhookConfigsRepository) *WebhooksService {
	return &WebhooksService{repo: repo}
}

// ListConfigs returns every configuration version, newest first.
func (s *WebhooksService) ListConfigs(ctx context.Context) ([]entity.WebhookConfiguration, error) {
	return s.repo.List(ctx)
}

// ActiveConfig returns the version triggers would resolve right now.
func (s *WebhooksService) ActiveConfig(ctx context.Context, wt entity.WorkflowType) (*entity.WebhookConfiguration, error) {
	if !wt.Valid() {
		return nil, ValidationError{Message: fmt.Sprintf("unknown workflow type %q", wt)}
	}
	return s.repo.ActiveByType(ctx, wt)
}

// CreateConfig appends a new active version for the workflow type. In-flight
// sessions keep the version they were pinned to.
func (s *WebhooksService) CreateConfig(ctx context.Context, req dto.CreateWebhookConfigRequest) (*entity.WebhookConfiguration, error) {
	wt := entity.WorkflowType(req.WorkflowType)
	if !wt.Valid() {
		return nil, ValidationError{Message: fmt.Sprintf("unknown workflow type %q", req.WorkflowType)}
	}
	if !strings.HasPrefix(req.InboundEndpoint, "/") {
		return nil, ValidationError{Message: "inbound_endpoint must be an absolute path"}
	}
	outbound, err := sanitizeURL(req.OutboundWebhookURL)
	if err != nil {
		return nil, ValidationError{Message: "outbound_webhook_url is not a valid URL"}
	}

	return s.repo.CreateVersion(ctx, &entity.WebhookConfiguration{
		WorkflowType:       wt,
		InboundEndpoint:    req.InboundEndpoint,
		OutboundWebhookURL: outbound.String(),
		FieldMappings:      req.FieldMappings,
		ExpectedPayload:    req.ExpectedPayload,
		Documentation:      req.Documentation,
	})
}

// ToggleConfig flips one version's active flag.
func (s *WebhooksService) ToggleConfig(ctx context.Context, id uuid.UUID, active bool) (*entity.WebhookConfiguration, error) {
	return s.repo.SetActive(ctx, id, active)
}
