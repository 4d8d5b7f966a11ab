package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/brandforge/content-engine/api/internal/dto"
	"github.com/brandforge/content-engine/api/internal/repository"
	"github.com/brandforge/content-engine/api/internal/service"
)

// AdminHandler exposes the webhook configuration registry and the api key
// store. All routes require the admin role.
type AdminHandler struct {
	webhooks *service.WebhooksService
	apiKeys  *service.APIKeysService
}

// NewAdminHandler constructs a handler instance.
func NewAdminHandler(webhooks *service.WebhooksService, apiKeys *service.APIKeysService) *AdminHandler {
	return &AdminHandler{webhooks: webhooks, apiKeys: apiKeys}
}

// ListWebhookConfigs handles GET /api/admin/webhooks.
func (h *AdminHandler) ListWebhookConfigs(c echo.Context) error {
	configs, err := h.webhooks.ListConfigs(c.Request().Context())
	if err != nil {
		return internalError(c, err)
	}
	return Success(c, http.StatusOK, "webhook configurations retrieved", configs)
}

// CreateWebhookConfig handles POST /api/admin/webhooks. A new version is
// appended; existing versions stay untouched.
func (h *AdminHandler) CreateWebhookConfig(c echo.Context) error {
	var req dto.CreateWebhookConfigRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	cfg, err := h.webhooks.CreateConfig(c.Request().Context(), req)
	if err != nil {
		var validation service.ValidationError
		if errors.As(err, &validation) {
			return Error(c, http.StatusBadRequest, validation.Message)
		}
		return internalError(c, err)
	}
	return Success(c, http.StatusCreated, "webhook configuration created", cfg)
}

// ToggleWebhookConfig handles PATCH /api/admin/webhooks/:id/active.
func (h *AdminHandler) ToggleWebhookConfig(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid configuration id")
	}
	active, err := strconv.ParseBool(c.QueryParam("active"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "active query parameter must be true or false")
	}

	cfg, err := h.webhooks.ToggleConfig(c.Request().Context(), id, active)
	if err != nil {
		if errors.Is(err, repository.ErrWebhookConfigNotFound) {
			return Error(c, http.StatusNotFound, "webhook configuration not found")
		}
		return internalError(c, err)
	}
	return Success(c, http.StatusOK, "webhook configuration updated", dto.ToggleResponse{
		ID:       cfg.ID.String(),
		IsActive: cfg.IsActive,
	})
}

// ListAPIKeys handles GET /api/admin/keys. Secrets are never included.
func (h *AdminHandler) ListAPIKeys(c echo.Context) error {
	keys, err := h.apiKeys.ListKeys(c.Request().Context())
	if err != nil {
		return internalError(c, err)
	}
	return Success(c, http.StatusOK, "api keys retrieved", keys)
}

// CreateAPIKey handles POST /api/admin/keys. The response is the only time
// the secret is visible.
func (h *AdminHandler) CreateAPIKey(c echo.Context) error {
	var req dto.CreateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	key, secret, err := h.apiKeys.CreateKey(c.Request().Context(), req)
	if err != nil {
		var validation service.ValidationError
		if errors.As(err, &validation) {
			return Error(c, http.StatusBadRequest, validation.Message)
		}
		return internalError(c, err)
	}
	return Success(c, http.StatusCreated, "api key created", dto.CreateAPIKeyResponse{
		ID:       key.ID.String(),
		KeyName:  key.KeyName,
		APIKey:   secret,
		Workflow: string(key.WorkflowType),
	})
}

// ToggleAPIKey handles PATCH /api/admin/keys/:id/active.
func (h *AdminHandler) ToggleAPIKey(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid key id")
	}
	active, err := strconv.ParseBool(c.QueryParam("active"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "active query parameter must be true or false")
	}

	key, err := h.apiKeys.ToggleKey(c.Request().Context(), id, active)
	if err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return Error(c, http.StatusNotFound, "api key not found")
		}
		return internalError(c, err)
	}
	return Success(c, http.StatusOK, "api key updated", dto.ToggleResponse{
		ID:       key.ID.String(),
		IsActive: key.IsActive,
	})
}
