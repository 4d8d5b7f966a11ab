package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/brandforge/content-engine/api/internal/dto"
	"github.com/brandforge/content-engine/api/internal/entity"
	middleware "github.com/brandforge/content-engine/api/internal/middleware"
	"github.com/brandforge/content-engine/api/internal/repository"
	"github.com/brandforge/content-engine/api/internal/service"
)

// WorkflowHandler exposes the trigger endpoints and session reads for the
// asynchronous workflows.
type WorkflowHandler struct {
	workflows *service.WorkflowService
}

// NewWorkflowHandler constructs a handler instance.
func NewWorkflowHandler(workflows *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows}
}

// TriggerBrandVoice handles POST /api/workflows/brand-voice.
func (h *WorkflowHandler) TriggerBrandVoice(c echo.Context) error {
	var req dto.BrandVoiceRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	session, err := h.workflows.TriggerBrandVoice(c.Request().Context(), userID, middleware.RequestIDFromContext(c), req)
	if err != nil {
		return h.triggerError(c, err)
	}
	return triggered(c, session, "brand voice analysis started")
}

// TriggerMascot handles POST /api/workflows/mascot.
func (h *WorkflowHandler) TriggerMascot(c echo.Context) error {
	var req dto.MascotRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	session, err := h.workflows.TriggerMascot(c.Request().Context(), userID, middleware.RequestIDFromContext(c), req)
	if err != nil {
		return h.triggerError(c, err)
	}
	return triggered(c, session, "mascot generation started")
}

// TriggerPostsCollection handles POST /api/workflows/posts-collection.
func (h *WorkflowHandler) TriggerPostsCollection(c echo.Context) error {
	var req dto.PostsCollectionRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	session, err := h.workflows.TriggerPostsCollection(c.Request().Context(), userID, middleware.RequestIDFromContext(c), req)
	if err != nil {
		return h.triggerError(c, err)
	}
	return triggered(c, session, "posts collection started")
}

// TriggerPostGeneration handles POST /api/workflows/post-generation.
func (h *WorkflowHandler) TriggerPostGeneration(c echo.Context) error {
	var req dto.PostGenerationRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	session, err := h.workflows.TriggerPostGeneration(c.Request().Context(), userID, middleware.RequestIDFromContext(c), req)
	if err != nil {
		return h.triggerError(c, err)
	}
	return triggered(c, session, "post generation started")
}

// GetSession handles GET /api/workflows/sessions/:id. Clients poll this
// endpoint until the session reaches a terminal status.
func (h *WorkflowHandler) GetSession(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid session id")
	}

	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	session, err := h.workflows.GetSession(c.Request().Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return Error(c, http.StatusNotFound, "session not found")
		}
		return internalError(c, err)
	}
	return Success(c, http.StatusOK, "session retrieved", session)
}

// LatestSession handles GET /api/workflows/:type/latest.
func (h *WorkflowHandler) LatestSession(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	session, err := h.workflows.LatestSession(c.Request().Context(), userID, entity.WorkflowType(c.Param("type")))
	if err != nil {
		var validation service.ValidationError
		switch {
		case errors.As(err, &validation):
			return Error(c, http.StatusBadRequest, validation.Message)
		case errors.Is(err, repository.ErrSessionNotFound):
			return Error(c, http.StatusNotFound, "session not found")
		default:
			return internalError(c, err)
		}
	}
	return Success(c, http.StatusOK, "session retrieved", session)
}

func (h *WorkflowHandler) triggerError(c echo.Context, err error) error {
	var validation service.ValidationError
	switch {
	case errors.As(err, &validation):
		return Error(c, http.StatusBadRequest, validation.Message)
	case errors.Is(err, service.ErrWorkflowNotConfigured):
		return Error(c, http.StatusServiceUnavailable, "webhook not configured")
	case errors.Is(err, service.ErrDispatchFailed):
		return Error(c, http.StatusBadGateway, "failed to reach workflow engine")
	default:
		return internalError(c, err)
	}
}

func triggered(c echo.Context, session *entity.WorkflowSession, message string) error {
	return c.JSON(http.StatusOK, dto.TriggerResponse{
		Success:   true,
		SessionID: session.ID,
		Message:   message,
	})
}
