package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brandforge/content-engine/api/internal/entity"
	"github.com/brandforge/content-engine/api/internal/repository"
	"github.com/brandforge/content-engine/api/internal/service"
)

// ReceiverHandler accepts result callbacks from the workflow engine. One
// endpoint per workflow kind; the API-key middleware has already checked the
// caller is scoped to that kind.
type ReceiverHandler struct {
	workflows *service.WorkflowService
}

// NewReceiverHandler constructs a handler instance.
func NewReceiverHandler(workflows *service.WorkflowService) *ReceiverHandler {
	return &ReceiverHandler{workflows: workflows}
}

// BrandVoice handles POST /api/receivers/brand-voice.
func (h *ReceiverHandler) BrandVoice(c echo.Context) error {
	return h.receive(c, entity.WorkflowBrandVoice)
}

// Mascot handles POST /api/receivers/mascot.
func (h *ReceiverHandler) Mascot(c echo.Context) error {
	return h.receive(c, entity.WorkflowMascot)
}

// PostsCollection handles POST /api/receivers/posts-collection.
func (h *ReceiverHandler) PostsCollection(c echo.Context) error {
	return h.receive(c, entity.WorkflowPostsCollection)
}

// PostGeneration handles POST /api/receivers/post-generation.
func (h *ReceiverHandler) PostGeneration(c echo.Context) error {
	return h.receive(c, entity.WorkflowPostGeneration)
}

func (h *ReceiverHandler) receive(c echo.Context, kind entity.WorkflowType) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read request body"})
	}

	outcome, err := h.workflows.Receive(c.Request().Context(), kind, body)
	if err != nil {
		var validation service.ValidationError
		switch {
		case errors.As(err, &validation):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": validation.Message})
		case errors.Is(err, repository.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
		default:
			return internalError(c, err)
		}
	}

	response := map[string]any{
		"success":    true,
		"session_id": outcome.Session.ID,
		"status":     outcome.Session.Status,
	}
	if outcome.AlreadyProcessed {
		response["message"] = "session already processed"
	}
	return c.JSON(http.StatusOK, response)
}
