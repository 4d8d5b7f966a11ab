package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	middleware "github.com/brandforge/content-engine/api/internal/middleware"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	payload := APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	return c.JSON(status, payload)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	payload := APIResponse{
		Status:  "error",
		Message: message,
	}
	return c.JSON(status, payload)
}

// internalError logs the underlying error under a correlation code and
// returns a generic 500 carrying only the code, so callers can quote it
// without the response leaking internals.
func internalError(c echo.Context, err error) error {
	code := uuid.NewString()[:8]
	log.Printf("level=error request_id=%s code=%s error=%q", middleware.RequestIDFromContext(c), code, err)
	return Error(c, http.StatusInternalServerError, fmt.Sprintf("internal error (code %s)", code))
}

// currentUserID parses the authenticated subject set by the JWT middleware.
func currentUserID(c echo.Context) (uuid.UUID, error) {
	value, _ := c.Get(middleware.ContextKeyUserID).(string)
	return uuid.Parse(value)
}
