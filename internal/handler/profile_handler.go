package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brandforge/content-engine/api/internal/dto"
	"github.com/brandforge/content-engine/api/internal/repository"
	"github.com/brandforge/content-engine/api/internal/service"
)

// ProfileHandler exposes the caller's company profile.
type ProfileHandler struct {
	profiles *service.ProfilesService
}

// NewProfileHandler constructs a handler instance.
func NewProfileHandler(profiles *service.ProfilesService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	profile, err := h.profiles.GetProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return Error(c, http.StatusNotFound, "company profile not found")
		}
		return internalError(c, err)
	}
	return Success(c, http.StatusOK, "profile retrieved", profile)
}

// Update handles PATCH /api/profile.
func (h *ProfileHandler) Update(c echo.Context) error {
	var req dto.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	profile, err := h.profiles.UpdateProfile(c.Request().Context(), userID, req)
	if err != nil {
		var validation service.ValidationError
		switch {
		case errors.As(err, &validation):
			return Error(c, http.StatusBadRequest, validation.Message)
		case errors.Is(err, repository.ErrProfileNotFound):
			return Error(c, http.StatusNotFound, "company profile not found")
		default:
			return internalError(c, err)
		}
	}
	return Success(c, http.StatusOK, "profile updated", profile)
}
