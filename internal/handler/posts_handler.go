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

// PostsHandler exposes the posts library and the synchronous generator.
type PostsHandler struct {
	posts *service.PostsService
}

// NewPostsHandler constructs a handler instance.
func NewPostsHandler(posts *service.PostsService) *PostsHandler {
	return &PostsHandler{posts: posts}
}

// List handles GET /api/posts.
func (h *PostsHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	filter := dto.PostListFilter{
		Platform: c.QueryParam("platform"),
		Status:   c.QueryParam("status"),
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))

	records, err := h.posts.ListPosts(c.Request().Context(), userID, filter)
	if err != nil {
		return internalError(c, err)
	}
	return Success(c, http.StatusOK, "posts retrieved", records)
}

// Update handles PATCH /api/posts/:id.
func (h *PostsHandler) Update(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid post id")
	}

	var req dto.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	post, err := h.posts.UpdatePost(c.Request().Context(), postID, userID, req)
	if err != nil {
		var validation service.ValidationError
		switch {
		case errors.As(err, &validation):
			return Error(c, http.StatusBadRequest, validation.Message)
		case errors.Is(err, repository.ErrPostNotFound):
			return Error(c, http.StatusNotFound, "post not found")
		default:
			return internalError(c, err)
		}
	}
	return Success(c, http.StatusOK, "post updated", post)
}

// Generate handles POST /api/posts/generate, the synchronous path.
func (h *PostsHandler) Generate(c echo.Context) error {
	var req dto.PostGenerationRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	posts, err := h.posts.GenerateNow(c.Request().Context(), userID, req)
	if err != nil {
		var validation service.ValidationError
		switch {
		case errors.As(err, &validation):
			return Error(c, http.StatusBadRequest, validation.Message)
		case errors.Is(err, service.ErrGenerationUnavailable):
			return Error(c, http.StatusServiceUnavailable, "post generation is not configured")
		default:
			return internalError(c, err)
		}
	}
	return Success(c, http.StatusCreated, "posts generated", posts)
}
