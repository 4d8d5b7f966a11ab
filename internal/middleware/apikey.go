package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brandforge/content-engine/api/internal/entity"
)

// APIKeyAuthenticator resolves an api key secret scoped to a workflow type.
type APIKeyAuthenticator interface {
	Authenticate(ctx context.Context, secret string, wt entity.WorkflowType) (*entity.APIKey, error)
}

// APIKeyAuth guards a receiver endpoint with the x-api-key header. The key
// must be active and scoped to the endpoint's workflow type; every failure
// mode gets the same response.
func APIKeyAuth(auth APIKeyAuthenticator, wt entity.WorkflowType) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			secret := c.Request().Header.Get("x-api-key")
			if secret == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "API key required"})
			}

			key, err := auth.Authenticate(c.Request().Context(), secret, wt)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid API key"})
			}

			c.Set(ContextKeyAPIKeyID, key.ID.String())
			return next(c)
		}
	}
}
