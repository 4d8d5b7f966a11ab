package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brandforge/content-engine/api/internal/auth"
	"github.com/brandforge/content-engine/api/internal/config"
	"github.com/brandforge/content-engine/api/internal/entity"
	"github.com/brandforge/content-engine/api/internal/handler"
	middlewarepkg "github.com/brandforge/content-engine/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserAdminHandler
	Workflows *handler.WorkflowHandler
	Receivers *handler.ReceiverHandler
	Profile   *handler.ProfileHandler
	Posts     *handler.PostsHandler
	Billing   *handler.BillingHandler
	Admin     *handler.AdminHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, keyAuth middlewarepkg.APIKeyAuthenticator, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	// Receiver callbacks authenticate with workflow-scoped api keys, not
	// user tokens.
	receivers := e.Group("/api/receivers")
	receivers.POST("/brand-voice", handlers.Receivers.BrandVoice, middlewarepkg.APIKeyAuth(keyAuth, entity.WorkflowBrandVoice))
	receivers.POST("/mascot", handlers.Receivers.Mascot, middlewarepkg.APIKeyAuth(keyAuth, entity.WorkflowMascot))
	receivers.POST("/posts-collection", handlers.Receivers.PostsCollection, middlewarepkg.APIKeyAuth(keyAuth, entity.WorkflowPostsCollection))
	receivers.POST("/post-generation", handlers.Receivers.PostGeneration, middlewarepkg.APIKeyAuth(keyAuth, entity.WorkflowPostGeneration))

	secured := e.Group("/api")
	secured.Use(middlewarepkg.JWT(jwtManager))

	limiter := middlewarepkg.TriggerRateLimiter(cfg.RateLimitTrigger)
	workflows := secured.Group("/workflows")
	workflows.POST("/brand-voice", handlers.Workflows.TriggerBrandVoice, limiter)
	workflows.POST("/mascot", handlers.Workflows.TriggerMascot, limiter)
	workflows.POST("/posts-collection", handlers.Workflows.TriggerPostsCollection, limiter)
	workflows.POST("/post-generation", handlers.Workflows.TriggerPostGeneration, limiter)
	workflows.GET("/sessions/:id", handlers.Workflows.GetSession)
	workflows.GET("/:type/latest", handlers.Workflows.LatestSession)

	secured.GET("/profile", handlers.Profile.Get)
	secured.PATCH("/profile", handlers.Profile.Update)

	secured.GET("/posts", handlers.Posts.List)
	secured.PATCH("/posts/:id", handlers.Posts.Update)
	secured.POST("/posts/generate", handlers.Posts.Generate, limiter)

	secured.POST("/billing/checkout", handlers.Billing.CreateCheckoutSession)

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.GET("/webhooks", handlers.Admin.ListWebhookConfigs)
	admin.POST("/webhooks", handlers.Admin.CreateWebhookConfig)
	admin.PATCH("/webhooks/:id/active", handlers.Admin.ToggleWebhookConfig)
	admin.GET("/keys", handlers.Admin.ListAPIKeys)
	admin.POST("/keys", handlers.Admin.CreateAPIKey)
	admin.PATCH("/keys/:id/active", handlers.Admin.ToggleAPIKey)
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)
}
