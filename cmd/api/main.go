package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	openai "github.com/sashabaranov/go-openai"

	"github.com/brandforge/content-engine/api/internal/auth"
	"github.com/brandforge/content-engine/api/internal/config"
	"github.com/brandforge/content-engine/api/internal/database"
	"github.com/brandforge/content-engine/api/internal/handler"
	middlewarepkg "github.com/brandforge/content-engine/api/internal/middleware"
	"github.com/brandforge/content-engine/api/internal/repository"
	"github.com/brandforge/content-engine/api/internal/router"
	"github.com/brandforge/content-engine/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool)
	sessionsRepo := repository.NewPGXSessionsRepository(pool)
	profilesRepo := repository.NewPGXProfilesRepository(pool)
	postsRepo := repository.NewPGXPostsRepository(pool)
	configsRepo := repository.NewPGXWebhookConfigsRepository(pool)
	apiKeysRepo := repository.NewPGXAPIKeysRepository(pool)

	normalizer := service.NewLinkNormalizer()
	dispatcher := handler.NewWebhookClient(nil, cfg.WebhookTimeout)

	var completer service.ChatCompleter
	if cfg.OpenAIAPIKey != "" {
		completer = openai.NewClient(cfg.OpenAIAPIKey)
	}

	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)
	workflowService := service.NewWorkflowService(sessionsRepo, profilesRepo, postsRepo, configsRepo, dispatcher, normalizer)
	profilesService := service.NewProfilesService(profilesRepo, normalizer)
	postsService := service.NewPostsService(postsRepo, profilesRepo, completer)
	webhooksService := service.NewWebhooksService(configsRepo)
	apiKeysService := service.NewAPIKeysService(apiKeysRepo)
	billingService := service.NewBillingService(cfg.StripeSecretKey, cfg.CheckoutSuccess, cfg.CheckoutCancel)

	reaper := service.NewSessionReaper(sessionsRepo, cfg.ReaperInterval, cfg.WorkflowTimeout)
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go reaper.Run(reaperCtx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, apiKeysService, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserAdminHandler(userService),
		Workflows: handler.NewWorkflowHandler(workflowService),
		Receivers: handler.NewReceiverHandler(workflowService),
		Profile:   handler.NewProfileHandler(profilesService),
		Posts:     handler.NewPostsHandler(postsService),
		Billing:   handler.NewBillingHandler(billingService),
		Admin:     handler.NewAdminHandler(webhooksService, apiKeysService),
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	stopReaper()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
