package router

import (
	"github.com/anonto42/socialape/backend/internal/apperrors"
	"github.com/anonto42/socialape/backend/internal/handlers"
	"github.com/anonto42/socialape/backend/internal/middleware"
	"github.com/anonto42/socialape/backend/internal/services"
	"github.com/anonto42/socialape/backend/pkg/config"
	"github.com/anonto42/socialape/backend/pkg/log"
	"github.com/anonto42/socialape/backend/validators"
	"github.com/labstack/echo/v4"
)

// Dependencies are the services the routes are served by.
type Dependencies struct {
	Posts         *services.PostService
	Engagement    *services.EngagementService
	Users         *services.UserService
	Authenticator *middleware.Authenticator
}

// NewServer creates the echo instance with error handling, validation,
// global middleware and every route configured.
func NewServer(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e)
	SetupRoutes(e, deps)
	return e
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("")
	requireAuth := deps.Authenticator.Middleware()

	handlers.NewAuthHandler(deps.Users).RegisterAuthRoutes(api)
	log.Log.Debug("Auth routes configured.")

	handlers.NewPostHandler(deps.Posts).RegisterPostRoutes(api, requireAuth)
	handlers.NewLikeHandler(deps.Engagement).RegisterLikeRoutes(api, requireAuth)
	handlers.NewCommentHandler(deps.Engagement).RegisterCommentRoutes(api, requireAuth)
	log.Log.Debug("Post routes configured.")

	handlers.NewUserHandler(deps.Users).RegisterProfileRoutes(api, requireAuth)
	handlers.NewNotificationHandler(deps.Users).RegisterNotificationRoutes(api, requireAuth)
	log.Log.Debug("User routes configured.")

	log.Log.Info("All routes configured.")
}
