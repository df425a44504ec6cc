package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/temporahq/tempora/internal/auth"
	"github.com/temporahq/tempora/internal/handlers"
	"github.com/temporahq/tempora/internal/middleware"
	"github.com/temporahq/tempora/internal/notifications"
	"github.com/temporahq/tempora/internal/services"
)

// Deps bundles the shared dependencies the router wires into handlers.
type Deps struct {
	DB      *gorm.DB
	JWT     *iauth.JWTService
	Hub     *notifications.Hub
	Version string
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Hub == nil {
		deps.Hub = notifications.NewHub()
	}

	userSvc, err := services.NewUserService(deps.DB)
	if err != nil {
		return nil, err
	}
	notificationSvc, err := services.NewNotificationService(deps.DB, deps.Hub)
	if err != nil {
		return nil, err
	}
	eventSvc, err := services.NewEventService(deps.DB, deps.Hub)
	if err != nil {
		return nil, err
	}
	categorySvc, err := services.NewCategoryService(deps.DB)
	if err != nil {
		return nil, err
	}
	attendeeSvc, err := services.NewAttendeeService(deps.DB, notificationSvc)
	if err != nil {
		return nil, err
	}
	preferenceSvc, err := services.NewPreferenceService(deps.DB)
	if err != nil {
		return nil, err
	}
	teamSvc, err := services.NewTeamService(deps.DB)
	if err != nil {
		return nil, err
	}
	analyticsSvc, err := services.NewAnalyticsService(deps.DB)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	// Health endpoint (public)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Version)
	r.GET("/health", healthHandler.Health)

	authHandler := handlers.NewAuthHandler(userSvc, deps.JWT)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(deps.JWT))

	api.GET("/auth/me", authHandler.Me)

	registerUserRoutes(api, handlers.NewUserHandler(userSvc))
	registerEventRoutes(api,
		handlers.NewEventHandler(eventSvc),
		handlers.NewAttendeeHandler(attendeeSvc),
		handlers.NewPreferenceHandler(preferenceSvc))
	registerCategoryRoutes(api, handlers.NewCategoryHandler(categorySvc))
	registerTeamRoutes(api, handlers.NewTeamHandler(teamSvc))
	registerNotificationRoutes(api, handlers.NewNotificationHandler(notificationSvc, deps.Hub))
	registerAnalyticsRoutes(api, handlers.NewAnalyticsHandler(analyticsSvc))

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
