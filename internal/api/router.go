package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/taskboxhq/taskbox/internal/auth"
	"github.com/taskboxhq/taskbox/internal/cache"
	"github.com/taskboxhq/taskbox/internal/handlers"
	"github.com/taskboxhq/taskbox/internal/middleware"
	"github.com/taskboxhq/taskbox/internal/services"
	"github.com/taskboxhq/taskbox/internal/tasks"
	"github.com/taskboxhq/taskbox/pkg/mail"
)

// Config wires the dependencies and feature toggles for the HTTP router.
type Config struct {
	DB         *gorm.DB
	Store      cache.Store
	JWT        *auth.JWTService
	Mailer     mail.Mailer
	Dispatcher *tasks.Dispatcher

	OTPCodeLength int
	OTPTTL        time.Duration
	ExposeOTPCode bool

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	MetricsEnabled  bool
	MetricsEndpoint string
	HealthEnabled   bool

	Debug   bool
	Version string
}

// NewRouter assembles the full HTTP surface: middleware stack, operational
// endpoints and the versioned API routes.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.CORS(),
	)
	if cfg.RateLimitEnabled && cfg.Store != nil {
		router.Use(middleware.RateLimit(cfg.Store, middleware.RateLimitConfig{
			Requests: cfg.RateLimitRequests,
			Window:   cfg.RateLimitWindow,
		}))
	}

	if cfg.HealthEnabled {
		health := handlers.NewHealthHandler(cfg.DB, cfg.Version)
		router.GET("/health", health.Check)
	}
	if cfg.MetricsEnabled {
		endpoint := cfg.MetricsEndpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		router.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	todoService := services.NewTodoService(cfg.DB)
	userService := services.NewUserService(cfg.DB)
	activityService := services.NewActivityService(cfg.DB)
	otpService := services.NewOTPService(cfg.Store, cfg.OTPCodeLength, cfg.OTPTTL)

	todoHandler := handlers.NewTodoHandler(todoService, activityService, cfg.Dispatcher)
	userHandler := handlers.NewUserHandler(userService, activityService, cfg.Dispatcher)
	authHandler := handlers.NewAuthHandler(userService, cfg.JWT, activityService, cfg.Dispatcher)
	otpHandler := handlers.NewOTPHandler(otpService, cfg.Mailer, activityService, cfg.Dispatcher, cfg.ExposeOTPCode)

	apiGroup := router.Group("/api")

	registerAuthRoutes(apiGroup, authHandler, otpHandler)
	registerUserRoutes(apiGroup, userHandler, cfg.JWT)
	registerTodoRoutes(apiGroup, todoHandler, cfg.JWT)

	return router
}
