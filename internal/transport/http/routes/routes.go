package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/port"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/config"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/handlers"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/middleware"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Establishments *usecase.EstablishmentService
	Interventions  *usecase.InterventionService
	Sync           *usecase.SyncRegistry
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Verifier middleware.TokenVerifier
	Users    port.UserRepository
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext(deps.Config.App.Name))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if origin := deps.Config.App.PublicOrigin; origin != "" {
		r.Use(middleware.CORS([]string{origin}))
	}
	r.Use(deps.Metrics.Handler())

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	} else {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	if deps.Verifier == nil || deps.Users == nil {
		deps.Logger.Warn("identity verification not configured, API routes disabled")
		return r
	}

	api := r.Group("/api/v1")
	api.Use(middleware.RequireAuth(deps.Verifier, deps.Users))
	{
		establishmentHandler := handlers.NewEstablishmentHandler(deps.Services.Establishments)
		establishmentHandler.RegisterRoutes(api.Group("/establishments"))

		interventionHandler := handlers.NewInterventionHandler(deps.Services.Interventions)
		interventionHandler.RegisterRoutes(api.Group("/interventions"))

		syncHandler := handlers.NewSyncHandler(deps.Services.Sync, deps.Services.Establishments)
		syncHandler.RegisterRoutes(api.Group("/sync"), buildForceSyncMiddlewares(deps)...)
	}

	return r
}

func buildForceSyncMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.Config == nil {
		return nil
	}

	limit := deps.Config.Sync.ForceRatePerMinute
	if limit <= 0 {
		return nil
	}

	limiter := middleware.NewRateLimiter("force_sync_user", limit, middleware.AuthenticatedUserIdentifier(), deps.Logger)
	return []gin.HandlerFunc{limiter.Handler()}
}
