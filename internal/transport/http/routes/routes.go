package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/port"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/infra/config"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/transport/http/handlers"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/transport/http/middleware"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/usecase"
)

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	SyncLimiter port.RateLimiter
	Sync        *usecase.SyncService
	Metrics     *middleware.HTTPMetrics
	Cache       CacheChecker
}

// CacheChecker exposes readiness behaviour for the shared store.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.Metrics.Handler())

	healthOptions := make([]handlers.HealthOption, 0, 1)
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		syncHandler := handlers.NewSyncHandler(deps.Sync, deps.Logger)

		syncGroup := api.Group("/progress")
		syncGroup.Use(middleware.RateLimit(deps.SyncLimiter, deps.Logger))
		syncGroup.GET("/sync", syncHandler.Fetch)
		syncGroup.POST("/sync", syncHandler.Submit)
	}

	return r
}
