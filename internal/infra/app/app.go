package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/port"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/infra/config"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/infra/logger"
	redisinfra "github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/infra/redis"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/ratelimit"
	redisrepo "github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/repository/redis"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/transport/http/middleware"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/transport/http/routes"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	redis  *redisinfra.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	syncPolicy := domain.RateLimitPolicy{
		MaxRequests:          cfg.RateLimit.SyncMaxRequests,
		Window:               cfg.RateLimit.SyncWindow,
		DailyLimit:           cfg.RateLimit.SyncDailyLimit,
		MaxTrackedIdentities: cfg.RateLimit.MaxTrackedIdentities,
	}
	globalPolicy := domain.GlobalRateLimitPolicy{
		MaxRequests: cfg.RateLimit.GlobalMaxRequests,
		Window:      cfg.RateLimit.GlobalWindow,
	}

	limiterMetrics, err := ratelimit.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("init rate limit metrics: %w", err)
	}

	localLimiter := ratelimit.NewLocalLimiter(syncPolicy, globalPolicy)

	var (
		syncLimiter port.RateLimiter = localLimiter
		redisClient *redisinfra.Client
		syncService *usecase.SyncService
		cache       routes.CacheChecker
	)

	if cfg.Redis.Addr != "" {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}

		primary := ratelimit.NewRedisLimiter(redisClient.Client(), "sync", syncPolicy, globalPolicy)
		syncLimiter = ratelimit.NewFallbackLimiter(primary, localLimiter, log, limiterMetrics)

		recordRepo := redisrepo.NewProgressRecordRepository(redisClient.Client(), cfg.Sync.RecordTTL)
		syncService = usecase.NewSyncService(recordRepo, log)
		cache = redisClient
	} else {
		log.Warn("redis not configured: sync endpoints disabled, rate limits are per-instance only")
	}

	httpMetrics, err := middleware.NewHTTPMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		SyncLimiter: syncLimiter,
		Sync:        syncService,
		Metrics:     httpMetrics,
		Cache:       cache,
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		redis:  redisClient,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting progress sync API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.Bool("redis", a.redis != nil),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
