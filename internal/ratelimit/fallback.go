package ratelimit

import (
	"context"

	"go.uber.org/zap"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/port"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/infra/logger"
)

// FallbackLimiter tries the distributed limiter first and degrades to the
// local one on any store failure. Store errors never reach the client: an
// unavailable limiter backend must not take the endpoint down with it. The
// cost is that during an outage global limits loosen to per-instance limits.
type FallbackLimiter struct {
	primary  port.RateLimiter
	fallback port.RateLimiter
	logger   *zap.Logger
	metrics  *Metrics
}

// NewFallbackLimiter composes a primary limiter with a local fallback.
func NewFallbackLimiter(primary, fallback port.RateLimiter, log *zap.Logger, metrics *Metrics) *FallbackLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &FallbackLimiter{
		primary:  primary,
		fallback: fallback,
		logger:   log,
		metrics:  metrics,
	}
}

// Check consults the primary limiter, falling back locally on error.
func (f *FallbackLimiter) Check(ctx context.Context, identity string) (domain.RateLimitResult, error) {
	result, err := f.primary.Check(ctx, identity)
	if err == nil {
		f.metrics.observe(result)
		return result, nil
	}

	f.logger.Warn("distributed rate limit check failed, using local limiter",
		zap.String("identity", logger.MaskIP(identity)),
		zap.Error(err),
	)
	f.metrics.observeFallback()

	result, fallbackErr := f.fallback.Check(ctx, identity)
	if fallbackErr != nil {
		return domain.RateLimitResult{}, fallbackErr
	}
	f.metrics.observe(result)
	return result, nil
}

var _ port.RateLimiter = (*FallbackLimiter)(nil)
