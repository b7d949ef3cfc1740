package port

import (
	"context"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
)

// RateLimiter decides whether a request from the given identity may proceed.
// Check is a combined read+write: an allowed result has already consumed one
// unit of quota.
type RateLimiter interface {
	Check(ctx context.Context, identity string) (domain.RateLimitResult, error)
}
