package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/port"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/infra/logger"
)

// RateLimitedResponse is the 429 payload.
type RateLimitedResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
	Reason     string `json:"reason,omitempty"`
}

// RateLimit enforces admission control before a request reaches the sync
// handlers. A denial is terminal for the request but transient for the
// caller, so the response always carries Retry-After. A limiter error admits
// the request: infrastructure trouble must not take the endpoint down.
func RateLimit(limiter port.RateLimiter, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		identity := ResolveClientIdentity(c.Request.Header)

		result, err := limiter.Check(c.Request.Context(), identity)
		if err != nil {
			log.Error("rate limit check failed, admitting request",
				zap.String("identity", logger.MaskIP(identity)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if result.Allowed {
			c.Next()
			return
		}

		retrySeconds := int(math.Ceil(result.RetryAfter.Seconds()))
		if retrySeconds < 0 {
			retrySeconds = 0
		}

		headers := c.Writer.Header()
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(max(result.Remaining, 0)))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		headers.Set("Retry-After", strconv.Itoa(retrySeconds))
		headers.Set("Cache-Control", "no-store")
		headers.Set("Vary", "x-sync-key")

		c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitedResponse{
			Error:      "RATE_LIMIT",
			RetryAfter: retrySeconds,
			Reason:     string(result.Reason),
		})
	}
}
