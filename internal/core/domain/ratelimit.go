package domain

import "time"

// DenyReason explains which limit produced a denial.
type DenyReason string

const (
	DenyReasonNone       DenyReason = ""
	DenyReasonRateLimit  DenyReason = "rate_limit"
	DenyReasonDailyQuota DenyReason = "daily_quota"
	DenyReasonGlobal     DenyReason = "global_limit"
)

// RateLimitPolicy is an immutable per-endpoint limit definition.
type RateLimitPolicy struct {
	// MaxRequests allowed per identity within Window.
	MaxRequests int
	// Window is the span the request counter covers.
	Window time.Duration
	// DailyLimit caps requests per identity per UTC day. Zero disables it.
	DailyLimit int
	// MaxTrackedIdentities bounds the local limiter's memory. Once reached,
	// new identities are evaluated against the global policy only.
	MaxTrackedIdentities int
}

// GlobalRateLimitPolicy is the blanket backstop applied across all
// identities regardless of the per-identity policy.
type GlobalRateLimitPolicy struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimitResult is the outcome of a single admission check. A check always
// consumes one unit of quota when it allows.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	Reason     DenyReason
}
