package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/port"
)

const localPruneInterval = 5 * time.Minute

// requestRecord tracks one identity's recent activity. Timestamps are pruned
// lazily on each check; dailyResetAt is the next UTC midnight.
type requestRecord struct {
	hits         []time.Time
	dailyCount   int
	dailyResetAt time.Time
}

// LocalLimiter is an exact sliding-window limiter held in process memory. It
// is the degraded-mode fallback when the shared store is unreachable, so its
// state is deliberately ephemeral: a restart resets every counter.
type LocalLimiter struct {
	policy domain.RateLimitPolicy
	global domain.GlobalRateLimitPolicy
	now    func() time.Time

	mu          sync.Mutex
	records     map[string]*requestRecord
	globalHits  []time.Time
	lastPruneAt time.Time
}

// NewLocalLimiter builds a limiter enforcing the per-identity policy plus the
// global backstop.
func NewLocalLimiter(policy domain.RateLimitPolicy, global domain.GlobalRateLimitPolicy) *LocalLimiter {
	return &LocalLimiter{
		policy:  policy,
		global:  global,
		now:     time.Now,
		records: make(map[string]*requestRecord),
	}
}

// WithClock injects a custom clock (primarily for testing).
func (l *LocalLimiter) WithClock(now func() time.Time) *LocalLimiter {
	if now != nil {
		l.now = now
	}
	return l
}

// Check evaluates and consumes quota for one request. The global policy is
// evaluated before any per-identity state is touched so an overloaded service
// does not selectively penalize whichever caller happened to arrive first.
func (l *LocalLimiter) Check(_ context.Context, identity string) (domain.RateLimitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybePrune(now)

	l.globalHits = pruneHits(l.globalHits, now, l.global.Window)
	if l.global.MaxRequests > 0 && len(l.globalHits) >= l.global.MaxRequests {
		resetAt := l.globalHits[0].Add(l.global.Window)
		return deniedResult(domain.DenyReasonGlobal, resetAt, now), nil
	}

	record, tracked := l.records[identity]
	if !tracked {
		if l.policy.MaxTrackedIdentities > 0 && len(l.records) >= l.policy.MaxTrackedIdentities {
			// At capacity: the identity is not tracked and only the global
			// backstop applies.
			l.globalHits = append(l.globalHits, now)
			return domain.RateLimitResult{
				Allowed:   true,
				Remaining: l.policy.MaxRequests - 1,
				ResetAt:   now.Add(l.policy.Window),
			}, nil
		}
		record = &requestRecord{dailyResetAt: nextUTCMidnight(now)}
		l.records[identity] = record
	}

	if !now.Before(record.dailyResetAt) {
		record.dailyCount = 0
		record.dailyResetAt = nextUTCMidnight(now)
	}

	if l.policy.DailyLimit > 0 && record.dailyCount >= l.policy.DailyLimit {
		return deniedResult(domain.DenyReasonDailyQuota, record.dailyResetAt, now), nil
	}

	record.hits = pruneHits(record.hits, now, l.policy.Window)
	if len(record.hits) >= l.policy.MaxRequests {
		resetAt := record.hits[0].Add(l.policy.Window)
		return deniedResult(domain.DenyReasonRateLimit, resetAt, now), nil
	}

	record.hits = append(record.hits, now)
	record.dailyCount++
	l.globalHits = append(l.globalHits, now)

	return domain.RateLimitResult{
		Allowed:   true,
		Remaining: l.policy.MaxRequests - len(record.hits),
		ResetAt:   record.hits[0].Add(l.policy.Window),
	}, nil
}

// maybePrune drops records that are fully idle: no hits inside the window and
// a daily reset already in the past. Runs at most once per prune interval so
// sustained load cannot turn every check into a map sweep.
func (l *LocalLimiter) maybePrune(now time.Time) {
	if now.Sub(l.lastPruneAt) <= localPruneInterval {
		return
	}
	l.lastPruneAt = now

	for identity, record := range l.records {
		record.hits = pruneHits(record.hits, now, l.policy.Window)
		if len(record.hits) == 0 && record.dailyResetAt.Before(now) {
			delete(l.records, identity)
		}
	}
}

// TrackedIdentities reports how many identities currently hold local state.
func (l *LocalLimiter) TrackedIdentities() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

func pruneHits(hits []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	idx := 0
	for idx < len(hits) && !hits[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return hits
	}
	return append(hits[:0], hits[idx:]...)
}

func deniedResult(reason domain.DenyReason, resetAt, now time.Time) domain.RateLimitResult {
	retryAfter := resetAt.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return domain.RateLimitResult{
		Allowed:    false,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retryAfter,
		Reason:     reason,
	}
}

func nextUTCMidnight(now time.Time) time.Time {
	utc := now.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}

var _ port.RateLimiter = (*LocalLimiter)(nil)
