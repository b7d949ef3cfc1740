package ratelimit

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
)

// Metrics exposes Prometheus collectors for admission decisions. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Decisions *prometheus.CounterVec
	Fallbacks prometheus.Counter
}

// NewMetrics constructs and registers the rate-limit collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kanadojo",
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      "Total admission decisions partitioned by outcome and deny reason.",
	}, []string{"outcome", "reason"})

	if err := reg.Register(decisions); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				decisions = existing
			} else {
				return nil, fmt.Errorf("existing decisions collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register decisions collector: %w", err)
		}
	}

	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kanadojo",
		Subsystem: "ratelimit",
		Name:      "fallbacks_total",
		Help:      "Times the distributed limiter failed and the local limiter answered instead.",
	})

	if err := reg.Register(fallbacks); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				fallbacks = existing
			} else {
				return nil, fmt.Errorf("existing fallbacks collector has unexpected type %T", already.ExistingCollector)
			}
		} else {
			return nil, fmt.Errorf("register fallbacks collector: %w", err)
		}
	}

	return &Metrics{Decisions: decisions, Fallbacks: fallbacks}, nil
}

func (m *Metrics) observe(result domain.RateLimitResult) {
	if m == nil || m.Decisions == nil {
		return
	}
	outcome := "allowed"
	if !result.Allowed {
		outcome = "denied"
	}
	m.Decisions.WithLabelValues(outcome, string(result.Reason)).Inc()
}

func (m *Metrics) observeFallback() {
	if m == nil || m.Fallbacks == nil {
		return
	}
	m.Fallbacks.Inc()
}
