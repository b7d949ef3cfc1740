package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/core/domain"
	"github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/infra/config"
	httproutes "github.com/shivamraaj1812-hue/kana-dojo-sub000/internal/transport/http/routes"
)

type denyAllLimiter struct{}

func (denyAllLimiter) Check(ctx context.Context, identity string) (domain.RateLimitResult, error) {
	return domain.RateLimitResult{Allowed: false, Reason: domain.DenyReasonRateLimit}, nil
}

func newTestEngine(t *testing.T, deps httproutes.Dependencies) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if deps.Config == nil {
		deps.Config = &config.AppConfig{App: config.AppSettings{Env: "test"}}
	}
	if deps.Logger == nil {
		deps.Logger = zaptest.NewLogger(t)
	}
	return httproutes.Register(deps)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestEngine(t, httproutes.Dependencies{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestEngine(t, httproutes.Dependencies{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestSyncRouteIsRateLimited(t *testing.T) {
	r := newTestEngine(t, httproutes.Dependencies{SyncLimiter: denyAllLimiter{}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/progress/sync", nil)
	req.Header.Set("x-sync-key", "sync-key-1234567890")

	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", w.Code)
	}
}

func TestSyncRouteWithoutStoreAnswers503(t *testing.T) {
	r := newTestEngine(t, httproutes.Dependencies{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/progress/sync", nil)
	req.Header.Set("x-sync-key", "sync-key-1234567890")

	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}
