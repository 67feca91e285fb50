package httpserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/sessiontimer/internal/adapter/metrics"
	"github.com/pscheid92/sessiontimer/internal/domain"
	"github.com/pscheid92/sessiontimer/internal/platform/config"
	"github.com/pscheid92/sessiontimer/internal/registry"
)

// --- Mock implementations ---

type mockAppService struct {
	stateFn         func(ctx context.Context) (*domain.Document, error)
	addSessionFn    func(ctx context.Context, req registry.AddRequest) (domain.Session, error)
	removeSessionFn func(ctx context.Context, id string) error
	clearFn         func(ctx context.Context) error
}

func (m *mockAppService) State(ctx context.Context) (*domain.Document, error) {
	if m.stateFn != nil {
		return m.stateFn(ctx)
	}
	return domain.NewDocument(), nil
}

func (m *mockAppService) AddSession(ctx context.Context, req registry.AddRequest) (domain.Session, error) {
	if m.addSessionFn != nil {
		return m.addSessionFn(ctx, req)
	}
	return domain.Session{ID: "1-1", Nick: req.Nick, Minutes: req.Minutes, Players: req.Players}, nil
}

func (m *mockAppService) RemoveSession(ctx context.Context, id string) error {
	if m.removeSessionFn != nil {
		return m.removeSessionFn(ctx, id)
	}
	return nil
}

func (m *mockAppService) Clear(ctx context.Context) error {
	if m.clearFn != nil {
		return m.clearFn(ctx)
	}
	return nil
}

// --- Test helpers ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo: echo.New(),
		config: &config.Config{
			Host:               "127.0.0.1",
			Port:               "8080",
			StaticDir:          t.TempDir(),
			RateLimitPerSecond: 1000,
			RateLimitBurst:     1000,
			MaxBodySize:        "1K",
			ShutdownTimeout:    time.Second,
		},
		app:       app,
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	// Register routes so endpoints are available for testing
	srv.registerRoutes()

	return srv
}

func withConfig(mutate func(*config.Config)) func(*Server) {
	return func(s *Server) {
		mutate(s.config)
	}
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func withMetrics(m *metrics.Set) func(*Server) {
	return func(s *Server) {
		s.metrics = m
	}
}

// serve runs a request through the full middleware chain.
func serve(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}
