package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/sessiontimer/internal/adapter/metrics"
	"github.com/pscheid92/sessiontimer/internal/domain"
	"github.com/pscheid92/sessiontimer/internal/platform/config"
	"github.com/pscheid92/sessiontimer/internal/registry"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	idleTimeout  = 60 * time.Second
)

type appService interface {
	State(ctx context.Context) (*domain.Document, error)
	AddSession(ctx context.Context, req registry.AddRequest) (domain.Session, error)
	RemoveSession(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app          appService
	metrics      *metrics.Set
	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer wires routes and middleware. m may be nil, in which case /metrics is not served.
func NewServer(cfg *config.Config, app appService, m *metrics.Set, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = readTimeout
	e.Server.WriteTimeout = writeTimeout
	e.Server.IdleTimeout = idleTimeout

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		metrics:      m,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "addr", s.config.Addr())
	if err := s.echo.Start(s.config.Addr()); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
