package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sessiontimer/internal/adapter/filestore"
	"github.com/pscheid92/sessiontimer/internal/adapter/httpserver"
	"github.com/pscheid92/sessiontimer/internal/adapter/metrics"
	"github.com/pscheid92/sessiontimer/internal/app"
	"github.com/pscheid92/sessiontimer/internal/platform/config"
	"github.com/pscheid92/sessiontimer/internal/platform/logging"
	"github.com/pscheid92/sessiontimer/internal/platform/version"
)

func runGracefulShutdown(srv *httpserver.Server, cfg *config.Config) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// publicURL is the address an operator types into a browser.
func publicURL(cfg *config.Config) string {
	host := cfg.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, cfg.Port)
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "version", version.Get().String())

	m := metrics.NewSet()
	store := filestore.NewStore(cfg.StateFile, m.Store)
	appSvc := app.NewService(store, clock, m.Sessions)

	healthChecks := []httpserver.HealthCheck{
		{Name: "store", Check: store.Check},
	}
	srv := httpserver.NewServer(cfg, appSvc, m, healthChecks)

	done := runGracefulShutdown(srv, cfg)

	base := publicURL(cfg)
	slog.Info("Server listening",
		"url", base,
		"admin", base+httpserver.AdminPage,
		"screen", base+httpserver.ScreenPage,
		"state_file", cfg.StateFile,
	)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
