package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/marlinprotocol/oyster-watchdog/config"
	httpx "github.com/marlinprotocol/oyster-watchdog/internal/http"
)

// startHTTPServerIfEnabled starts the ops HTTP server if enabled.
func startHTTPServerIfEnabled(cfg *ServiceOrchestrationConfig, logger *slog.Logger) *http.Server {
	if cfg == nil || !cfg.Config.IsHTTPServerEnabled() {
		return nil
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Failures: cfg.Services.Failures,
	})

	return startServer(logger, router, cfg.Config.HTTP)
}

func startServer(logger *slog.Logger, handler http.Handler, cfg config.HTTPConfig) *http.Server {
	addr := cfg.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context context.Context
	Server  *http.Server
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	if err := cfg.Server.Shutdown(cfg.Context); err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
