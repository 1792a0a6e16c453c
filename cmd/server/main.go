package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"companygraph/internal/app"
	"companygraph/internal/platform/config"
	"companygraph/internal/platform/httpserver"
	"companygraph/internal/platform/logger"
	"companygraph/internal/platform/metrics"
)

// main wires dependencies, serves the HTTP API and shuts down gracefully.
// Business logic lives in internal packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log, metrics.NewRegistry())
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	srv := httpserver.New(cfg.Server.Addr, application.Router(), cfg.Resolver.Timeout)

	go func() {
		log.Info("starting companygraph", "addr", cfg.Server.Addr, "registry", cfg.Registry.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if err := application.Close(); err != nil {
		log.Error("failed to close redis", "error", err)
	}
}
