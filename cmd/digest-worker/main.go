package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/behaviortracker/internal/app"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/scheduler"
	"github.com/felixgeelhaar/behaviortracker/pkg/config"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting digest worker")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// The worker never reads the cache, so it publishes events without
	// consuming them.
	container, err := app.NewContainer(ctx, cfg, logger, app.Options{SkipBrokerConsumer: true})
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	digests := scheduler.NewDigestScheduler(container.Service, scheduler.Config{
		Interval:   cfg.DigestInterval,
		RunOnStart: cfg.DigestRunOnStart,
	}, logger)
	digests.Start(ctx)
	defer digests.Stop()

	if cfg.DigestHealthAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": "ok",
				"digest": digests.Stats(),
			})
		})
		mux.Handle("/readyz", container.Health.Handler())

		healthSrv := &http.Server{
			Addr:              cfg.DigestHealthAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.DigestHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down digest worker")
}
