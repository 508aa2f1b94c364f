package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/behaviortracker/internal/app"
	mcpinternal "github.com/felixgeelhaar/behaviortracker/internal/mcp"
	"github.com/felixgeelhaar/behaviortracker/pkg/config"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	go func() {
		if err := container.StartConsumers(ctx); err != nil {
			logger.Error("event consumer stopped", "error", err)
			cancel()
		}
	}()

	cliApp := mcpinternal.NewCLIApp(container, cfg.DefaultUser())

	if err := mcpinternal.Serve(ctx, cfg, cliApp, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
