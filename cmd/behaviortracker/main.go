package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
	"github.com/felixgeelhaar/behaviortracker/adapter/cli/baseline"
	"github.com/felixgeelhaar/behaviortracker/adapter/cli/mcp"
	"github.com/felixgeelhaar/behaviortracker/adapter/cli/session"
	"github.com/felixgeelhaar/behaviortracker/internal/app"
	"github.com/felixgeelhaar/behaviortracker/pkg/config"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

func main() {
	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevelWarn

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.IsDevelopment() {
		logCfg.Level = observability.LogLevelInfo
	}
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger, app.Options{})
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// Commands that need storage report it through cli.RequireApp.
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()
		cliApp = cli.NewApp(container.Service, container.Health, cfg.DefaultUser())
		cliApp.APIAddr = cfg.APIAddr

		go func() {
			if err := container.StartConsumers(ctx); err != nil {
				logger.Warn("event consumer stopped", "error", err)
			}
		}()
	}

	cli.SetApp(cliApp)

	cli.AddCommand(baseline.Cmd)
	cli.AddCommand(session.Cmd)
	cli.AddCommand(mcp.Cmd)

	if err := cli.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
