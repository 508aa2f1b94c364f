package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/behaviortracker/internal/mcp"
	"github.com/felixgeelhaar/behaviortracker/pkg/config"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.MCPAddr = addr
		}

		logger := newServerLogger(cmd.OutOrStdout(), cli.Verbose() || cfg.IsDevelopment())
		err = mcpinternal.Serve(ctx, cfg, app, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default MCP_ADDR)")
}

func newServerLogger(out io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
}
