// Package mcp serves the behavior tracker to MCP clients over HTTP.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"

	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
	mcplocal "github.com/felixgeelhaar/behaviortracker/adapter/mcp"
	"github.com/felixgeelhaar/behaviortracker/pkg/config"
)

// ServerName identifies the server to MCP clients.
const ServerName = "behaviortracker-mcp"

// NewServer builds an MCP server exposing the behavior tools, resources and
// prompts for cliApp. Only the tools are required to register.
func NewServer(cliApp *cli.App, logger *slog.Logger) (*mcpgo.Server, error) {
	if cliApp == nil {
		return nil, errors.New("CLI app is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:    ServerName,
		Version: cli.Version,
		Capabilities: mcpgo.Capabilities{
			Tools:     true,
			Resources: true,
			Prompts:   true,
		},
	})

	deps := mcplocal.ToolDependencies{App: cliApp}
	if err := mcplocal.RegisterCLITools(srv, deps); err != nil {
		return nil, err
	}
	if err := mcplocal.RegisterResources(srv, deps); err != nil {
		logger.Warn("failed to register MCP resources", "error", err)
	}
	if err := mcplocal.RegisterPrompts(srv, deps); err != nil {
		logger.Warn("failed to register MCP prompts", "error", err)
	}
	return srv, nil
}

// Middleware returns the default request stack, behind bearer-token auth
// when cfg carries a token.
func Middleware(cfg *config.Config, logger *slog.Logger) []middleware.Middleware {
	adapter := slogAdapter{logger: logger}
	stack := middleware.DefaultStack(adapter)
	if cfg.MCPAuthToken == "" {
		return stack
	}

	authenticator := middleware.BearerTokenAuthenticator(middleware.StaticTokens(map[string]*middleware.Identity{
		cfg.MCPAuthToken: {ID: cfg.UserID, Name: "behaviortracker"},
	}))
	return append([]middleware.Middleware{middleware.Auth(authenticator, middleware.WithAuthLogger(adapter))}, stack...)
}

// Serve listens on cfg.MCPAddr until ctx is canceled.
func Serve(ctx context.Context, cfg *config.Config, cliApp *cli.App, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := NewServer(cliApp, logger)
	if err != nil {
		return err
	}
	if cfg.MCPAuthToken == "" {
		logger.Warn("MCP_AUTH_TOKEN not set; requests will be unauthenticated")
	}

	logger.Info("mcp server listening", "addr", cfg.MCPAddr, "user_id", cliApp.CurrentUserID)
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(Middleware(cfg, logger)...))
}

// slogAdapter routes mcp-go middleware logs to slog.
type slogAdapter struct {
	logger *slog.Logger
}

func (l slogAdapter) Info(msg string, fields ...middleware.Field) {
	l.logger.Info(msg, fieldsToArgs(fields)...)
}

func (l slogAdapter) Error(msg string, fields ...middleware.Field) {
	l.logger.Error(msg, fieldsToArgs(fields)...)
}

func (l slogAdapter) Debug(msg string, fields ...middleware.Field) {
	l.logger.Debug(msg, fieldsToArgs(fields)...)
}

func (l slogAdapter) Warn(msg string, fields ...middleware.Field) {
	l.logger.Warn(msg, fieldsToArgs(fields)...)
}

func fieldsToArgs(fields []middleware.Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		args = append(args, field.Key, field.Value)
	}
	return args
}
