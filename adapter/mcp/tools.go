package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/adapter/api"
	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/commands"
)

// Service is the behavior application as the MCP tools use it.
type Service interface {
	api.BehaviorService
	RunDigest(ctx context.Context, day time.Time) (*commands.RunDigestResult, error)
}

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

var errNoStorage = errors.New("behavior tools require a database connection")

// toolset binds tool handlers to a service and the current user.
type toolset struct {
	service Service
	userID  func() uuid.UUID
	now     func() time.Time
}

func newToolset(app *cli.App) *toolset {
	t := &toolset{
		userID: func() uuid.UUID { return app.CurrentUserID },
		now:    time.Now,
	}
	if app.Service != nil {
		t.service = app.Service
	}
	return t
}

func (t *toolset) ready() error {
	if t.service == nil {
		return errNoStorage
	}
	return nil
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	t := newToolset(deps.App)
	registerCoreTools(srv, t)
	registerBaselineTools(srv, t)
	registerSessionTools(srv, t)
	registerDayTools(srv, t)
	return nil
}

func registerCoreTools(srv *mcp.Server, t *toolset) {
	srv.Tool("behavior.health").
		Description("Check behavior tracker wiring health").
		Handler(func(ctx context.Context, input struct{}) (map[string]string, error) {
			status := "ok"
			if t.ready() != nil {
				status = "no storage"
			}
			return map[string]string{"status": status, "user_id": t.userID().String()}, nil
		})
}
