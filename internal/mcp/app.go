package mcp

import (
	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
	"github.com/felixgeelhaar/behaviortracker/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container, currentUser uuid.UUID) *cli.App {
	cliApp := cli.NewApp(container.Service, container.Health, currentUser)
	if container.Config != nil && container.Config.APIAddr != "" {
		cliApp.APIAddr = container.Config.APIAddr
	}
	return cliApp
}
