package cli

import (
	"github.com/google/uuid"

	behaviorApp "github.com/felixgeelhaar/behaviortracker/internal/behavior/application"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	Service *behaviorApp.Service
	Health  *observability.HealthRegistry

	// APIAddr is where `serve` listens.
	APIAddr string

	CurrentUserID uuid.UUID
}

// NewApp creates a new CLI application.
func NewApp(service *behaviorApp.Service, health *observability.HealthRegistry, userID uuid.UUID) *App {
	return &App{
		Service:       service,
		Health:        health,
		APIAddr:       "127.0.0.1:8080",
		CurrentUserID: userID,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
