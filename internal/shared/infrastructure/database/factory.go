package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is detected from URL when empty or "auto".
	Driver Driver

	// URL is the PostgreSQL connection string, or a SQLite path.
	URL string

	// SQLitePath is the database file used by the SQLite driver.
	SQLitePath string

	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// Opener creates a connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

var openers = map[Driver]Opener{}

// Register makes a driver available to NewConnection. Driver packages call
// it from init, so importing them for side effects is enough.
func Register(driver Driver, open Opener) {
	openers[driver] = open
}

// NewConnection opens a connection for the configured driver.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}
	if driver == DriverSQLite && cfg.SQLitePath == "" && cfg.URL != "" {
		cfg.SQLitePath = strings.TrimPrefix(cfg.URL, "sqlite://")
	}

	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("database driver %q is not registered", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath is ~/.behaviortracker/data.db.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".behaviortracker", "data.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
