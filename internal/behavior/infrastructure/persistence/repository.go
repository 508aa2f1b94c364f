package persistence

import (
	"fmt"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
)

// Repositories bundles the behavior repositories for one connection.
type Repositories struct {
	Baselines domain.BaselineRepository
	Sessions  domain.SessionRepository
	Digests   domain.DigestRepository
}

// NewRepositories picks the implementation matching the connection's driver.
func NewRepositories(conn database.Connection) (*Repositories, error) {
	switch conn.Driver() {
	case database.DriverSQLite:
		return &Repositories{
			Baselines: NewSQLiteBaselineRepository(conn),
			Sessions:  NewSQLiteSessionRepository(conn),
			Digests:   NewSQLiteDigestRepository(conn),
		}, nil
	case database.DriverPostgres:
		return &Repositories{
			Baselines: NewPostgresBaselineRepository(conn),
			Sessions:  NewPostgresSessionRepository(conn),
			Digests:   NewPostgresDigestRepository(conn),
		}, nil
	}
	return nil, fmt.Errorf("no behavior repositories for driver %q", conn.Driver())
}
