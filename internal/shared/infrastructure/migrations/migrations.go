// Package migrations holds the embedded schema for both backends.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// Run applies every .up.sql file for the connection's driver, in name order.
// The scripts are idempotent, so Run is safe on every start.
func Run(ctx context.Context, conn database.Connection) error {
	dir := string(conn.Driver())

	names, err := upFiles(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		script, err := files.ReadFile(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := conn.Exec(ctx, string(script)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

func upFiles(dir string) ([]string, error) {
	entries, err := files.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("no migrations for driver %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
