package mcp

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

// parseDay reads a YYYY-MM-DD, "today" or "yesterday" value, using fallback
// when value is empty.
func parseDay(value, fallback string, now time.Time) (time.Time, error) {
	if value == "" {
		value = fallback
	}
	return cli.ParseDate(value, now)
}

func parseOptionalInstant(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time format, use RFC 3339: %w", err)
	}
	return parsed, nil
}

// explain adds a next step to errors a caller can act on.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case domain.IsConfigurationError(err):
		return fmt.Errorf("%w: save a baseline first with behavior.baseline.set", err)
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%w: nothing stored for this day yet", err)
	default:
		return err
	}
}
