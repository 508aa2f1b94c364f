package cli

import (
	"fmt"
	"time"
)

// ParseDate reads a YYYY-MM-DD date. Empty means today, and "yesterday" is accepted.
func ParseDate(raw string, now time.Time) (time.Time, error) {
	switch raw {
	case "", "today":
		return dateOf(now), nil
	case "yesterday":
		return dateOf(now).AddDate(0, 0, -1), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", raw)
	}
	return d, nil
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RequireApp returns the CLI application or an error when storage is not wired.
func RequireApp() (*App, error) {
	if app == nil || app.Service == nil {
		return nil, fmt.Errorf("behavior storage is not configured")
	}
	return app, nil
}
