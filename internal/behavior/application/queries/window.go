package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

// calendarWindow places date in the user's time zone. Users without a
// baseline are read in UTC.
func calendarWindow(ctx context.Context, baselines domain.BaselineRepository, userID uuid.UUID, date time.Time, days int) (domain.Window, error) {
	baseline, err := baselines.FindByUser(ctx, userID)
	if err != nil {
		return domain.Window{}, err
	}
	return domain.CalendarPeriod(date, days, baseline.Location()), nil
}
