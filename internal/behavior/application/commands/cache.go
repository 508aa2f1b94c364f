package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// invalidateDay drops the cached views of one day, or of every day when day
// is empty. Failures are logged: stale entries are still rejected on read by
// their window stamp.
func invalidateDay(ctx context.Context, cache domain.AggregateCache, logger *slog.Logger, userID uuid.UUID, day string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx, userID, day); err != nil {
		logger.WarnContext(ctx, "cache invalidation failed",
			observability.UserIDKey, userID,
			observability.DayKey, day,
			observability.ErrorKey, err,
		)
	}
}
