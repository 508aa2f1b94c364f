package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// CacheInvalidationConsumer drops cached aggregates and advice when the data
// behind them changes. A new session clears its day; a new baseline clears
// every day of the user, since time zone and rules feed every view.
type CacheInvalidationConsumer struct {
	cache  domain.AggregateCache
	logger *slog.Logger
}

var _ eventbus.EventConsumer = (*CacheInvalidationConsumer)(nil)

// NewCacheInvalidationConsumer creates a CacheInvalidationConsumer.
func NewCacheInvalidationConsumer(cache domain.AggregateCache, logger *slog.Logger) *CacheInvalidationConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheInvalidationConsumer{cache: cache, logger: logger}
}

// EventTypes returns the event types this consumer handles.
func (c *CacheInvalidationConsumer) EventTypes() []string {
	return []string{
		domain.RoutingKeySessionLogged,
		domain.RoutingKeyBaselineUpdated,
	}
}

type invalidationPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Day    string    `json:"day"`
}

// Handle processes an event.
func (c *CacheInvalidationConsumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload invalidationPayload
	if err := event.DecodePayload(&payload); err != nil {
		return fmt.Errorf("decode %s: %w", event.RoutingKey, err)
	}
	if payload.UserID == uuid.Nil {
		payload.UserID = event.Metadata.UserID
	}
	if payload.UserID == uuid.Nil {
		c.logger.WarnContext(ctx, "event without user id", "routing_key", event.RoutingKey, "event_id", event.EventID)
		return nil
	}

	day := payload.Day
	if event.RoutingKey == domain.RoutingKeyBaselineUpdated {
		day = ""
	}
	if err := c.cache.Invalidate(ctx, payload.UserID, day); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}

	c.logger.DebugContext(ctx, "cache invalidated",
		"routing_key", event.RoutingKey,
		observability.UserIDKey, payload.UserID,
		observability.DayKey, day,
	)
	return nil
}
