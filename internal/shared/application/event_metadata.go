package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/shared/domain"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata builds metadata for the events one command raises. The
// correlation id comes from ctx; each command gets a fresh causation id.
func NewEventMetadata(ctx context.Context, userID uuid.UUID) domain.EventMetadata {
	return domain.EventMetadata{
		CorrelationID: observability.CorrelationIDFromContext(ctx),
		CausationID:   uuid.New(),
		UserID:        userID,
	}
}

// ApplyEventMetadata sets metadata on every event that accepts it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
