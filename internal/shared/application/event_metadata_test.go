package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/behaviortracker/internal/shared/domain"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

type recordedEvent struct {
	domain.BaseEvent
}

type readOnlyEvent struct{}

func (readOnlyEvent) EventID() uuid.UUID             { return uuid.Nil }
func (readOnlyEvent) AggregateID() uuid.UUID         { return uuid.Nil }
func (readOnlyEvent) AggregateType() string          { return "test" }
func (readOnlyEvent) RoutingKey() string             { return "test.event" }
func (readOnlyEvent) OccurredAt() time.Time          { return time.Time{} }
func (readOnlyEvent) Metadata() domain.EventMetadata { return domain.EventMetadata{} }

func TestNewEventMetadata(t *testing.T) {
	userID := uuid.New()
	ctx := observability.WithCorrelationID(context.Background(), "corr-1")

	first := NewEventMetadata(ctx, userID)
	second := NewEventMetadata(ctx, userID)

	assert.Equal(t, userID, first.UserID)
	assert.Equal(t, "corr-1", first.CorrelationID)
	assert.NotEqual(t, uuid.Nil, first.CausationID)
	assert.NotEqual(t, first.CausationID, second.CausationID)
}

func TestApplyEventMetadata(t *testing.T) {
	userID := uuid.New()
	a := &recordedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Session", "a")}
	b := &recordedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Session", "b")}
	md := NewEventMetadata(context.Background(), userID)

	ApplyEventMetadata([]domain.DomainEvent{a, readOnlyEvent{}, b}, md)

	assert.Equal(t, md, a.Metadata())
	assert.Equal(t, md, b.Metadata())

	require.NotPanics(t, func() { ApplyEventMetadata(nil, md) })
}
