// Package domain holds the primitives shared by every bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata traces an event back to the request that caused it.
// CorrelationID is the request's correlation id, possibly empty.
type EventMetadata struct {
	CorrelationID string
	CausationID   uuid.UUID
	UserID        uuid.UUID
}

// BaseEvent carries the envelope fields. Embed it in concrete events; its
// fields stay out of the event's JSON body.
type BaseEvent struct {
	eventID       uuid.UUID
	aggregateID   uuid.UUID
	aggregateType string
	routingKey    string
	occurredAt    time.Time
	metadata      EventMetadata
}

// NewBaseEvent stamps a new event id and the current UTC time.
func NewBaseEvent(aggregateID uuid.UUID, aggregateType, routingKey string) BaseEvent {
	return BaseEvent{
		eventID:       uuid.New(),
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		routingKey:    routingKey,
		occurredAt:    time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID      { return e.eventID }
func (e BaseEvent) AggregateID() uuid.UUID  { return e.aggregateID }
func (e BaseEvent) AggregateType() string   { return e.aggregateType }
func (e BaseEvent) RoutingKey() string      { return e.routingKey }
func (e BaseEvent) OccurredAt() time.Time   { return e.occurredAt }
func (e BaseEvent) Metadata() EventMetadata { return e.metadata }

// SetMetadata replaces the metadata. A zero UserID keeps the existing one.
func (e *BaseEvent) SetMetadata(metadata EventMetadata) {
	if metadata.UserID == uuid.Nil {
		metadata.UserID = e.metadata.UserID
	}
	e.metadata = metadata
}
