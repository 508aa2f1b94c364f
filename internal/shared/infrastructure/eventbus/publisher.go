package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/shared/domain"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// Publisher sends an encoded message under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// EventPublisher encodes domain events into envelopes and hands them to a
// Publisher. Delivery is best effort: failures are logged and counted, and
// returned joined so callers may ignore them.
type EventPublisher struct {
	publisher Publisher
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewEventPublisher wraps publisher.
func NewEventPublisher(publisher Publisher, metrics observability.Metrics, logger *slog.Logger) *EventPublisher {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventPublisher{publisher: publisher, metrics: metrics, logger: logger}
}

// PublishEvents publishes each event in order.
func (p *EventPublisher) PublishEvents(ctx context.Context, events ...domain.DomainEvent) error {
	var errs []error
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.metrics.Counter(observability.MetricPublishFailures, 1, observability.T("routing_key", event.RoutingKey()))
			p.logger.WarnContext(ctx, "event not published",
				"routing_key", event.RoutingKey(),
				"event_id", event.EventID(),
				observability.ErrorKey, err,
			)
			errs = append(errs, err)
			continue
		}
		p.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", event.RoutingKey()))
	}
	return errors.Join(errs...)
}

func (p *EventPublisher) publish(ctx context.Context, event domain.DomainEvent) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}
	return p.publisher.Publish(ctx, event.RoutingKey(), payload)
}

// Close closes the underlying publisher.
func (p *EventPublisher) Close() error {
	return p.publisher.Close()
}

// Encode wraps a domain event in the wire envelope. The event's own JSON
// becomes the payload.
func Encode(event domain.DomainEvent) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event.RoutingKey(), err)
	}

	md := event.Metadata()
	envelope := ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       body,
		Metadata: EventMetadata{
			UserID:        md.UserID,
			CorrelationID: md.CorrelationID,
		},
	}
	if md.CausationID != uuid.Nil {
		envelope.Metadata.CausationID = md.CausationID.String()
	}
	return json.Marshal(envelope)
}

// Decode parses an envelope. routingKey fills in a missing envelope key.
func Decode(routingKey string, data []byte) (*ConsumedEvent, error) {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}
	return event, nil
}

// NoopPublisher drops every message.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a NoopPublisher.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.logger.DebugContext(ctx, "noop publish", "routing_key", routingKey, "size", len(payload))
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
