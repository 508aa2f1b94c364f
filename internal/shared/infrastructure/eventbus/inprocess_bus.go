package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// InProcessEventBus delivers events synchronously to local consumers. It is
// the bus used in local mode when no broker is configured.
type InProcessEventBus struct {
	mu       sync.Mutex
	registry *ConsumerRegistry
	logger   *slog.Logger
}

// NewInProcessEventBus creates a bus with an empty registry.
func NewInProcessEventBus(logger *slog.Logger) *InProcessEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessEventBus{registry: NewConsumerRegistry(logger), logger: logger}
}

// RegisterConsumer subscribes consumer.
func (b *InProcessEventBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// Publish decodes the envelope and dispatches it before returning. Malformed
// envelopes and consumer failures are logged, never returned.
func (b *InProcessEventBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	event, err := Decode(routingKey, payload)
	if err != nil {
		b.logger.ErrorContext(ctx, "dropping malformed event", "routing_key", routingKey, "error", err)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.registry.Dispatch(ctx, event); err != nil {
		b.logger.ErrorContext(ctx, "event dispatch failed",
			"routing_key", routingKey,
			"event_id", event.EventID,
			"error", err,
		)
	}
	return nil
}

// Registry exposes the consumer registry.
func (b *InProcessEventBus) Registry() *ConsumerRegistry {
	return b.registry
}

// Start blocks until ctx is done. Delivery happens inside Publish.
func (b *InProcessEventBus) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (b *InProcessEventBus) Close() error {
	return nil
}
