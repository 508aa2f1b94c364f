// Package commands holds the state-changing use cases of the behavior context.
package commands

import (
	"context"

	sharedDomain "github.com/felixgeelhaar/behaviortracker/internal/shared/domain"
)

// EventPublisher publishes domain events after a command has committed.
type EventPublisher interface {
	PublishEvents(ctx context.Context, events ...sharedDomain.DomainEvent) error
}
