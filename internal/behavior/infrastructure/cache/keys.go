// Package cache keeps derived daily views so dashboards do not re-aggregate
// on every read. Entries are dropped when new sessions or baselines arrive.
package cache

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	kindAggregate = "aggregate"
	kindAdvice    = "advice"
)

// userPrefix namespaces every key of one user: behavior:user:{id}:
func userPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("behavior:user:%s:", userID)
}

func dayKey(userID uuid.UUID, day, kind string) string {
	return fmt.Sprintf("%sday:%s:%s", userPrefix(userID), day, kind)
}
