package queries

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
)

// MaxPeriodDays bounds the length of a period aggregate.
const MaxPeriodDays = 31

// ErrInvalidPeriod is returned for a period outside 1..MaxPeriodDays days.
var ErrInvalidPeriod = errors.New("period must span 1 to 31 days")

// GetPeriodAggregateQuery asks for an aggregate over Days calendar days from Start.
type GetPeriodAggregateQuery struct {
	UserID uuid.UUID
	Start  time.Time
	Days   int
}

func (GetPeriodAggregateQuery) QueryName() string { return "behavior.period_aggregate" }

// GetPeriodAggregateHandler computes multi-day aggregates. They are not cached.
type GetPeriodAggregateHandler struct {
	baselines domain.BaselineRepository
	sessions  domain.SessionRepository
}

var _ sharedApplication.QueryHandler[GetPeriodAggregateQuery, *domain.DailyAggregate] = (*GetPeriodAggregateHandler)(nil)

// NewGetPeriodAggregateHandler creates a handler.
func NewGetPeriodAggregateHandler(baselines domain.BaselineRepository, sessions domain.SessionRepository) *GetPeriodAggregateHandler {
	return &GetPeriodAggregateHandler{baselines: baselines, sessions: sessions}
}

// Handle aggregates every session in the period.
func (h *GetPeriodAggregateHandler) Handle(ctx context.Context, query GetPeriodAggregateQuery) (*domain.DailyAggregate, error) {
	if query.Days < 1 || query.Days > MaxPeriodDays {
		return nil, ErrInvalidPeriod
	}
	window, err := calendarWindow(ctx, h.baselines, query.UserID, query.Start, query.Days)
	if err != nil {
		return nil, err
	}
	sessions, err := h.sessions.FindByUserAndRange(ctx, query.UserID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	return domain.Aggregate(query.UserID, sessions, window), nil
}
