package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
)

// GetPeriodAdviceQuery asks for advice over Days calendar days from Start.
type GetPeriodAdviceQuery struct {
	UserID uuid.UUID
	Start  time.Time
	Days   int
}

func (GetPeriodAdviceQuery) QueryName() string { return "behavior.period_advice" }

// GetPeriodAdviceHandler runs the advice rules over a period aggregate.
// Like the aggregate itself, the result is not cached.
type GetPeriodAdviceHandler struct {
	aggregates *GetPeriodAggregateHandler
}

var _ sharedApplication.QueryHandler[GetPeriodAdviceQuery, *AdviceDTO] = (*GetPeriodAdviceHandler)(nil)

// NewGetPeriodAdviceHandler creates a handler.
func NewGetPeriodAdviceHandler(aggregates *GetPeriodAggregateHandler) *GetPeriodAdviceHandler {
	return &GetPeriodAdviceHandler{aggregates: aggregates}
}

// Handle aggregates the period and generates its cards.
func (h *GetPeriodAdviceHandler) Handle(ctx context.Context, query GetPeriodAdviceQuery) (*AdviceDTO, error) {
	agg, err := h.aggregates.Handle(ctx, GetPeriodAggregateQuery(query))
	if err != nil {
		return nil, err
	}
	dto := newAdviceDTO(query.UserID, agg.Window.Label(), agg.SessionCount, domain.GenerateAdvice(agg))
	dto.Days = query.Days
	return dto, nil
}
