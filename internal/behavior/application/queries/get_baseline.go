package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
)

// GetBaselineQuery fetches a user's baseline.
type GetBaselineQuery struct {
	UserID uuid.UUID
}

func (GetBaselineQuery) QueryName() string { return "behavior.baseline" }

// GetBaselineHandler handles GetBaselineQuery.
type GetBaselineHandler struct {
	baselines domain.BaselineRepository
}

var _ sharedApplication.QueryHandler[GetBaselineQuery, *domain.Baseline] = (*GetBaselineHandler)(nil)

// NewGetBaselineHandler creates a GetBaselineHandler.
func NewGetBaselineHandler(baselines domain.BaselineRepository) *GetBaselineHandler {
	return &GetBaselineHandler{baselines: baselines}
}

func (h *GetBaselineHandler) Handle(ctx context.Context, query GetBaselineQuery) (*domain.Baseline, error) {
	b, err := h.baselines.FindByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}
