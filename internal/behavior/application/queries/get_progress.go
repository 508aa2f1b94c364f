package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
)

// GetProgressQuery asks how use since the baseline compares with its goals.
type GetProgressQuery struct {
	UserID uuid.UUID
}

func (GetProgressQuery) QueryName() string { return "behavior.progress" }

// GetProgressHandler averages every session logged since the baseline was created.
type GetProgressHandler struct {
	baselines domain.BaselineRepository
	sessions  domain.SessionRepository
	now       func() time.Time
}

var _ sharedApplication.QueryHandler[GetProgressQuery, *domain.Progress] = (*GetProgressHandler)(nil)

// NewGetProgressHandler creates a handler.
func NewGetProgressHandler(baselines domain.BaselineRepository, sessions domain.SessionRepository) *GetProgressHandler {
	return &GetProgressHandler{baselines: baselines, sessions: sessions, now: time.Now}
}

// Handle fails with a configuration error when the baseline is missing or invalid.
func (h *GetProgressHandler) Handle(ctx context.Context, query GetProgressQuery) (*domain.Progress, error) {
	baseline, err := h.baselines.FindByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	if err := baseline.Validate(); err != nil {
		return nil, err
	}

	now := h.now().UTC()
	sessions, err := h.sessions.FindByUserAndRange(ctx, query.UserID, baseline.CreatedAt, now)
	if err != nil {
		return nil, err
	}
	return domain.ComputeProgress(sessions, baseline, now)
}
