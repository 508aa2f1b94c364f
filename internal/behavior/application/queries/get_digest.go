package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
)

// GetDigestQuery fetches a stored digest.
type GetDigestQuery struct {
	UserID uuid.UUID
	Date   time.Time
}

func (GetDigestQuery) QueryName() string { return "behavior.digest" }

// GetDigestHandler handles GetDigestQuery.
type GetDigestHandler struct {
	digests domain.DigestRepository
}

var _ sharedApplication.QueryHandler[GetDigestQuery, *domain.DailyDigest] = (*GetDigestHandler)(nil)

// NewGetDigestHandler creates a GetDigestHandler.
func NewGetDigestHandler(digests domain.DigestRepository) *GetDigestHandler {
	return &GetDigestHandler{digests: digests}
}

// Handle returns domain.ErrNotFound when the digest job has not covered the day.
func (h *GetDigestHandler) Handle(ctx context.Context, query GetDigestQuery) (*domain.DailyDigest, error) {
	d, err := h.digests.FindByUserAndDay(ctx, query.UserID, query.Date.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	return d, nil
}
