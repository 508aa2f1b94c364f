package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
)

// ListSessionsQuery lists the sessions of one calendar day.
type ListSessionsQuery struct {
	UserID uuid.UUID
	Date   time.Time
}

func (ListSessionsQuery) QueryName() string { return "behavior.list_sessions" }

// SessionDTO is a session as shown to users.
type SessionDTO struct {
	ID              uuid.UUID `json:"id"`
	AppID           string    `json:"app_id"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	TimeBucket      string    `json:"time_bucket"`
	Goal            string    `json:"goal"`
	MoodDelta       int       `json:"mood_delta"`
	FormulaVersion  string    `json:"formula_version"`
	RawScore        float64   `json:"raw_score"`
	Score           float64   `json:"score"`
	DeltaPoints     int       `json:"delta_points"`
}

// ListSessionsHandler handles ListSessionsQuery.
type ListSessionsHandler struct {
	baselines domain.BaselineRepository
	sessions  domain.SessionRepository
}

var _ sharedApplication.QueryHandler[ListSessionsQuery, []SessionDTO] = (*ListSessionsHandler)(nil)

// NewListSessionsHandler creates a ListSessionsHandler.
func NewListSessionsHandler(baselines domain.BaselineRepository, sessions domain.SessionRepository) *ListSessionsHandler {
	return &ListSessionsHandler{baselines: baselines, sessions: sessions}
}

// Handle returns the day's sessions, oldest first.
func (h *ListSessionsHandler) Handle(ctx context.Context, query ListSessionsQuery) ([]SessionDTO, error) {
	window, err := calendarWindow(ctx, h.baselines, query.UserID, query.Date, 1)
	if err != nil {
		return nil, err
	}
	sessions, err := h.sessions.FindByUserAndRange(ctx, query.UserID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	dtos := make([]SessionDTO, 0, len(sessions))
	for _, s := range sessions {
		dtos = append(dtos, SessionDTO{
			ID:              s.ID,
			AppID:           s.AppID,
			DurationMinutes: s.DurationMinutes,
			CreatedAt:       s.CreatedAt,
			TimeBucket:      string(s.TimeBucket),
			Goal:            string(s.Goal),
			MoodDelta:       s.MoodDelta,
			FormulaVersion:  string(s.FormulaVersion),
			RawScore:        s.RawScore,
			Score:           s.NormalizedScore(),
			DeltaPoints:     s.DeltaPoints,
		})
	}
	return dtos, nil
}
