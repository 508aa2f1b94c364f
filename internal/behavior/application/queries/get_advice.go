package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// GetAdviceQuery asks for the advice cards of one calendar day.
type GetAdviceQuery struct {
	UserID uuid.UUID
	Date   time.Time
}

func (GetAdviceQuery) QueryName() string { return "behavior.advice" }

// AdviceDTO is the advice for a day, or for Days days starting with Day.
// Cards are ordered fix cards first. Empty separates a window without
// sessions from one where no rule fired.
type AdviceDTO struct {
	UserID       uuid.UUID           `json:"user_id"`
	Day          string              `json:"day"`
	Days         int                 `json:"days"`
	SessionCount int                 `json:"session_count"`
	Empty        bool                `json:"empty"`
	Cards        []domain.AdviceCard `json:"cards"`
}

func newAdviceDTO(userID uuid.UUID, day string, sessions int, cards []domain.AdviceCard) *AdviceDTO {
	if cards == nil {
		cards = []domain.AdviceCard{}
	}
	return &AdviceDTO{
		UserID:       userID,
		Day:          day,
		Days:         1,
		SessionCount: sessions,
		Empty:        sessions == 0,
		Cards:        cards,
	}
}

// GetAdviceHandler derives advice from the daily aggregate.
type GetAdviceHandler struct {
	baselines  domain.BaselineRepository
	sessions   domain.SessionRepository
	aggregates *GetDailyAggregateHandler
	cache      domain.AggregateCache
	metrics    observability.Metrics
	logger     *slog.Logger
}

var _ sharedApplication.QueryHandler[GetAdviceQuery, *AdviceDTO] = (*GetAdviceHandler)(nil)

// NewGetAdviceHandler creates a handler. cache may be nil.
func NewGetAdviceHandler(
	baselines domain.BaselineRepository,
	sessions domain.SessionRepository,
	aggregates *GetDailyAggregateHandler,
	cache domain.AggregateCache,
	metrics observability.Metrics,
	logger *slog.Logger,
) *GetAdviceHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GetAdviceHandler{
		baselines:  baselines,
		sessions:   sessions,
		aggregates: aggregates,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// Handle returns cached cards when they were generated from the sessions
// currently stored for the day, otherwise generates them from the aggregate.
func (h *GetAdviceHandler) Handle(ctx context.Context, query GetAdviceQuery) (*AdviceDTO, error) {
	window, err := calendarWindow(ctx, h.baselines, query.UserID, query.Date, 1)
	if err != nil {
		return nil, err
	}
	day := window.Label()

	var stamp string
	useCache := h.cache != nil
	if useCache {
		ws, err := h.sessions.StampByUserAndRange(ctx, query.UserID, window.Start, window.End)
		if err != nil {
			return nil, err
		}
		stamp = ws.String()

		cards, ok, err := h.cache.GetAdvice(ctx, query.UserID, day, stamp)
		if err != nil {
			h.logger.WarnContext(ctx, "advice cache read failed",
				observability.UserIDKey, query.UserID, observability.DayKey, day, observability.ErrorKey, err)
		} else if ok {
			h.metrics.Counter(observability.MetricCacheHits, 1, viewAdvice)
			return newAdviceDTO(query.UserID, day, ws.Sessions, cards), nil
		}
		h.metrics.Counter(observability.MetricCacheMisses, 1, viewAdvice)
	}

	agg, err := h.aggregates.Handle(ctx, GetDailyAggregateQuery{UserID: query.UserID, Date: query.Date})
	if err != nil {
		return nil, err
	}
	cards := domain.GenerateAdvice(agg)

	if useCache {
		if err := h.cache.SetAdvice(ctx, query.UserID, day, stamp, cards); err != nil {
			h.logger.WarnContext(ctx, "advice cache write failed",
				observability.UserIDKey, query.UserID, observability.DayKey, day, observability.ErrorKey, err)
		}
	}
	return newAdviceDTO(query.UserID, day, agg.SessionCount, cards), nil
}
