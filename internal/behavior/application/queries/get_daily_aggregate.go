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

// GetDailyAggregateQuery asks for one user's aggregate of a calendar day.
type GetDailyAggregateQuery struct {
	UserID uuid.UUID
	Date   time.Time
}

func (GetDailyAggregateQuery) QueryName() string { return "behavior.daily_aggregate" }

// GetDailyAggregateHandler reads through the aggregate cache.
type GetDailyAggregateHandler struct {
	baselines domain.BaselineRepository
	sessions  domain.SessionRepository
	cache     domain.AggregateCache
	metrics   observability.Metrics
	logger    *slog.Logger
}

var _ sharedApplication.QueryHandler[GetDailyAggregateQuery, *domain.DailyAggregate] = (*GetDailyAggregateHandler)(nil)

// NewGetDailyAggregateHandler creates a handler. cache may be nil.
func NewGetDailyAggregateHandler(
	baselines domain.BaselineRepository,
	sessions domain.SessionRepository,
	cache domain.AggregateCache,
	metrics observability.Metrics,
	logger *slog.Logger,
) *GetDailyAggregateHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GetDailyAggregateHandler{
		baselines: baselines,
		sessions:  sessions,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle returns the cached aggregate when it was computed from the sessions
// currently stored for the day. Cache failures are logged and the aggregate
// is recomputed from storage.
func (h *GetDailyAggregateHandler) Handle(ctx context.Context, query GetDailyAggregateQuery) (*domain.DailyAggregate, error) {
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

		agg, ok, err := h.cache.GetAggregate(ctx, query.UserID, day, stamp)
		switch {
		case err != nil:
			h.cacheError(ctx, "read", query.UserID, day, err)
		case ok:
			h.metrics.Counter(observability.MetricCacheHits, 1, viewAggregate)
			return agg, nil
		}
		h.metrics.Counter(observability.MetricCacheMisses, 1, viewAggregate)
	}

	sessions, err := h.sessions.FindByUserAndRange(ctx, query.UserID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	agg := domain.Aggregate(query.UserID, sessions, window)

	if useCache {
		if err := h.cache.SetAggregate(ctx, agg, day, stamp); err != nil {
			h.cacheError(ctx, "write", query.UserID, day, err)
		}
	}
	return agg, nil
}

func (h *GetDailyAggregateHandler) cacheError(ctx context.Context, op string, userID uuid.UUID, day string, err error) {
	h.logger.WarnContext(ctx, "aggregate cache "+op+" failed",
		observability.UserIDKey, userID,
		observability.DayKey, day,
		observability.ErrorKey, err,
	)
}

var (
	viewAggregate = observability.T("view", "aggregate")
	viewAdvice    = observability.T("view", "advice")
)
