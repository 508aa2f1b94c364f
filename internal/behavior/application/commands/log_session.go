package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// LogSessionCommand records one session of app use. Category fields take raw
// answers; unrecognised values are kept as "unknown".
type LogSessionCommand struct {
	UserID          uuid.UUID
	AppID           string
	DurationMinutes int
	// CreatedAt defaults to now. TimeBucket is derived from it when empty.
	CreatedAt  time.Time
	TimeBucket string

	Triggers   []string
	Goal       string
	Activities []string
	Content    []string
	Location   string
	Multitask  string

	MoodDelta             int
	SelfRatedProductivity int
}

func (LogSessionCommand) CommandName() string { return "behavior.log_session" }

// LogSessionResult is the stored session and its local calendar day.
type LogSessionResult struct {
	Session *domain.Session
	Day     string
}

// LogSessionHandler scores and stores sessions.
type LogSessionHandler struct {
	baselines domain.BaselineRepository
	sessions  domain.SessionRepository
	uow       sharedApplication.UnitOfWork
	cache     domain.AggregateCache
	events    EventPublisher
	metrics   observability.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

var _ sharedApplication.CommandHandler[LogSessionCommand, *LogSessionResult] = (*LogSessionHandler)(nil)

// NewLogSessionHandler creates a LogSessionHandler. cache and events may be nil.
func NewLogSessionHandler(
	baselines domain.BaselineRepository,
	sessions domain.SessionRepository,
	uow sharedApplication.UnitOfWork,
	cache domain.AggregateCache,
	events EventPublisher,
	metrics observability.Metrics,
	logger *slog.Logger,
) *LogSessionHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSessionHandler{
		baselines: baselines,
		sessions:  sessions,
		uow:       uow,
		cache:     cache,
		events:    events,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle scores the session with the current formula and stores it. A user
// without a baseline gets a ConfigurationError and nothing is stored.
func (h *LogSessionHandler) Handle(ctx context.Context, cmd LogSessionCommand) (*LogSessionResult, error) {
	var result *LogSessionResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		baseline, err := h.baselines.FindByUser(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if err := baseline.Validate(); err != nil {
			return err
		}

		session := h.buildSession(cmd, baseline.Location())
		if err := session.Validate(); err != nil {
			return err
		}

		score, err := domain.ScoreSession(session, baseline, domain.CurrentFormula)
		if err != nil {
			return err
		}
		if err := session.ApplyScore(score); err != nil {
			return err
		}
		if err := h.sessions.Create(txCtx, session); err != nil {
			return err
		}

		result = &LogSessionResult{
			Session: session,
			Day:     domain.DayWindow(session.CreatedAt, baseline.Location()).Label(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s := result.Session
	version := observability.T("formula", string(s.FormulaVersion))
	h.metrics.Counter(observability.MetricSessionsScored, 1, version)
	h.metrics.Histogram(observability.MetricScoreRaw, s.RawScore, version)

	invalidateDay(ctx, h.cache, h.logger, s.UserID, result.Day)

	if h.events != nil {
		event := domain.NewSessionLogged(s, result.Day)
		event.SetMetadata(sharedApplication.NewEventMetadata(ctx, s.UserID))
		_ = h.events.PublishEvents(ctx, event)
	}

	h.logger.InfoContext(ctx, "session logged",
		observability.UserIDKey, s.UserID,
		observability.DayKey, result.Day,
		"session_id", s.ID,
		"app_id", s.AppID,
		"raw_score", s.RawScore,
		"delta_points", s.DeltaPoints,
	)
	return result, nil
}

func (h *LogSessionHandler) buildSession(cmd LogSessionCommand, loc *time.Location) *domain.Session {
	createdAt := cmd.CreatedAt
	if createdAt.IsZero() {
		createdAt = h.now()
	}

	bucket := domain.ParseTimeBucket(cmd.TimeBucket)
	if cmd.TimeBucket == "" {
		bucket = domain.BucketForTime(createdAt.In(loc))
	}

	return domain.NewSession(cmd.UserID, cmd.AppID, cmd.DurationMinutes, createdAt).
		WithTriggers(domain.ParseTriggers(cmd.Triggers)...).
		WithGoal(domain.ParseGoal(cmd.Goal)).
		WithActivities(domain.ParseActivities(cmd.Activities)...).
		WithContent(domain.ParseContentTypes(cmd.Content)...).
		WithContext(bucket, domain.ParseLocation(cmd.Location), domain.ParseMultitask(cmd.Multitask)).
		WithSelfReport(cmd.MoodDelta, cmd.SelfRatedProductivity)
}
