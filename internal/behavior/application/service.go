// Package application exposes the behavior use cases to the adapters.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/commands"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/queries"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// Dependencies are the ports the service is built from. Cache and Events may be nil.
type Dependencies struct {
	Baselines         domain.BaselineRepository
	Sessions          domain.SessionRepository
	Digests           domain.DigestRepository
	UnitOfWork        sharedApplication.UnitOfWork
	Cache             domain.AggregateCache
	Events            commands.EventPublisher
	Metrics           observability.Metrics
	Logger            *slog.Logger
	DigestConcurrency int
}

// Service is the single entry point used by the CLI, HTTP and MCP adapters.
type Service struct {
	saveBaseline *commands.SaveBaselineHandler
	logSession   *commands.LogSessionHandler
	runDigest    *commands.RunDigestHandler

	getBaseline     *queries.GetBaselineHandler
	listSessions    *queries.ListSessionsHandler
	dailyAggregate  *queries.GetDailyAggregateHandler
	periodAggregate *queries.GetPeriodAggregateHandler
	advice          *queries.GetAdviceHandler
	periodAdvice    *queries.GetPeriodAdviceHandler
	digest          *queries.GetDigestHandler
	progress        *queries.GetProgressHandler
}

// NewService wires every handler.
func NewService(deps Dependencies) *Service {
	if deps.Metrics == nil {
		deps.Metrics = observability.NoopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	events, cache := deps.Events, deps.Cache

	daily := queries.NewGetDailyAggregateHandler(deps.Baselines, deps.Sessions, cache, deps.Metrics, deps.Logger)
	period := queries.NewGetPeriodAggregateHandler(deps.Baselines, deps.Sessions)
	return &Service{
		saveBaseline: commands.NewSaveBaselineHandler(deps.Baselines, deps.UnitOfWork, cache, events, deps.Logger),
		logSession:   commands.NewLogSessionHandler(deps.Baselines, deps.Sessions, deps.UnitOfWork, cache, events, deps.Metrics, deps.Logger),
		runDigest: commands.NewRunDigestHandler(deps.Baselines, deps.Sessions, deps.Digests, events,
			deps.Metrics, deps.Logger, deps.DigestConcurrency),

		getBaseline:     queries.NewGetBaselineHandler(deps.Baselines),
		listSessions:    queries.NewListSessionsHandler(deps.Baselines, deps.Sessions),
		dailyAggregate:  daily,
		periodAggregate: period,
		advice:          queries.NewGetAdviceHandler(deps.Baselines, deps.Sessions, daily, cache, deps.Metrics, deps.Logger),
		periodAdvice:    queries.NewGetPeriodAdviceHandler(period),
		digest:          queries.NewGetDigestHandler(deps.Digests),
		progress:        queries.NewGetProgressHandler(deps.Baselines, deps.Sessions),
	}
}

func (s *Service) SaveBaseline(ctx context.Context, cmd commands.SaveBaselineCommand) (*domain.Baseline, error) {
	return s.saveBaseline.Handle(ctx, cmd)
}

func (s *Service) Baseline(ctx context.Context, userID uuid.UUID) (*domain.Baseline, error) {
	return s.getBaseline.Handle(ctx, queries.GetBaselineQuery{UserID: userID})
}

func (s *Service) LogSession(ctx context.Context, cmd commands.LogSessionCommand) (*commands.LogSessionResult, error) {
	return s.logSession.Handle(ctx, cmd)
}

func (s *Service) ListSessions(ctx context.Context, userID uuid.UUID, date time.Time) ([]queries.SessionDTO, error) {
	return s.listSessions.Handle(ctx, queries.ListSessionsQuery{UserID: userID, Date: date})
}

func (s *Service) DailyAggregate(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyAggregate, error) {
	return s.dailyAggregate.Handle(ctx, queries.GetDailyAggregateQuery{UserID: userID, Date: date})
}

func (s *Service) PeriodAggregate(ctx context.Context, userID uuid.UUID, start time.Time, days int) (*domain.DailyAggregate, error) {
	return s.periodAggregate.Handle(ctx, queries.GetPeriodAggregateQuery{UserID: userID, Start: start, Days: days})
}

func (s *Service) Advice(ctx context.Context, userID uuid.UUID, date time.Time) (*queries.AdviceDTO, error) {
	return s.advice.Handle(ctx, queries.GetAdviceQuery{UserID: userID, Date: date})
}

// PeriodAdvice runs the advice rules over days calendar days from start.
func (s *Service) PeriodAdvice(ctx context.Context, userID uuid.UUID, start time.Time, days int) (*queries.AdviceDTO, error) {
	return s.periodAdvice.Handle(ctx, queries.GetPeriodAdviceQuery{UserID: userID, Start: start, Days: days})
}

// RunDigest digests one calendar day for every user whose day has ended.
func (s *Service) RunDigest(ctx context.Context, day time.Time) (*commands.RunDigestResult, error) {
	return s.runDigest.Handle(ctx, commands.RunDigestCommand{Day: day})
}

// ExecuteDigest runs a digest command as given, for callers that track users across runs.
func (s *Service) ExecuteDigest(ctx context.Context, cmd commands.RunDigestCommand) (*commands.RunDigestResult, error) {
	return s.runDigest.Handle(ctx, cmd)
}

func (s *Service) Digest(ctx context.Context, userID uuid.UUID, date time.Time) (*domain.DailyDigest, error) {
	return s.digest.Handle(ctx, queries.GetDigestQuery{UserID: userID, Date: date})
}

// Progress compares use since the baseline was created with its goals.
func (s *Service) Progress(ctx context.Context, userID uuid.UUID) (*domain.Progress, error) {
	return s.progress.Handle(ctx, queries.GetProgressQuery{UserID: userID})
}
