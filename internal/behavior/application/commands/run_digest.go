package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// DefaultDigestConcurrency bounds how many users are digested at once.
const DefaultDigestConcurrency = 4

// RunDigestCommand computes the digest of one calendar day for every user
// with a baseline. The day is read in each user's own time zone, and a user
// whose day has not ended by Now is left pending. A zero Now is the current
// time. Users in Skip are not read.
type RunDigestCommand struct {
	Day  time.Time
	Now  time.Time
	Skip []uuid.UUID
}

func (RunDigestCommand) CommandName() string { return "behavior.run_digest" }

// DigestFailure records a user whose digest could not be produced.
type DigestFailure struct {
	UserID uuid.UUID
	Err    error
}

// RunDigestResult lists the stored digests, the failures and the users whose
// day is still open, each ordered by user id.
type RunDigestResult struct {
	Day      string
	Digests  []*domain.DailyDigest
	Failures []DigestFailure
	Pending  []uuid.UUID
}

var errDayOpen = errors.New("day not over")

// RunDigestHandler handles RunDigestCommand.
type RunDigestHandler struct {
	baselines   domain.BaselineRepository
	sessions    domain.SessionRepository
	digests     domain.DigestRepository
	events      EventPublisher
	metrics     observability.Metrics
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

var _ sharedApplication.CommandHandler[RunDigestCommand, *RunDigestResult] = (*RunDigestHandler)(nil)

// NewRunDigestHandler creates a RunDigestHandler. concurrency < 1 uses the default.
func NewRunDigestHandler(
	baselines domain.BaselineRepository,
	sessions domain.SessionRepository,
	digests domain.DigestRepository,
	events EventPublisher,
	metrics observability.Metrics,
	logger *slog.Logger,
	concurrency int,
) *RunDigestHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = DefaultDigestConcurrency
	}
	return &RunDigestHandler{
		baselines:   baselines,
		sessions:    sessions,
		digests:     digests,
		events:      events,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Handle digests every user. A failing user is recorded and skipped; only a
// failure to list users or a cancelled context fails the whole run.
func (h *RunDigestHandler) Handle(ctx context.Context, cmd RunDigestCommand) (result *RunDigestResult, err error) {
	timer := observability.StartTimer(observability.MetricDigestDuration).
		WithLogger(h.logger).
		WithMetrics(h.metrics)
	defer func() { timer.StopWithError(err) }()

	userIDs, err := h.baselines.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	now := cmd.Now
	if now.IsZero() {
		now = h.now()
	}
	skip := make(map[uuid.UUID]bool, len(cmd.Skip))
	for _, id := range cmd.Skip {
		skip[id] = true
	}

	result = &RunDigestResult{Day: cmd.Day.Format(time.DateOnly)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.concurrency)
	for _, userID := range userIDs {
		if skip[userID] {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			digest, err := h.digestUser(gctx, userID, cmd.Day, now)

			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, errDayOpen) {
				result.Pending = append(result.Pending, userID)
				return nil
			}
			if err != nil {
				result.Failures = append(result.Failures, DigestFailure{UserID: userID, Err: err})
				h.metrics.Counter(observability.MetricDigestFailures, 1)
				h.logger.ErrorContext(gctx, "digest failed",
					observability.UserIDKey, userID,
					observability.DayKey, result.Day,
					observability.ErrorKey, err,
				)
				return nil
			}
			result.Digests = append(result.Digests, digest)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.Digests, func(i, j int) bool {
		return result.Digests[i].UserID.String() < result.Digests[j].UserID.String()
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].UserID.String() < result.Failures[j].UserID.String()
	})
	sort.Slice(result.Pending, func(i, j int) bool {
		return result.Pending[i].String() < result.Pending[j].String()
	})

	h.metrics.Gauge(observability.MetricDigestUsers, float64(len(result.Digests)))
	h.logger.InfoContext(ctx, "digest run finished",
		observability.DayKey, result.Day,
		"users", len(userIDs),
		"digests", len(result.Digests),
		"failures", len(result.Failures),
		"pending", len(result.Pending),
	)
	return result, nil
}

func (h *RunDigestHandler) digestUser(ctx context.Context, userID uuid.UUID, day, now time.Time) (*domain.DailyDigest, error) {
	baseline, err := h.baselines.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := baseline.Validate(); err != nil {
		return nil, err
	}

	window := domain.CalendarPeriod(day, 1, baseline.Location())
	if window.End.After(now) {
		return nil, errDayOpen
	}
	sessions, err := h.sessions.FindByUserAndRange(ctx, userID, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	digest, err := domain.ComputeDigest(sessions, baseline, window)
	if err != nil {
		return nil, err
	}
	if err := h.digests.Save(ctx, digest); err != nil {
		return nil, err
	}

	if h.events != nil {
		event := domain.NewDigestComputed(digest)
		event.SetMetadata(sharedApplication.NewEventMetadata(ctx, userID))
		_ = h.events.PublishEvents(ctx, event)
	}
	return digest, nil
}
