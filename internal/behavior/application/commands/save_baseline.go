package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedApplication "github.com/felixgeelhaar/behaviortracker/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/behaviortracker/internal/shared/domain"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

// SaveBaselineCommand creates or replaces a user's baseline. Rule maps take
// raw category values; positive numbers mean productive.
type SaveBaselineCommand struct {
	UserID                     uuid.UUID
	DailyMinutesGoal           int
	NegativeMoodIsUnproductive bool
	// UnproductiveTolerancePct defaults to domain.DefaultUnproductiveTolerancePct when nil.
	UnproductiveTolerancePct *float64
	// GoalProductivityPct defaults to domain.DefaultGoalProductivityPct when nil.
	GoalProductivityPct *int
	Timezone            string

	Triggers   map[string]int
	Goals      map[string]int
	Activities map[string]int
	Content    map[string]int
}

func (SaveBaselineCommand) CommandName() string { return "behavior.save_baseline" }

// SaveBaselineHandler handles SaveBaselineCommand.
type SaveBaselineHandler struct {
	baselines domain.BaselineRepository
	uow       sharedApplication.UnitOfWork
	cache     domain.AggregateCache
	events    EventPublisher
	logger    *slog.Logger
}

var _ sharedApplication.CommandHandler[SaveBaselineCommand, *domain.Baseline] = (*SaveBaselineHandler)(nil)

// NewSaveBaselineHandler creates a SaveBaselineHandler. cache and events may be nil.
func NewSaveBaselineHandler(
	baselines domain.BaselineRepository,
	uow sharedApplication.UnitOfWork,
	cache domain.AggregateCache,
	events EventPublisher,
	logger *slog.Logger,
) *SaveBaselineHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SaveBaselineHandler{baselines: baselines, uow: uow, cache: cache, events: events, logger: logger}
}

// Handle validates and stores the baseline. A replaced baseline keeps its creation time.
func (h *SaveBaselineHandler) Handle(ctx context.Context, cmd SaveBaselineCommand) (*domain.Baseline, error) {
	baseline := buildBaseline(cmd)
	if err := baseline.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidBaseline, err)
	}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		existing, err := h.baselines.FindByUser(txCtx, cmd.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			baseline.CreatedAt = existing.CreatedAt
		}
		return h.baselines.Save(txCtx, baseline)
	})
	if err != nil {
		return nil, err
	}

	// A new time zone moves every day window.
	invalidateDay(ctx, h.cache, h.logger, cmd.UserID, "")

	event := domain.NewBaselineUpdated(baseline)
	h.publish(ctx, cmd.UserID, event)

	h.logger.InfoContext(ctx, "baseline saved",
		observability.UserIDKey, cmd.UserID,
		"daily_minutes_goal", baseline.DailyMinutesGoal,
		"timezone", baseline.Timezone,
	)
	return baseline, nil
}

func (h *SaveBaselineHandler) publish(ctx context.Context, userID uuid.UUID, events ...sharedDomain.DomainEvent) {
	if h.events == nil {
		return
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, userID))
	// Delivery failures are logged and counted by the publisher.
	_ = h.events.PublishEvents(ctx, events...)
}

func buildBaseline(cmd SaveBaselineCommand) *domain.Baseline {
	b := domain.NewBaseline(cmd.UserID, cmd.DailyMinutesGoal)
	b.NegativeMoodIsUnproductive = cmd.NegativeMoodIsUnproductive
	if cmd.UnproductiveTolerancePct != nil {
		b.UnproductiveTolerancePct = *cmd.UnproductiveTolerancePct
	}
	if cmd.GoalProductivityPct != nil {
		b.GoalProductivityPct = *cmd.GoalProductivityPct
	}
	if cmd.Timezone != "" {
		b.Timezone = cmd.Timezone
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	for raw, p := range cmd.Triggers {
		b.SetTrigger(domain.ParseTrigger(raw), domain.ParsePolarity(p))
	}
	for raw, p := range cmd.Goals {
		b.SetGoal(domain.ParseGoal(raw), domain.ParsePolarity(p))
	}
	for raw, p := range cmd.Activities {
		b.SetActivity(domain.ParseActivity(raw), domain.ParsePolarity(p))
	}
	for raw, p := range cmd.Content {
		b.SetContent(domain.ParseContentType(raw), domain.ParsePolarity(p))
	}
	return b
}
