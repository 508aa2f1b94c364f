package domain

import (
	"time"

	"github.com/google/uuid"
)

// Polarity is the user's own judgment of a category value.
type Polarity int

const (
	PolarityUnproductive Polarity = -1
	PolarityNeutral      Polarity = 0
	PolarityProductive   Polarity = 1
)

// DefaultUnproductiveTolerancePct is the share of daily minutes that may be
// unproductive before the digest applies a penalty.
const DefaultUnproductiveTolerancePct = 20.0

// DefaultGoalProductivityPct is the day productivity a user aims for when
// they set none.
const DefaultGoalProductivityPct = 50

// CategoryRules maps category values to the user's polarity.
// Values without an entry score as unproductive.
type CategoryRules struct {
	Triggers   map[Trigger]Polarity
	Goals      map[Goal]Polarity
	Activities map[Activity]Polarity
	Content    map[ContentType]Polarity
}

// NewCategoryRules returns empty rules.
func NewCategoryRules() CategoryRules {
	return CategoryRules{
		Triggers:   make(map[Trigger]Polarity),
		Goals:      make(map[Goal]Polarity),
		Activities: make(map[Activity]Polarity),
		Content:    make(map[ContentType]Polarity),
	}
}

// Baseline is the user-authored configuration the score is computed against.
type Baseline struct {
	UserID                     uuid.UUID
	DailyMinutesGoal           int
	CategoryRules              CategoryRules
	NegativeMoodIsUnproductive bool
	UnproductiveTolerancePct   float64
	// GoalProductivityPct is the minute-weighted day productivity (0..100)
	// a day needs to count as on track.
	GoalProductivityPct int
	Timezone            string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseline creates a baseline with empty rules.
func NewBaseline(userID uuid.UUID, dailyMinutesGoal int) *Baseline {
	now := time.Now()
	return &Baseline{
		UserID:                   userID,
		DailyMinutesGoal:         dailyMinutesGoal,
		CategoryRules:            NewCategoryRules(),
		UnproductiveTolerancePct: DefaultUnproductiveTolerancePct,
		GoalProductivityPct:      DefaultGoalProductivityPct,
		Timezone:                 "UTC",
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

// Validate checks that the baseline can be used for scoring.
func (b *Baseline) Validate() error {
	if b == nil {
		return NewConfigurationError("baseline", "not set up", nil)
	}
	if b.DailyMinutesGoal <= 0 {
		return NewConfigurationError("dailyMinutesGoal", "must be positive", b.DailyMinutesGoal)
	}
	if b.UnproductiveTolerancePct < 0 || b.UnproductiveTolerancePct > 100 {
		return NewConfigurationError("unproductiveTolerancePct", "must be within 0..100", b.UnproductiveTolerancePct)
	}
	if b.GoalProductivityPct < 0 || b.GoalProductivityPct > 100 {
		return NewConfigurationError("goalProductivityPct", "must be within 0..100", b.GoalProductivityPct)
	}
	if _, err := time.LoadLocation(b.Timezone); err != nil {
		return NewConfigurationError("timezone", "unknown time zone", b.Timezone)
	}
	return nil
}

// Location returns the baseline's time zone, defaulting to UTC.
func (b *Baseline) Location() *time.Location {
	if b == nil || b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SetTrigger records the polarity for a trigger.
func (b *Baseline) SetTrigger(t Trigger, p Polarity) *Baseline {
	b.ensureRules()
	b.CategoryRules.Triggers[t] = p
	return b
}

// SetGoal records the polarity for a goal.
func (b *Baseline) SetGoal(g Goal, p Polarity) *Baseline {
	b.ensureRules()
	b.CategoryRules.Goals[g] = p
	return b
}

// SetActivity records the polarity for an activity.
func (b *Baseline) SetActivity(a Activity, p Polarity) *Baseline {
	b.ensureRules()
	b.CategoryRules.Activities[a] = p
	return b
}

// SetContent records the polarity for a content type.
func (b *Baseline) SetContent(c ContentType, p Polarity) *Baseline {
	b.ensureRules()
	b.CategoryRules.Content[c] = p
	return b
}

func (b *Baseline) ensureRules() {
	if b.CategoryRules.Triggers == nil {
		b.CategoryRules.Triggers = make(map[Trigger]Polarity)
	}
	if b.CategoryRules.Goals == nil {
		b.CategoryRules.Goals = make(map[Goal]Polarity)
	}
	if b.CategoryRules.Activities == nil {
		b.CategoryRules.Activities = make(map[Activity]Polarity)
	}
	if b.CategoryRules.Content == nil {
		b.CategoryRules.Content = make(map[ContentType]Polarity)
	}
}

// Touch updates the modification time.
func (b *Baseline) Touch() {
	b.UpdatedAt = time.Now()
}

// ParsePolarity clamps any integer to a Polarity.
func ParsePolarity(v int) Polarity {
	switch {
	case v > 0:
		return PolarityProductive
	case v < 0:
		return PolarityUnproductive
	default:
		return PolarityNeutral
	}
}
