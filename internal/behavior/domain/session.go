package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FormulaVersion identifies the score formula a session was scored with.
type FormulaVersion string

const (
	// FormulaResearchV1 is the legacy yes/no research formula, scored 0..1.
	FormulaResearchV1 FormulaVersion = "v1-research"
	// FormulaWeightedV2 is the weighted-sum formula, scored -1..1.
	FormulaWeightedV2 FormulaVersion = "v2-weighted"

	// CurrentFormula is used for every newly logged session.
	CurrentFormula = FormulaWeightedV2
)

// Self-report ranges.
const (
	MinMood          = -2
	MaxMood          = 2
	MinSelfRating    = -2
	MaxSelfRating    = 2
	MaxSessionLength = 24 * 60
)

// Session is one logged instance of social-media use. It is append-only:
// the score fields are derived once and never change.
type Session struct {
	ID     uuid.UUID
	UserID uuid.UUID
	AppID  string

	DurationMinutes int
	TimeBucket      TimeBucket

	Triggers   []Trigger
	Goal       Goal
	Activities []Activity
	Content    []ContentType
	Location   Location
	Multitask  Multitask

	MoodDelta             int
	SelfRatedProductivity int

	CreatedAt time.Time

	FormulaVersion FormulaVersion
	RawScore       float64
	DeltaPoints    int
}

// NewSession creates an unscored session.
func NewSession(userID uuid.UUID, appID string, durationMinutes int, createdAt time.Time) *Session {
	return &Session{
		ID:              uuid.New(),
		UserID:          userID,
		AppID:           strings.TrimSpace(appID),
		DurationMinutes: durationMinutes,
		TimeBucket:      TimeBucketUnknown,
		Goal:            GoalUnknown,
		Location:        LocationUnknown,
		Multitask:       MultitaskUnknown,
		CreatedAt:       createdAt,
	}
}

// WithTriggers sets the trigger selection.
func (s *Session) WithTriggers(t ...Trigger) *Session {
	s.Triggers = append([]Trigger(nil), t...)
	return s
}

// WithGoal sets the goal.
func (s *Session) WithGoal(g Goal) *Session {
	s.Goal = g
	return s
}

// WithActivities sets the activity selection.
func (s *Session) WithActivities(a ...Activity) *Session {
	s.Activities = append([]Activity(nil), a...)
	return s
}

// WithContent sets the content selection.
func (s *Session) WithContent(c ...ContentType) *Session {
	s.Content = append([]ContentType(nil), c...)
	return s
}

// WithContext sets where and how the session happened.
func (s *Session) WithContext(bucket TimeBucket, loc Location, multitask Multitask) *Session {
	s.TimeBucket = bucket
	s.Location = loc
	s.Multitask = multitask
	return s
}

// WithSelfReport sets the mood change and self-rated productivity.
func (s *Session) WithSelfReport(moodDelta, selfRated int) *Session {
	s.MoodDelta = moodDelta
	s.SelfRatedProductivity = selfRated
	return s
}

// Validate checks the session's invariants. Unknown category values are accepted.
func (s *Session) Validate() error {
	if s.UserID == uuid.Nil {
		return invalidSession("user id is required")
	}
	if s.AppID == "" {
		return invalidSession("app id is required")
	}
	if s.DurationMinutes <= 0 || s.DurationMinutes > MaxSessionLength {
		return invalidSession("duration %d out of range", s.DurationMinutes)
	}
	if s.MoodDelta < MinMood || s.MoodDelta > MaxMood {
		return invalidSession("mood delta %d out of range", s.MoodDelta)
	}
	if s.SelfRatedProductivity < MinSelfRating || s.SelfRatedProductivity > MaxSelfRating {
		return invalidSession("self-rated productivity %d out of range", s.SelfRatedProductivity)
	}
	if s.CreatedAt.IsZero() {
		return invalidSession("created at is required")
	}
	return nil
}

// IsScored reports whether the derived fields have been set.
func (s *Session) IsScored() bool {
	return s.FormulaVersion != ""
}

// ApplyScore stores the derived score. It fails if the session was already scored.
func (s *Session) ApplyScore(result ScoreResult) error {
	if s.IsScored() {
		return ErrSessionAlreadyScored
	}
	s.FormulaVersion = result.FormulaVersion
	s.RawScore = result.RawScore
	s.DeltaPoints = result.DeltaPoints
	return nil
}

// Score returns the session score on the -1..1 scale regardless of formula.
func (s *Session) Score() float64 {
	if s.FormulaVersion == FormulaResearchV1 {
		return s.RawScore*2 - 1
	}
	return s.RawScore
}

// NormalizedScore returns the session score on the 0..1 scale regardless of formula.
func (s *Session) NormalizedScore() float64 {
	if s.FormulaVersion == FormulaResearchV1 {
		return s.RawScore
	}
	return (s.RawScore + 1) / 2
}

// PerceivedProductivity maps the self rating from -2..2 onto 0..1.
func (s *Session) PerceivedProductivity() float64 {
	return float64(s.SelfRatedProductivity+2) / 4
}

// HasTrigger reports whether t is among the session's triggers.
func (s *Session) HasTrigger(t Trigger) bool {
	for _, v := range s.Triggers {
		if v == t {
			return true
		}
	}
	return false
}
