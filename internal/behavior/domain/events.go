package domain

import (
	sharedDomain "github.com/felixgeelhaar/behaviortracker/internal/shared/domain"
	"github.com/google/uuid"
)

// Routing keys of behavior events.
const (
	RoutingKeySessionLogged   = "behavior.session.logged"
	RoutingKeyBaselineUpdated = "behavior.baseline.updated"
	RoutingKeyDigestComputed  = "behavior.digest.computed"
)

const (
	sessionAggregateType  = "Session"
	baselineAggregateType = "Baseline"
	digestAggregateType   = "DailyDigest"
)

// SessionLogged is emitted after a session has been scored and stored.
// Day is the session's local calendar day in the baseline time zone.
type SessionLogged struct {
	sharedDomain.BaseEvent
	SessionID      uuid.UUID      `json:"session_id"`
	UserID         uuid.UUID      `json:"user_id"`
	AppID          string         `json:"app_id"`
	Day            string         `json:"day"`
	FormulaVersion FormulaVersion `json:"formula_version"`
	RawScore       float64        `json:"raw_score"`
	DeltaPoints    int            `json:"delta_points"`
}

// NewSessionLogged creates a SessionLogged event.
func NewSessionLogged(s *Session, day string) *SessionLogged {
	e := &SessionLogged{
		BaseEvent:      sharedDomain.NewBaseEvent(s.ID, sessionAggregateType, RoutingKeySessionLogged),
		SessionID:      s.ID,
		UserID:         s.UserID,
		AppID:          s.AppID,
		Day:            day,
		FormulaVersion: s.FormulaVersion,
		RawScore:       s.RawScore,
		DeltaPoints:    s.DeltaPoints,
	}
	e.SetMetadata(sharedDomain.EventMetadata{UserID: s.UserID})
	return e
}

// BaselineUpdated is emitted when a user's baseline is created or replaced.
type BaselineUpdated struct {
	sharedDomain.BaseEvent
	UserID           uuid.UUID `json:"user_id"`
	DailyMinutesGoal int       `json:"daily_minutes_goal"`
	Timezone         string    `json:"timezone"`
}

// NewBaselineUpdated creates a BaselineUpdated event.
func NewBaselineUpdated(b *Baseline) *BaselineUpdated {
	e := &BaselineUpdated{
		BaseEvent:        sharedDomain.NewBaseEvent(b.UserID, baselineAggregateType, RoutingKeyBaselineUpdated),
		UserID:           b.UserID,
		DailyMinutesGoal: b.DailyMinutesGoal,
		Timezone:         b.Timezone,
	}
	e.SetMetadata(sharedDomain.EventMetadata{UserID: b.UserID})
	return e
}

// DigestComputed is emitted by the digest job for every stored digest.
type DigestComputed struct {
	sharedDomain.BaseEvent
	UserID     uuid.UUID `json:"user_id"`
	Day        string    `json:"day"`
	FinalScore float64   `json:"final_score"`
	Tips       []string  `json:"tips"`
}

// NewDigestComputed creates a DigestComputed event.
func NewDigestComputed(d *DailyDigest) *DigestComputed {
	e := &DigestComputed{
		BaseEvent:  sharedDomain.NewBaseEvent(d.UserID, digestAggregateType, RoutingKeyDigestComputed),
		UserID:     d.UserID,
		Day:        d.Day,
		FinalScore: d.FinalScore,
		Tips:       d.Tips,
	}
	e.SetMetadata(sharedDomain.EventMetadata{UserID: d.UserID})
	return e
}
