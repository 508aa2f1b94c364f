package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Digest penalty weights.
const (
	overMinutesPenaltyWeight  = 30.0
	unproductivePenaltyWeight = 20.0

	lateNightTipMinutes = 60
	lowScoreTip         = 50.0
)

// Digest tips.
const (
	TipLateNight       = "Keep late-night scrolling under 60 min."
	TipProductiveFirst = "Open the apps you find useful first to lift your score."
)

// DailyDigest is the coarse 0..100 day score produced by the digest job.
// It is computed separately from the per-session score.
type DailyDigest struct {
	UserID              uuid.UUID
	Day                 string
	SessionCount        int
	TotalMinutes        int
	WeightedMeanScore   float64
	OverMinutesPenalty  float64
	UnproductivePenalty float64
	FinalScore          float64
	Status              DayStatus
	Periods             []PeriodMetrics
	Advice              []AdviceCard
	Tips                []string
	ComputedAt          time.Time
}

// ComputeDigest scores one window of sessions against the baseline.
func ComputeDigest(sessions []*Session, baseline *Baseline, window Window) (*DailyDigest, error) {
	if err := baseline.Validate(); err != nil {
		return nil, err
	}

	agg := Aggregate(baseline.UserID, sessions, window)
	digest := &DailyDigest{
		UserID:       baseline.UserID,
		Day:          window.Label(),
		SessionCount: agg.SessionCount,
		TotalMinutes: agg.TotalMinutes,
		Advice:       GenerateAdvice(agg),
		Tips:         []string{},
		ComputedAt:   time.Now().UTC(),
	}

	goal := float64(baseline.DailyMinutesGoal)
	total := float64(agg.TotalMinutes)

	inWindow := make([]*Session, 0, len(sessions))
	for _, s := range sessions {
		if s != nil && window.Contains(s.CreatedAt) {
			inWindow = append(inWindow, s)
		}
	}
	digest.Periods = ComputePeriodMetrics(inWindow)

	if agg.TotalMinutes > 0 {
		var weighted float64
		for _, s := range inWindow {
			weighted += s.NormalizedScore() * float64(s.DurationMinutes)
		}
		digest.WeightedMeanScore = weighted / total
	}

	digest.OverMinutesPenalty = overMinutesPenaltyWeight * math.Max(0, total-goal) / goal
	allowed := baseline.UnproductiveTolerancePct / 100 * total
	digest.UnproductivePenalty = unproductivePenaltyWeight * math.Max(0, float64(agg.UnproductiveMinutes)-allowed) / goal

	final := digest.WeightedMeanScore*100 - digest.OverMinutesPenalty - digest.UnproductivePenalty
	digest.FinalScore = math.Max(0, math.Min(100, final))

	digest.Status = ClassifyDay(DayUsage{
		Window:          window,
		SessionCount:    agg.SessionCount,
		TotalMinutes:    agg.TotalMinutes,
		ProductivityPct: int(math.Round(digest.WeightedMeanScore * 100)),
	}, baseline, digest.ComputedAt)

	if agg.LateNightMinutes > lateNightTipMinutes {
		digest.Tips = append(digest.Tips, TipLateNight)
	}
	if agg.SessionCount > 0 && digest.FinalScore < lowScoreTip {
		digest.Tips = append(digest.Tips, TipProductiveFirst)
	}
	return digest, nil
}
