package domain

import (
	"math"
	"time"
)

// lowUsageShare is the share of the daily goal below which a day is too
// light to judge.
const lowUsageShare = 0.25

// DayStatus is the verdict on one finished day against the baseline goals.
type DayStatus string

const (
	// DayStatusUndecided covers days still running and days before the baseline existed.
	DayStatusUndecided DayStatus = "undecided"
	DayStatusNoData    DayStatus = "no_data"
	DayStatusLowUsage  DayStatus = "low_usage"
	DayStatusOnTrack   DayStatus = "on_track"
	DayStatusOffTrack  DayStatus = "off_track"
)

// DayUsage is what a day is judged on. ProductivityPct is the
// minute-weighted mean of the 0..1 session score, as a whole percentage.
type DayUsage struct {
	Window          Window
	SessionCount    int
	TotalMinutes    int
	ProductivityPct int
}

// ClassifyDay judges a day. A day is on track when it stays within the
// minutes goal and reaches the productivity goal; very light days are
// reported as low usage instead.
func ClassifyDay(u DayUsage, baseline *Baseline, now time.Time) DayStatus {
	if baseline.Validate() != nil {
		return DayStatusUndecided
	}
	if u.Window.End.After(now) {
		return DayStatusUndecided
	}
	if u.Window.Start.Before(DayWindow(baseline.CreatedAt, baseline.Location()).Start) {
		return DayStatusUndecided
	}
	if u.SessionCount == 0 {
		return DayStatusNoData
	}

	goal := baseline.DailyMinutesGoal
	if float64(u.TotalMinutes) < lowUsageShare*float64(goal) {
		return DayStatusLowUsage
	}
	if u.TotalMinutes <= goal && u.ProductivityPct >= baseline.GoalProductivityPct {
		return DayStatusOnTrack
	}
	return DayStatusOffTrack
}

// Progress compares use since the baseline was set up with its goals.
type Progress struct {
	Since time.Time
	// Days is the time since Since in days, at least one.
	Days            float64
	SessionCount    int
	TotalMinutes    int
	AvgDailyMinutes int
	// AvgScorePct is the minute-weighted mean of the 0..1 session score as
	// a whole percentage, comparable with GoalProductivityPct.
	AvgScorePct         int
	DailyMinutesGoal    int
	GoalProductivityPct int
}

// ComputeProgress averages every session since the baseline was created.
func ComputeProgress(sessions []*Session, baseline *Baseline, now time.Time) (*Progress, error) {
	if err := baseline.Validate(); err != nil {
		return nil, err
	}

	p := &Progress{
		Since:               baseline.CreatedAt,
		Days:                math.Max(1, now.Sub(baseline.CreatedAt).Hours()/24),
		DailyMinutesGoal:    baseline.DailyMinutesGoal,
		GoalProductivityPct: baseline.GoalProductivityPct,
	}

	var weighted float64
	for _, s := range sessions {
		if s == nil || s.CreatedAt.Before(baseline.CreatedAt) || s.CreatedAt.After(now) {
			continue
		}
		p.SessionCount++
		p.TotalMinutes += s.DurationMinutes
		weighted += s.NormalizedScore() * float64(s.DurationMinutes)
	}

	p.AvgDailyMinutes = int(math.Round(float64(p.TotalMinutes) / p.Days))
	if p.TotalMinutes > 0 {
		p.AvgScorePct = int(math.Round(weighted / float64(p.TotalMinutes) * 100))
	}
	return p, nil
}
