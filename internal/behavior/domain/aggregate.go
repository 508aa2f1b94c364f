package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ProductiveThreshold is the score (on the -1..1 scale) at or above which a
// session's minutes count as productive.
const ProductiveThreshold = 0.6

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow returns the calendar day containing date in loc, from local
// midnight to the next local midnight.
func DayWindow(date time.Time, loc *time.Location) Window {
	return PeriodWindow(date, 1, loc)
}

// PeriodWindow returns the window covering days calendar days starting with
// the day containing start in loc.
func PeriodWindow(start time.Time, days int, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	if days < 1 {
		days = 1
	}
	local := start.In(loc)
	begin := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{Start: begin, End: begin.AddDate(0, 0, days)}
}

// CalendarPeriod is PeriodWindow for a date as written: start's year, month
// and day are read in its own location and then placed in loc. Use it for
// user-supplied dates; use PeriodWindow for instants.
func CalendarPeriod(start time.Time, days int, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	return PeriodWindow(time.Date(start.Year(), start.Month(), start.Day(), 12, 0, 0, 0, loc), days, loc)
}

// Contains reports whether t falls inside the window. A zero window contains everything.
func (w Window) Contains(t time.Time) bool {
	if w.Start.IsZero() && w.End.IsZero() {
		return true
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

// Label formats the window start as YYYY-MM-DD.
func (w Window) Label() string {
	return w.Start.Format("2006-01-02")
}

// Dimension is a session attribute the aggregator groups by.
type Dimension string

const (
	DimensionApp        Dimension = "app"
	DimensionTimeBucket Dimension = "time_bucket"
	DimensionTrigger    Dimension = "trigger"
	DimensionGoal       Dimension = "goal"
	DimensionActivity   Dimension = "activity"
	DimensionContent    Dimension = "content"
	DimensionLocation   Dimension = "location"
)

// Dimensions lists every grouped dimension in report order.
var Dimensions = []Dimension{
	DimensionApp,
	DimensionTimeBucket,
	DimensionTrigger,
	DimensionGoal,
	DimensionActivity,
	DimensionContent,
	DimensionLocation,
}

// GroupSummary holds the totals for one value of a dimension.
type GroupSummary struct {
	Key          string
	TotalMinutes int
	SessionCount int
	AvgScore     float64
}

// DimensionSummary ranks the groups of one dimension. Groups are listed in the
// order they were first encountered; ties in the rankings go to the earlier group.
type DimensionSummary struct {
	Dimension       Dimension
	Groups          []GroupSummary
	MostUsed        GroupSummary
	LeastProductive GroupSummary
}

// Duration histogram bin labels.
const (
	BinUnder5     = "<5 min"
	Bin5To15      = "5-15 min"
	Bin15To45     = "15-45 min"
	Bin45AndAbove = "45+ min"
)

// DurationBin counts sessions whose length falls in [LowerMinutes, UpperMinutes).
// An UpperMinutes of zero means unbounded.
type DurationBin struct {
	Label        string
	LowerMinutes int
	UpperMinutes int
	Count        int
	TotalScore   float64
}

// DurationHistogram is the four-bin session length distribution.
// MostFrequent and LeastProductive are tracked as running maxima/minima while
// sessions are visited in time order, so they can name different bins.
type DurationHistogram struct {
	Bins            []DurationBin
	MostFrequent    string
	LeastProductive string
}

// SplitSummary holds totals for one side of a partition.
type SplitSummary struct {
	TotalMinutes int
	SessionCount int
	AvgScore     float64
}

// MultitaskSplit compares focused sessions with multitasking ones.
type MultitaskSplit struct {
	Focused      SplitSummary
	Multitasking SplitSummary
}

// MoodSplit compares sessions that lowered mood with ones that raised it.
// Sessions with no mood change are in neither side.
type MoodSplit struct {
	Negative   SplitSummary
	Positive   SplitSummary
	Difference float64
}

// DailyAggregate summarizes every session of one window.
type DailyAggregate struct {
	UserID uuid.UUID
	Window Window

	SessionCount          int
	TotalMinutes          int
	TotalDeltaPoints      int
	LateNightMinutes      int
	NotificationFraction  float64
	LongestSessionMinutes int
	ProductiveMinutes     int
	UnproductiveMinutes   int
	Productivity          float64
	MoodBoostContent      ContentType

	Dimensions   []DimensionSummary
	Histogram    DurationHistogram
	Multitask    MultitaskSplit
	PerceivedGap float64
	Mood         MoodSplit
}

// IsEmpty reports whether the window had no sessions.
func (a *DailyAggregate) IsEmpty() bool {
	return a == nil || a.SessionCount == 0
}

// Dimension returns the summary for one dimension.
func (a *DailyAggregate) Dimension(d Dimension) (DimensionSummary, bool) {
	for _, s := range a.Dimensions {
		if s.Dimension == d {
			return s, true
		}
	}
	return DimensionSummary{}, false
}

// Aggregate reduces the sessions inside window to a DailyAggregate. The input
// is not modified; sessions are visited in ascending CreatedAt order so ties
// resolve the same way regardless of how the caller ordered them.
func Aggregate(userID uuid.UUID, sessions []*Session, window Window) *DailyAggregate {
	ordered := make([]*Session, 0, len(sessions))
	for _, s := range sessions {
		if s != nil && window.Contains(s.CreatedAt) {
			ordered = append(ordered, s)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	agg := &DailyAggregate{
		UserID:    userID,
		Window:    window,
		Histogram: newHistogram(),
	}

	groups := make(map[Dimension]*groupAccumulator, len(Dimensions))
	for _, d := range Dimensions {
		groups[d] = newGroupAccumulator()
	}
	moodByContent := newGroupAccumulator()
	hist := newHistogramTracker(&agg.Histogram)

	var (
		notificationSessions int
		focused, multi       splitAccumulator
		negative, positive   splitAccumulator
		gapSum               float64
	)

	for _, s := range ordered {
		minutes := s.DurationMinutes
		score := s.Score()

		agg.SessionCount++
		agg.TotalMinutes += minutes
		agg.TotalDeltaPoints += s.DeltaPoints
		if s.TimeBucket == TimeBucketNight {
			agg.LateNightMinutes += minutes
		}
		if s.HasTrigger(TriggerNotification) {
			notificationSessions++
		}
		if minutes > agg.LongestSessionMinutes {
			agg.LongestSessionMinutes = minutes
		}
		if score >= ProductiveThreshold {
			agg.ProductiveMinutes += minutes
		}

		groups[DimensionApp].add(s.AppID, minutes, score)
		groups[DimensionTimeBucket].add(string(s.TimeBucket), minutes, score)
		groups[DimensionGoal].add(string(s.Goal), minutes, score)
		groups[DimensionLocation].add(string(s.Location), minutes, score)
		for _, k := range distinct(s.Triggers) {
			groups[DimensionTrigger].add(k, minutes, score)
		}
		for _, k := range distinct(s.Activities) {
			groups[DimensionActivity].add(k, minutes, score)
		}
		for _, k := range distinct(s.Content) {
			groups[DimensionContent].add(k, minutes, score)
			if ContentType(k) != ContentUnknown {
				moodByContent.add(k, minutes, float64(s.MoodDelta))
			}
		}

		hist.add(minutes, score)

		if s.Multitask.IsFocused() {
			focused.add(minutes, score)
		} else {
			multi.add(minutes, score)
		}

		switch {
		case s.MoodDelta < 0:
			negative.add(minutes, score)
		case s.MoodDelta > 0:
			positive.add(minutes, score)
		}

		gapSum += s.PerceivedProductivity() - s.NormalizedScore()
	}

	agg.Dimensions = make([]DimensionSummary, 0, len(Dimensions))
	for _, d := range Dimensions {
		agg.Dimensions = append(agg.Dimensions, groups[d].summary(d))
	}

	agg.Multitask = MultitaskSplit{Focused: focused.summary(), Multitasking: multi.summary()}
	agg.Mood = MoodSplit{Negative: negative.summary(), Positive: positive.summary()}
	agg.Mood.Difference = agg.Mood.Positive.AvgScore - agg.Mood.Negative.AvgScore

	if agg.SessionCount > 0 {
		agg.NotificationFraction = float64(notificationSessions) / float64(agg.SessionCount)
		agg.PerceivedGap = gapSum / float64(agg.SessionCount)
	}
	agg.UnproductiveMinutes = agg.TotalMinutes - agg.ProductiveMinutes
	if agg.TotalMinutes > 0 {
		agg.Productivity = float64(agg.ProductiveMinutes) / float64(agg.TotalMinutes)
	}
	if best, ok := moodByContent.highestAverage(); ok {
		agg.MoodBoostContent = ContentType(best)
	}

	return agg
}

type groupAccumulator struct {
	order  []string
	groups map[string]*groupTotals
}

type groupTotals struct {
	minutes int
	count   int
	score   float64
}

func newGroupAccumulator() *groupAccumulator {
	return &groupAccumulator{groups: make(map[string]*groupTotals)}
}

func (g *groupAccumulator) add(key string, minutes int, value float64) {
	t, ok := g.groups[key]
	if !ok {
		t = &groupTotals{}
		g.groups[key] = t
		g.order = append(g.order, key)
	}
	t.minutes += minutes
	t.count++
	t.score += value
}

func (g *groupAccumulator) summary(d Dimension) DimensionSummary {
	out := DimensionSummary{Dimension: d, Groups: make([]GroupSummary, 0, len(g.order))}
	for i, key := range g.order {
		t := g.groups[key]
		gs := GroupSummary{
			Key:          key,
			TotalMinutes: t.minutes,
			SessionCount: t.count,
			AvgScore:     t.score / float64(t.count),
		}
		out.Groups = append(out.Groups, gs)
		if i == 0 || gs.TotalMinutes > out.MostUsed.TotalMinutes {
			out.MostUsed = gs
		}
		if i == 0 || gs.AvgScore < out.LeastProductive.AvgScore {
			out.LeastProductive = gs
		}
	}
	return out
}

// highestAverage returns the first-encountered key with the highest mean value.
func (g *groupAccumulator) highestAverage() (string, bool) {
	best, found := "", false
	bestAvg := 0.0
	for _, key := range g.order {
		t := g.groups[key]
		avg := t.score / float64(t.count)
		if !found || avg > bestAvg {
			best, bestAvg, found = key, avg, true
		}
	}
	return best, found
}

type splitAccumulator struct {
	minutes int
	count   int
	score   float64
}

func (s *splitAccumulator) add(minutes int, score float64) {
	s.minutes += minutes
	s.count++
	s.score += score
}

func (s splitAccumulator) summary() SplitSummary {
	out := SplitSummary{TotalMinutes: s.minutes, SessionCount: s.count}
	if s.count > 0 {
		out.AvgScore = s.score / float64(s.count)
	}
	return out
}

func newHistogram() DurationHistogram {
	return DurationHistogram{
		Bins: []DurationBin{
			{Label: BinUnder5, LowerMinutes: 0, UpperMinutes: 5},
			{Label: Bin5To15, LowerMinutes: 5, UpperMinutes: 15},
			{Label: Bin15To45, LowerMinutes: 15, UpperMinutes: 45},
			{Label: Bin45AndAbove, LowerMinutes: 45},
		},
	}
}

type histogramTracker struct {
	h         *DurationHistogram
	bestCount int
	minScore  float64
	seen      bool
}

func newHistogramTracker(h *DurationHistogram) *histogramTracker {
	return &histogramTracker{h: h}
}

func (t *histogramTracker) add(minutes int, score float64) {
	i := binIndex(t.h.Bins, minutes)
	bin := &t.h.Bins[i]
	bin.Count++
	bin.TotalScore += score

	if !t.seen || bin.TotalScore < t.minScore {
		t.minScore = bin.TotalScore
		t.h.LeastProductive = bin.Label
	}
	if !t.seen || bin.Count > t.bestCount {
		t.bestCount = bin.Count
		t.h.MostFrequent = bin.Label
	}
	t.seen = true
}

func binIndex(bins []DurationBin, minutes int) int {
	for i, b := range bins {
		if b.UpperMinutes == 0 || minutes < b.UpperMinutes {
			return i
		}
	}
	return len(bins) - 1
}

func distinct[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	seen := make(map[T]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, string(v))
	}
	return out
}
