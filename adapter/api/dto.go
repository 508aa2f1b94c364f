package api

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/commands"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

// BaselineRequest is the body of PUT /baseline. Rule maps hold -1, 0 or 1 per category value.
type BaselineRequest struct {
	DailyMinutesGoal           int            `json:"daily_minutes_goal"`
	NegativeMoodIsUnproductive bool           `json:"negative_mood_is_unproductive"`
	UnproductiveTolerancePct   *float64       `json:"unproductive_tolerance_pct,omitempty"`
	GoalProductivityPct        *int           `json:"goal_productivity_pct,omitempty"`
	Timezone                   string         `json:"timezone,omitempty"`
	Triggers                   map[string]int `json:"triggers,omitempty"`
	Goals                      map[string]int `json:"goals,omitempty"`
	Activities                 map[string]int `json:"activities,omitempty"`
	Content                    map[string]int `json:"content,omitempty"`
}

// ToCommand builds the save command for userID.
func (r BaselineRequest) ToCommand(userID uuid.UUID) commands.SaveBaselineCommand {
	return commands.SaveBaselineCommand{
		UserID:                     userID,
		DailyMinutesGoal:           r.DailyMinutesGoal,
		NegativeMoodIsUnproductive: r.NegativeMoodIsUnproductive,
		UnproductiveTolerancePct:   r.UnproductiveTolerancePct,
		GoalProductivityPct:        r.GoalProductivityPct,
		Timezone:                   r.Timezone,
		Triggers:                   r.Triggers,
		Goals:                      r.Goals,
		Activities:                 r.Activities,
		Content:                    r.Content,
	}
}

// BaselineResponse is a stored baseline.
type BaselineResponse struct {
	UserID                     uuid.UUID      `json:"user_id"`
	DailyMinutesGoal           int            `json:"daily_minutes_goal"`
	NegativeMoodIsUnproductive bool           `json:"negative_mood_is_unproductive"`
	UnproductiveTolerancePct   float64        `json:"unproductive_tolerance_pct"`
	GoalProductivityPct        int            `json:"goal_productivity_pct"`
	Timezone                   string         `json:"timezone"`
	Triggers                   map[string]int `json:"triggers"`
	Goals                      map[string]int `json:"goals"`
	Activities                 map[string]int `json:"activities"`
	Content                    map[string]int `json:"content"`
	UpdatedAt                  time.Time      `json:"updated_at"`
}

// ToBaselineResponse converts a stored baseline.
func ToBaselineResponse(b *domain.Baseline) BaselineResponse {
	return BaselineResponse{
		UserID:                     b.UserID,
		DailyMinutesGoal:           b.DailyMinutesGoal,
		NegativeMoodIsUnproductive: b.NegativeMoodIsUnproductive,
		UnproductiveTolerancePct:   b.UnproductiveTolerancePct,
		GoalProductivityPct:        b.GoalProductivityPct,
		Timezone:                   b.Timezone,
		Triggers:                   polarities(b.CategoryRules.Triggers),
		Goals:                      polarities(b.CategoryRules.Goals),
		Activities:                 polarities(b.CategoryRules.Activities),
		Content:                    polarities(b.CategoryRules.Content),
		UpdatedAt:                  b.UpdatedAt,
	}
}

func polarities[K ~string](rules map[K]domain.Polarity) map[string]int {
	out := make(map[string]int, len(rules))
	for k, p := range rules {
		out[string(k)] = int(p)
	}
	return out
}

// SessionRequest is the body of POST /sessions.
type SessionRequest struct {
	AppID                 string    `json:"app_id"`
	DurationMinutes       int       `json:"duration_minutes"`
	CreatedAt             time.Time `json:"created_at,omitempty"`
	TimeBucket            string    `json:"time_bucket,omitempty"`
	Triggers              []string  `json:"triggers,omitempty"`
	Goal                  string    `json:"goal,omitempty"`
	Activities            []string  `json:"activities,omitempty"`
	Content               []string  `json:"content,omitempty"`
	Location              string    `json:"location,omitempty"`
	Multitask             string    `json:"multitask,omitempty"`
	MoodDelta             int       `json:"mood_delta"`
	SelfRatedProductivity int       `json:"self_rated_productivity"`
}

// ToCommand builds the log command for userID.
func (r SessionRequest) ToCommand(userID uuid.UUID) commands.LogSessionCommand {
	return commands.LogSessionCommand{
		UserID:                userID,
		AppID:                 r.AppID,
		DurationMinutes:       r.DurationMinutes,
		CreatedAt:             r.CreatedAt,
		TimeBucket:            r.TimeBucket,
		Triggers:              r.Triggers,
		Goal:                  r.Goal,
		Activities:            r.Activities,
		Content:               r.Content,
		Location:              r.Location,
		Multitask:             r.Multitask,
		MoodDelta:             r.MoodDelta,
		SelfRatedProductivity: r.SelfRatedProductivity,
	}
}

// SessionResponse is the scored session returned by POST /sessions.
type SessionResponse struct {
	ID             uuid.UUID `json:"id"`
	Day            string    `json:"day"`
	TimeBucket     string    `json:"time_bucket"`
	FormulaVersion string    `json:"formula_version"`
	RawScore       float64   `json:"raw_score"`
	DeltaPoints    int       `json:"delta_points"`
}

// ToSessionResponse converts the result of logging a session.
func ToSessionResponse(result *commands.LogSessionResult) SessionResponse {
	s := result.Session
	return SessionResponse{
		ID:             s.ID,
		Day:            result.Day,
		TimeBucket:     string(s.TimeBucket),
		FormulaVersion: string(s.FormulaVersion),
		RawScore:       s.RawScore,
		DeltaPoints:    s.DeltaPoints,
	}
}

type groupResponse struct {
	Key          string  `json:"key"`
	TotalMinutes int     `json:"total_minutes"`
	SessionCount int     `json:"session_count"`
	AvgScore     float64 `json:"avg_score"`
}

type dimensionResponse struct {
	Dimension       string          `json:"dimension"`
	Groups          []groupResponse `json:"groups"`
	MostUsed        string          `json:"most_used,omitempty"`
	LeastProductive string          `json:"least_productive,omitempty"`
}

type binResponse struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AggregateResponse is a DailyAggregate in wire form.
type AggregateResponse struct {
	UserID                uuid.UUID           `json:"user_id"`
	Start                 time.Time           `json:"start"`
	End                   time.Time           `json:"end"`
	SessionCount          int                 `json:"session_count"`
	TotalMinutes          int                 `json:"total_minutes"`
	TotalDeltaPoints      int                 `json:"total_delta_points"`
	LateNightMinutes      int                 `json:"late_night_minutes"`
	NotificationFraction  float64             `json:"notification_fraction"`
	LongestSessionMinutes int                 `json:"longest_session_minutes"`
	ProductiveMinutes     int                 `json:"productive_minutes"`
	UnproductiveMinutes   int                 `json:"unproductive_minutes"`
	Productivity          float64             `json:"productivity"`
	MoodBoostContent      string              `json:"mood_boost_content,omitempty"`
	PerceivedGap          float64             `json:"perceived_gap"`
	MoodDifference        float64             `json:"mood_difference"`
	Dimensions            []dimensionResponse `json:"dimensions"`
	Histogram             []binResponse       `json:"histogram"`
}

// ToAggregateResponse converts an aggregate to wire form.
func ToAggregateResponse(agg *domain.DailyAggregate) AggregateResponse {
	resp := AggregateResponse{
		UserID:                agg.UserID,
		Start:                 agg.Window.Start,
		End:                   agg.Window.End,
		SessionCount:          agg.SessionCount,
		TotalMinutes:          agg.TotalMinutes,
		TotalDeltaPoints:      agg.TotalDeltaPoints,
		LateNightMinutes:      agg.LateNightMinutes,
		NotificationFraction:  agg.NotificationFraction,
		LongestSessionMinutes: agg.LongestSessionMinutes,
		ProductiveMinutes:     agg.ProductiveMinutes,
		UnproductiveMinutes:   agg.UnproductiveMinutes,
		Productivity:          agg.Productivity,
		MoodBoostContent:      string(agg.MoodBoostContent),
		PerceivedGap:          agg.PerceivedGap,
		MoodDifference:        agg.Mood.Difference,
		Dimensions:            make([]dimensionResponse, 0, len(agg.Dimensions)),
		Histogram:             make([]binResponse, 0, len(agg.Histogram.Bins)),
	}
	for _, d := range agg.Dimensions {
		dr := dimensionResponse{
			Dimension:       string(d.Dimension),
			Groups:          make([]groupResponse, 0, len(d.Groups)),
			MostUsed:        d.MostUsed.Key,
			LeastProductive: d.LeastProductive.Key,
		}
		for _, g := range d.Groups {
			dr.Groups = append(dr.Groups, groupResponse(g))
		}
		resp.Dimensions = append(resp.Dimensions, dr)
	}
	for _, b := range agg.Histogram.Bins {
		resp.Histogram = append(resp.Histogram, binResponse{Label: b.Label, Count: b.Count})
	}
	return resp
}

// DigestResponse is a stored DailyDigest.
type DigestResponse struct {
	UserID              uuid.UUID              `json:"user_id"`
	Day                 string                 `json:"day"`
	SessionCount        int                    `json:"session_count"`
	TotalMinutes        int                    `json:"total_minutes"`
	WeightedMeanScore   float64                `json:"weighted_mean_score"`
	OverMinutesPenalty  float64                `json:"over_minutes_penalty"`
	UnproductivePenalty float64                `json:"unproductive_penalty"`
	FinalScore          float64                `json:"final_score"`
	Status              domain.DayStatus       `json:"status"`
	Periods             []domain.PeriodMetrics `json:"periods"`
	Advice              []domain.AdviceCard    `json:"advice"`
	Tips                []string               `json:"tips"`
	ComputedAt          time.Time              `json:"computed_at"`
}

func ToDigestResponse(d *domain.DailyDigest) DigestResponse {
	return DigestResponse{
		UserID:              d.UserID,
		Day:                 d.Day,
		SessionCount:        d.SessionCount,
		TotalMinutes:        d.TotalMinutes,
		WeightedMeanScore:   d.WeightedMeanScore,
		OverMinutesPenalty:  d.OverMinutesPenalty,
		UnproductivePenalty: d.UnproductivePenalty,
		FinalScore:          d.FinalScore,
		Status:              d.Status,
		Periods:             d.Periods,
		Advice:              d.Advice,
		Tips:                d.Tips,
		ComputedAt:          d.ComputedAt,
	}
}

// ProgressResponse compares use since the baseline was created with its goals.
type ProgressResponse struct {
	Since               time.Time `json:"since"`
	Days                float64   `json:"days"`
	SessionCount        int       `json:"session_count"`
	TotalMinutes        int       `json:"total_minutes"`
	AvgDailyMinutes     int       `json:"avg_daily_minutes"`
	AvgScorePct         int       `json:"avg_score_pct"`
	DailyMinutesGoal    int       `json:"daily_minutes_goal"`
	GoalProductivityPct int       `json:"goal_productivity_pct"`
	WithinMinutesGoal   bool      `json:"within_minutes_goal"`
	MeetsProductivity   bool      `json:"meets_productivity_goal"`
}

func ToProgressResponse(p *domain.Progress) ProgressResponse {
	return ProgressResponse{
		Since:               p.Since,
		Days:                math.Round(p.Days*10) / 10,
		SessionCount:        p.SessionCount,
		TotalMinutes:        p.TotalMinutes,
		AvgDailyMinutes:     p.AvgDailyMinutes,
		AvgScorePct:         p.AvgScorePct,
		DailyMinutesGoal:    p.DailyMinutesGoal,
		GoalProductivityPct: p.GoalProductivityPct,
		WithinMinutesGoal:   p.AvgDailyMinutes <= p.DailyMinutesGoal,
		MeetsProductivity:   p.AvgScorePct >= p.GoalProductivityPct,
	}
}
