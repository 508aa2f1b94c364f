package domain

import "math"

// notificationHoleMinutes is the length past which a session opened from a
// notification counts as falling down a hole.
const notificationHoleMinutes = 10

// highSelfRating is the lowest self-rating counted as a highly productive session.
const highSelfRating = 1

// PeriodMetrics summarizes the sessions of one time bucket of a day.
// Fractions are 0..1 and are zero for a bucket without sessions.
type PeriodMetrics struct {
	Bucket           TimeBucket `json:"bucket"`
	TotalMinutes     int        `json:"total_minutes"`
	SessionCount     int        `json:"session_count"`
	AvgLengthMinutes float64    `json:"avg_length_minutes"`
	MoodLiftPct      float64    `json:"mood_lift_pct"`
	HighProdPct      float64    `json:"high_prod_pct"`
	TopTrigger       Trigger    `json:"top_trigger,omitempty"`
	// NotificationHoleRate is the share of notification-started sessions
	// that ran past ten minutes.
	NotificationHoleRate float64 `json:"notification_hole_rate"`
	GoalAchievement      float64 `json:"goal_achievement"`
	MoodVolatility       float64 `json:"mood_volatility"`
	// BedtimeDoomMinutes is only counted for the night bucket: minutes in
	// bed that left the user in a worse mood.
	BedtimeDoomMinutes int `json:"bedtime_doom_minutes"`
}

// ComputePeriodMetrics returns one entry per time bucket, morning to night.
// Sessions with an unknown bucket are not counted.
func ComputePeriodMetrics(sessions []*Session) []PeriodMetrics {
	order := []TimeBucket{TimeBucketMorning, TimeBucketAfternoon, TimeBucketEvening, TimeBucketNight}
	byBucket := make(map[TimeBucket][]*Session, len(order))
	for _, s := range sessions {
		if s != nil {
			byBucket[s.TimeBucket] = append(byBucket[s.TimeBucket], s)
		}
	}

	out := make([]PeriodMetrics, 0, len(order))
	for _, b := range order {
		out = append(out, periodMetrics(b, byBucket[b]))
	}
	return out
}

func periodMetrics(bucket TimeBucket, sessions []*Session) PeriodMetrics {
	m := PeriodMetrics{Bucket: bucket, SessionCount: len(sessions)}
	if len(sessions) == 0 {
		return m
	}
	n := float64(len(sessions))

	var lifted, highProd, productive, notified, holes int
	var moodSum float64
	for _, s := range sessions {
		m.TotalMinutes += s.DurationMinutes
		moodSum += float64(s.MoodDelta)
		if s.MoodDelta > 0 {
			lifted++
		}
		isProductive := s.Score() >= ProductiveThreshold
		if isProductive {
			productive++
		}
		if s.SelfRatedProductivity >= highSelfRating || isProductive {
			highProd++
		}
		if s.HasTrigger(TriggerNotification) {
			notified++
			if s.DurationMinutes > notificationHoleMinutes {
				holes++
			}
		}
		if bucket == TimeBucketNight && s.Location == LocationBed && s.MoodDelta < 0 {
			m.BedtimeDoomMinutes += s.DurationMinutes
		}
	}

	m.AvgLengthMinutes = float64(m.TotalMinutes) / n
	m.MoodLiftPct = float64(lifted) / n
	m.HighProdPct = float64(highProd) / n
	m.GoalAchievement = float64(productive) / n
	if notified > 0 {
		m.NotificationHoleRate = float64(holes) / float64(notified)
	}

	mean := moodSum / n
	var variance float64
	for _, s := range sessions {
		d := float64(s.MoodDelta) - mean
		variance += d * d
	}
	m.MoodVolatility = math.Sqrt(variance / n)
	m.TopTrigger = topTrigger(sessions)
	return m
}

// topTrigger is the most frequent trigger. Ties go to the trigger seen first.
func topTrigger(sessions []*Session) Trigger {
	counts := make(map[Trigger]int)
	var seen []Trigger
	for _, s := range sessions {
		for _, t := range s.Triggers {
			if counts[t] == 0 {
				seen = append(seen, t)
			}
			counts[t]++
		}
	}
	var top Trigger
	for _, t := range seen {
		if counts[t] > counts[top] {
			top = t
		}
	}
	return top
}
