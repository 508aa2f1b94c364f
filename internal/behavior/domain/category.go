package domain

import (
	"strings"
	"time"
)

// TimeBucket is the part of day a session started in.
type TimeBucket string

const (
	TimeBucketMorning   TimeBucket = "morning"
	TimeBucketAfternoon TimeBucket = "afternoon"
	TimeBucketEvening   TimeBucket = "evening"
	TimeBucketNight     TimeBucket = "night"
	TimeBucketUnknown   TimeBucket = "unknown"
)

// Trigger is what prompted the user to open the app.
type Trigger string

const (
	TriggerBoredom      Trigger = "boredom"
	TriggerNotification Trigger = "notification"
	TriggerHabit        Trigger = "habit"
	TriggerCheckUpdates Trigger = "check_updates"
	TriggerSearch       Trigger = "search"
	TriggerWork         Trigger = "work"
	TriggerPostPlanned  Trigger = "post_planned"
	TriggerUnknown      Trigger = "unknown"
)

// Goal is the primary intent of a session.
type Goal string

const (
	GoalEntertainment Goal = "entertainment"
	GoalWork          Goal = "work"
	GoalAcademic      Goal = "academic"
	GoalSocial        Goal = "social"
	GoalCreation      Goal = "creation"
	GoalNews          Goal = "news"
	GoalUnknown       Goal = "unknown"
)

// Activity is how the user engaged during a session.
type Activity string

const (
	ActivityScroll  Activity = "scroll"
	ActivityPost    Activity = "post"
	ActivityComment Activity = "comment"
	ActivityReact   Activity = "react"
	ActivityDM      Activity = "dm"
	ActivitySearch  Activity = "search"
	ActivityUnknown Activity = "unknown"
)

// ContentType is the kind of content consumed.
type ContentType string

const (
	ContentEducational     ContentType = "educational"
	ContentEntertainment   ContentType = "entertainment"
	ContentPersonalUpdates ContentType = "personal_updates"
	ContentPolitical       ContentType = "political"
	ContentProfessional    ContentType = "professional"
	ContentShopping        ContentType = "shopping"
	ContentNews            ContentType = "news"
	ContentUnknown         ContentType = "unknown"
)

// Location is where the session happened.
type Location string

const (
	LocationHome    Location = "home"
	LocationWork    Location = "work"
	LocationCommute Location = "commute"
	LocationOutside Location = "outside"
	LocationBed     Location = "bed"
	LocationOther   Location = "other"
	LocationUnknown Location = "unknown"
)

// Multitask is what else the user was doing. MultitaskNone marks a focused session.
type Multitask string

const (
	MultitaskNone    Multitask = "none"
	MultitaskTV      Multitask = "tv"
	MultitaskEating  Multitask = "eating"
	MultitaskWorking Multitask = "working"
	MultitaskOther   Multitask = "other"
	MultitaskUnknown Multitask = "unknown"
)

var (
	timeBuckets = lookup(TimeBucketMorning, TimeBucketAfternoon, TimeBucketEvening, TimeBucketNight)
	triggers    = lookup(TriggerBoredom, TriggerNotification, TriggerHabit, TriggerCheckUpdates,
		TriggerSearch, TriggerWork, TriggerPostPlanned)
	goals      = lookup(GoalEntertainment, GoalWork, GoalAcademic, GoalSocial, GoalCreation, GoalNews)
	activities = lookup(ActivityScroll, ActivityPost, ActivityComment, ActivityReact,
		ActivityDM, ActivitySearch)
	contentTypes = lookup(ContentEducational, ContentEntertainment, ContentPersonalUpdates,
		ContentPolitical, ContentProfessional, ContentShopping, ContentNews)
	locations = lookup(LocationHome, LocationWork, LocationCommute, LocationOutside,
		LocationBed, LocationOther)
	multitasks = lookup(MultitaskNone, MultitaskTV, MultitaskEating, MultitaskWorking, MultitaskOther)
)

// Values written by earlier versions of the session form.
var legacyAliases = map[string]string{
	"late_night":            string(TimeBucketNight),
	"latenight":             string(TimeBucketNight),
	"checking_updates":      string(TriggerCheckUpdates),
	"notifications":         string(TriggerNotification),
	"received_notification": string(TriggerNotification),
	"scrolling":             string(ActivityScroll),
	"posting":               string(ActivityPost),
	"commenting":            string(ActivityComment),
	"reacting":              string(ActivityReact),
	"messaging":             string(ActivityDM),
	"searching":             string(ActivitySearch),
	"personal":              string(ContentPersonalUpdates),
	"politics":              string(ContentPolitical),
	"no":                    string(MultitaskNone),
}

func lookup[T ~string](values ...T) map[string]T {
	m := make(map[string]T, len(values))
	for _, v := range values {
		m[string(v)] = v
	}
	return m
}

func normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	if alias, ok := legacyAliases[s]; ok {
		return alias
	}
	return s
}

func parse[T ~string](known map[string]T, raw string, fallback T) T {
	if v, ok := known[normalize(raw)]; ok {
		return v
	}
	return fallback
}

// ParseTimeBucket maps a stored value to a TimeBucket, falling back to TimeBucketUnknown.
func ParseTimeBucket(raw string) TimeBucket { return parse(timeBuckets, raw, TimeBucketUnknown) }

// ParseTrigger maps a stored value to a Trigger, falling back to TriggerUnknown.
func ParseTrigger(raw string) Trigger { return parse(triggers, raw, TriggerUnknown) }

// ParseGoal maps a stored value to a Goal, falling back to GoalUnknown.
func ParseGoal(raw string) Goal { return parse(goals, raw, GoalUnknown) }

// ParseActivity maps a stored value to an Activity, falling back to ActivityUnknown.
func ParseActivity(raw string) Activity { return parse(activities, raw, ActivityUnknown) }

// ParseContentType maps a stored value to a ContentType, falling back to ContentUnknown.
func ParseContentType(raw string) ContentType { return parse(contentTypes, raw, ContentUnknown) }

// ParseLocation maps a stored value to a Location, falling back to LocationUnknown.
func ParseLocation(raw string) Location { return parse(locations, raw, LocationUnknown) }

// ParseMultitask maps a stored value to a Multitask, falling back to MultitaskUnknown.
func ParseMultitask(raw string) Multitask { return parse(multitasks, raw, MultitaskUnknown) }

// ParseTriggers parses every value of a multi-select answer.
func ParseTriggers(raw []string) []Trigger { return parseAll(raw, ParseTrigger) }

// ParseActivities parses every value of a multi-select answer.
func ParseActivities(raw []string) []Activity { return parseAll(raw, ParseActivity) }

// ParseContentTypes parses every value of a multi-select answer.
func ParseContentTypes(raw []string) []ContentType { return parseAll(raw, ParseContentType) }

func parseAll[T any](raw []string, fn func(string) T) []T {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		out = append(out, fn(r))
	}
	return out
}

// BucketForTime assigns a local clock time to a TimeBucket.
// Morning is 06-11, afternoon 11-17, evening 17-22 and night 22-06.
func BucketForTime(t time.Time) TimeBucket {
	switch h := t.Hour(); {
	case h >= 6 && h < 11:
		return TimeBucketMorning
	case h >= 11 && h < 17:
		return TimeBucketAfternoon
	case h >= 17 && h < 22:
		return TimeBucketEvening
	default:
		return TimeBucketNight
	}
}

// IsFocused reports whether the session had no parallel activity.
func (m Multitask) IsFocused() bool {
	return m == MultitaskNone
}
