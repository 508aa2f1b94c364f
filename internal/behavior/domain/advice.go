package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// CardKind separates actionable problems from patterns worth keeping.
type CardKind string

const (
	CardFix  CardKind = "fix"
	CardKeep CardKind = "keep"
)

// Rule identifiers.
const (
	RuleLateNight        = "R1"
	RuleNotifications    = "R2"
	RuleLongSession      = "R3"
	RuleMoodBoost        = "R5"
	RuleHighlyProductive = "R6"
)

// Advice limits.
const (
	MaxFixCards  = 2
	MaxKeepCards = 1
)

// AdviceCard is one ranked recommendation. ImpactMinutes is the estimated
// number of wasted minutes the fix addresses; keep cards carry none.
type AdviceCard struct {
	ID            string   `json:"id"`
	Kind          CardKind `json:"kind"`
	Text          string   `json:"text"`
	ImpactMinutes *int     `json:"impact_minutes,omitempty"`
}

// Impact returns the impact in minutes, or zero for keep cards.
func (c AdviceCard) Impact() int {
	if c.ImpactMinutes == nil {
		return 0
	}
	return *c.ImpactMinutes
}

// GenerateAdvice evaluates every advice rule against the aggregate and returns
// at most two fix cards, ordered by impact descending then rule id, followed by
// at most one keep card. R6 wins over R5 when both fire.
func GenerateAdvice(agg *DailyAggregate) []AdviceCard {
	if agg.IsEmpty() {
		return []AdviceCard{}
	}

	var fixes []AdviceCard
	prod := agg.Productivity

	if float64(agg.LateNightMinutes) > 0.2*float64(agg.TotalMinutes) && prod < 0.4 {
		fixes = append(fixes, fixCard(RuleLateNight, agg.LateNightMinutes, fmt.Sprintf(
			"About %d min of your use happened late at night. Keep the phone away entirely during those hours.",
			agg.LateNightMinutes)))
	}

	if agg.NotificationFraction > 0.35 && prod < 0.5 {
		impact := int(math.Round(agg.NotificationFraction * float64(agg.UnproductiveMinutes)))
		fixes = append(fixes, fixCard(RuleNotifications, impact, fmt.Sprintf(
			"Notifications started %d%% of your sessions and they rarely paid off. Let a notification wait instead of opening it right away.",
			int(math.Round(agg.NotificationFraction*100)))))
	}

	if agg.LongestSessionMinutes >= 30 && prod < 0.6 {
		fixes = append(fixes, fixCard(RuleLongSession, agg.LongestSessionMinutes, fmt.Sprintf(
			"Your longest session ran %d min with little to show for it. Next time put the phone down for the same %d min instead.",
			agg.LongestSessionMinutes, agg.LongestSessionMinutes)))
	}

	sort.SliceStable(fixes, func(i, j int) bool {
		if fixes[i].Impact() != fixes[j].Impact() {
			return fixes[i].Impact() > fixes[j].Impact()
		}
		return fixes[i].ID < fixes[j].ID
	})
	if len(fixes) > MaxFixCards {
		fixes = fixes[:MaxFixCards]
	}

	cards := make([]AdviceCard, 0, MaxFixCards+MaxKeepCards)
	cards = append(cards, fixes...)

	switch {
	case prod >= 0.8:
		cards = append(cards, AdviceCard{
			ID:   RuleHighlyProductive,
			Kind: CardKeep,
			Text: fmt.Sprintf(
				"Well done, %d%% of your minutes were productive. Try one phone-free 15 min block during your busiest hour tomorrow.",
				int(math.Round(prod*100))),
		})
	case agg.MoodBoostContent != "":
		cards = append(cards, AdviceCard{
			ID:   RuleMoodBoost,
			Kind: CardKeep,
			Text: fmt.Sprintf(
				"%s content lifted your mood. Keep it, and add an extra 10 min off the phone before opening any app.",
				capitalize(humanize(string(agg.MoodBoostContent)))),
		})
	}

	return cards
}

func fixCard(id string, impact int, text string) AdviceCard {
	return AdviceCard{ID: id, Kind: CardFix, Text: text, ImpactMinutes: &impact}
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
