package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cardIDs(cards []AdviceCard) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestGenerateAdvice_LateNightAndLongSession(t *testing.T) {
	userID := uuid.New()
	s := scored(userID, "youtube", 45, testDay.Add(23*time.Hour+30*time.Minute), 0.2)

	agg := Aggregate(userID, []*Session{s}, DayWindow(testDay, time.UTC))
	cards := GenerateAdvice(agg)

	require.Len(t, cards, 2)
	assert.Equal(t, []string{RuleLateNight, RuleLongSession}, cardIDs(cards))
	for _, c := range cards {
		assert.Equal(t, CardFix, c.Kind)
		assert.Equal(t, 45, c.Impact())
	}
}

func TestGenerateAdvice_HighProductivityKeepsOnlyR6(t *testing.T) {
	userID := uuid.New()
	var sessions []*Session
	for i := 0; i < 4; i++ {
		s := scored(userID, "duolingo", 50, testDay.Add(time.Duration(8+i)*time.Hour), 0.9)
		s.Multitask = MultitaskEating
		sessions = append(sessions, s)
	}
	sessions[0].WithContent(ContentEducational).WithSelfReport(2, 2)

	agg := Aggregate(userID, sessions, DayWindow(testDay, time.UTC))
	require.Equal(t, 200, agg.TotalMinutes)
	require.Equal(t, ContentEducational, agg.MoodBoostContent)

	cards := GenerateAdvice(agg)

	require.Len(t, cards, 1)
	assert.Equal(t, RuleHighlyProductive, cards[0].ID)
	assert.Equal(t, CardKeep, cards[0].Kind)
	assert.Nil(t, cards[0].ImpactMinutes)
	assert.Contains(t, cards[0].Text, "100%")
}

func TestGenerateAdvice_MoodBoostKeep(t *testing.T) {
	agg := &DailyAggregate{
		SessionCount:     1,
		TotalMinutes:     10,
		Productivity:     0.7,
		MoodBoostContent: ContentPersonalUpdates,
	}

	cards := GenerateAdvice(agg)

	require.Len(t, cards, 1)
	assert.Equal(t, RuleMoodBoost, cards[0].ID)
	assert.Contains(t, cards[0].Text, "Personal updates content")
}

func TestGenerateAdvice_CapAndRanking(t *testing.T) {
	agg := &DailyAggregate{
		SessionCount:          6,
		TotalMinutes:          100,
		LateNightMinutes:      50,
		NotificationFraction:  0.5,
		UnproductiveMinutes:   100,
		LongestSessionMinutes: 60,
		Productivity:          0,
		MoodBoostContent:      ContentNews,
	}

	cards := GenerateAdvice(agg)

	require.Len(t, cards, 3)
	assert.Equal(t, []string{RuleLongSession, RuleLateNight, RuleMoodBoost}, cardIDs(cards))
	assert.Equal(t, 60, cards[0].Impact())
	assert.Equal(t, 50, cards[1].Impact())
}

func TestGenerateAdvice_NotificationImpactIsRounded(t *testing.T) {
	agg := &DailyAggregate{
		SessionCount:         3,
		TotalMinutes:         25,
		NotificationFraction: 2.0 / 3,
		UnproductiveMinutes:  25,
	}

	cards := GenerateAdvice(agg)

	require.Len(t, cards, 1)
	assert.Equal(t, RuleNotifications, cards[0].ID)
	assert.Equal(t, 17, cards[0].Impact())
	assert.Contains(t, cards[0].Text, "67%")
}

func TestGenerateAdvice_Properties(t *testing.T) {
	fractions := []float64{0, 0.2, 0.4, 0.9}
	productivity := []float64{0, 0.3, 0.45, 0.55, 0.85}
	contents := []ContentType{"", ContentNews}

	for _, f := range fractions {
		for _, p := range productivity {
			for _, c := range contents {
				for longest := 10; longest <= 70; longest += 30 {
					agg := &DailyAggregate{
						SessionCount:          4,
						TotalMinutes:          120,
						LateNightMinutes:      int(f * 120),
						NotificationFraction:  f,
						UnproductiveMinutes:   int((1 - p) * 120),
						ProductiveMinutes:     int(p * 120),
						LongestSessionMinutes: longest,
						Productivity:          p,
						MoodBoostContent:      c,
					}

					cards := GenerateAdvice(agg)
					assert.LessOrEqual(t, len(cards), 3)

					fixes, keeps := 0, 0
					prev := -1
					for i, card := range cards {
						switch card.Kind {
						case CardFix:
							fixes++
							assert.Zero(t, keeps, "fix cards come before keep cards")
							if i > 0 {
								assert.LessOrEqual(t, card.Impact(), prev)
							}
							prev = card.Impact()
						case CardKeep:
							keeps++
						}
					}
					assert.LessOrEqual(t, fixes, MaxFixCards)
					assert.LessOrEqual(t, keeps, MaxKeepCards)
				}
			}
		}
	}
}
