package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func researchBaseline(userID uuid.UUID) *Baseline {
	b := NewBaseline(userID, 120)
	b.NegativeMoodIsUnproductive = true
	b.SetGoal(GoalWork, PolarityProductive).
		SetTrigger(TriggerBoredom, PolarityUnproductive).
		SetActivity(ActivityScroll, PolarityUnproductive).
		SetActivity(ActivityPost, PolarityProductive).
		SetContent(ContentNews, PolarityProductive)
	return b
}

func TestWeightedSumScorer_ConcreteSession(t *testing.T) {
	userID := uuid.New()
	baseline := researchBaseline(userID)

	session := NewSession(userID, "twitter", 30, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)).
		WithTriggers(TriggerBoredom).
		WithGoal(GoalWork).
		WithActivities(ParseActivity("scrolling")).
		WithContent(ContentNews).
		WithContext(TimeBucketMorning, LocationHome, MultitaskNone).
		WithSelfReport(-1, 1)

	result, err := WeightedSumScorer{}.Score(session, baseline)
	require.NoError(t, err)

	assert.Equal(t, FormulaWeightedV2, result.FormulaVersion)
	assert.InDelta(t, -0.115, result.RawScore, 1e-9)
	assert.Equal(t, -2, result.DeltaPoints)
}

func TestWeightedSumScorer_RangeAndSign(t *testing.T) {
	userID := uuid.New()

	allProductive := NewBaseline(userID, 90)
	for _, g := range []Goal{GoalWork, GoalAcademic} {
		allProductive.SetGoal(g, PolarityProductive)
	}
	allProductive.SetTrigger(TriggerWork, PolarityProductive).
		SetActivity(ActivityPost, PolarityProductive).
		SetContent(ContentEducational, PolarityProductive)

	baselines := []*Baseline{NewBaseline(userID, 30), researchBaseline(userID), allProductive}
	multitasks := []Multitask{MultitaskNone, MultitaskTV, MultitaskUnknown}

	for _, b := range baselines {
		for _, m := range multitasks {
			for mood := MinMood; mood <= MaxMood; mood++ {
				for self := MinSelfRating; self <= MaxSelfRating; self++ {
					s := NewSession(userID, "app", 17, time.Now()).
						WithTriggers(TriggerWork, TriggerBoredom).
						WithGoal(GoalWork).
						WithActivities(ActivityPost).
						WithContent(ContentEducational, ContentShopping).
						WithContext(TimeBucketEvening, LocationHome, m).
						WithSelfReport(mood, self)

					result, err := WeightedSumScorer{}.Score(s, b)
					require.NoError(t, err)

					assert.GreaterOrEqual(t, result.RawScore, -1.0)
					assert.LessOrEqual(t, result.RawScore, 1.0)
					switch {
					case result.RawScore > 0:
						assert.Positive(t, result.DeltaPoints)
					case result.RawScore < 0:
						assert.Negative(t, result.DeltaPoints)
					default:
						assert.Zero(t, result.DeltaPoints)
					}
				}
			}
		}
	}
}

func TestWeightedSumScorer_ExactZeroScores(t *testing.T) {
	userID := uuid.New()
	baseline := NewBaseline(userID, 60)
	baseline.SetGoal(GoalWork, PolarityProductive).
		SetTrigger(TriggerWork, PolarityProductive).
		SetActivity(ActivityPost, PolarityProductive).
		SetContent(ContentNews, PolarityProductive)

	tests := []struct {
		name    string
		session *Session
	}{
		{
			name: "low mood offset by productive context",
			session: NewSession(userID, "app", 45, time.Now()).
				WithTriggers(TriggerWork).
				WithGoal(GoalAcademic).
				WithActivities(ActivityPost).
				WithContent(ContentNews).
				WithContext(TimeBucketEvening, LocationHome, MultitaskTV).
				WithSelfReport(-2, -1),
		},
		{
			name: "neutral mood with mixed context",
			session: NewSession(userID, "app", 45, time.Now()).
				WithTriggers(TriggerBoredom).
				WithGoal(GoalWork).
				WithActivities(ActivityScroll).
				WithContent(ContentNews).
				WithContext(TimeBucketEvening, LocationHome, MultitaskNone).
				WithSelfReport(0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := WeightedSumScorer{}.Score(tt.session, baseline)
			require.NoError(t, err)

			assert.Zero(t, result.RawScore)
			assert.Zero(t, result.DeltaPoints)
		})
	}
}

func TestWeightedSumScorer_ZeroScoreMeansZeroPoints(t *testing.T) {
	userID := uuid.New()
	baseline := NewBaseline(userID, 60)
	baseline.SetGoal(GoalWork, PolarityProductive).
		SetTrigger(TriggerWork, PolarityProductive).
		SetActivity(ActivityPost, PolarityProductive).
		SetContent(ContentNews, PolarityProductive)

	triggers := []Trigger{TriggerWork, TriggerBoredom}
	goals := []Goal{GoalWork, GoalSocial}
	activities := []Activity{ActivityPost, ActivityScroll}
	contents := []ContentType{ContentNews, ContentShopping}
	multitasks := []Multitask{MultitaskNone, MultitaskTV}

	zeros := 0
	for _, trig := range triggers {
		for _, goal := range goals {
			for _, act := range activities {
				for _, content := range contents {
					for _, mt := range multitasks {
						for mood := MinMood; mood <= MaxMood; mood++ {
							for self := MinSelfRating; self <= MaxSelfRating; self++ {
								s := NewSession(userID, "app", 45, time.Now()).
									WithTriggers(trig).
									WithGoal(goal).
									WithActivities(act).
									WithContent(content).
									WithContext(TimeBucketEvening, LocationHome, mt).
									WithSelfReport(mood, self)

								result, err := WeightedSumScorer{}.Score(s, baseline)
								require.NoError(t, err)

								if math.Abs(result.RawScore) < 1e-6 {
									zeros++
									assert.Zero(t, result.RawScore)
									assert.Zero(t, result.DeltaPoints, "mood=%d self=%d", mood, self)
								}
							}
						}
					}
				}
			}
		}
	}
	assert.Positive(t, zeros)
}

func TestWeightedSumScorer_UnknownValuesAreUnproductive(t *testing.T) {
	userID := uuid.New()
	baseline := NewBaseline(userID, 60)
	baseline.SetGoal(GoalWork, PolarityProductive)

	known := NewSession(userID, "app", 10, time.Now()).WithGoal(GoalWork)
	unknown := NewSession(userID, "app", 10, time.Now()).WithGoal(ParseGoal("gardening"))

	knownResult, err := WeightedSumScorer{}.Score(known, baseline)
	require.NoError(t, err)
	unknownResult, err := WeightedSumScorer{}.Score(unknown, baseline)
	require.NoError(t, err)

	assert.Equal(t, GoalUnknown, unknown.Goal)
	assert.InDelta(t, 2*WeightGoal, knownResult.RawScore-unknownResult.RawScore, 1e-9)
}

func TestCategoryContribution(t *testing.T) {
	rules := map[ContentType]Polarity{
		ContentNews:     PolarityProductive,
		ContentShopping: PolarityUnproductive,
		ContentUnknown:  PolarityProductive,
	}

	tests := []struct {
		name   string
		chosen []ContentType
		want   float64
	}{
		{"single productive", []ContentType{ContentNews}, 1},
		{"single unproductive", []ContentType{ContentShopping}, -1},
		{"mixed", []ContentType{ContentNews, ContentShopping}, 0},
		{"absent from rules", []ContentType{ContentPolitical}, -1},
		{"unknown never productive", []ContentType{ContentUnknown}, -1},
		{"empty selection", nil, -1},
		{"two of three", []ContentType{ContentNews, ContentNews, ContentShopping}, 1.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, categoryContribution(tt.chosen, rules), 1e-9)
		})
	}
}

func TestResearchScorer(t *testing.T) {
	userID := uuid.New()
	baseline := researchBaseline(userID)

	t.Run("productive outcome", func(t *testing.T) {
		s := NewSession(userID, "linkedin", 30, time.Now()).
			WithGoal(GoalWork).
			WithActivities(ActivityScroll, ActivityPost).
			WithContent(ContentNews).
			WithSelfReport(1, 2)

		result, err := ResearchScorer{}.Score(s, baseline)
		require.NoError(t, err)

		assert.Equal(t, FormulaResearchV1, result.FormulaVersion)
		assert.InDelta(t, 1.0, result.RawScore, 1e-9)
		assert.Equal(t, 13, result.DeltaPoints)
	})

	t.Run("negative mood vetoes the outcome", func(t *testing.T) {
		s := NewSession(userID, "linkedin", 20, time.Now()).
			WithGoal(GoalWork).
			WithActivities(ActivityPost).
			WithContent(ContentNews).
			WithSelfReport(-1, 0)

		result, err := ResearchScorer{}.Score(s, baseline)
		require.NoError(t, err)

		assert.InDelta(t, 0.3, result.RawScore, 1e-9)
		assert.Equal(t, -4, result.DeltaPoints)
	})

	t.Run("negative mood allowed", func(t *testing.T) {
		lenient := researchBaseline(userID)
		lenient.NegativeMoodIsUnproductive = false
		s := NewSession(userID, "linkedin", 20, time.Now()).
			WithGoal(GoalWork).
			WithActivities(ActivityPost).
			WithContent(ContentNews).
			WithSelfReport(-1, 0)

		result, err := ResearchScorer{}.Score(s, lenient)
		require.NoError(t, err)
		assert.InDelta(t, 0.7, result.RawScore, 1e-9)
	})
}

func TestScoreSession_LegacyFixtures(t *testing.T) {
	userID := uuid.New()
	baseline := researchBaseline(userID)

	fixtures := []struct {
		name    string
		version FormulaVersion
		session *Session
		want    float64
	}{
		{
			name:    "legacy research session",
			version: FormulaResearchV1,
			session: NewSession(userID, "reddit", 12, time.Now()).
				WithGoal(GoalWork).WithActivities(ActivityPost).WithContent(ContentNews).WithSelfReport(0, -2),
			want: 0.4,
		},
		{
			name:    "current weighted session",
			version: FormulaWeightedV2,
			session: NewSession(userID, "reddit", 12, time.Now()).
				WithGoal(GoalWork).WithActivities(ActivityPost).WithContent(ContentNews).
				WithTriggers(TriggerBoredom).WithContext(TimeBucketEvening, LocationHome, MultitaskNone).
				WithSelfReport(0, -2),
			want: 0.19 - 0.19 + 0.10 + 0.06 - 0.08,
		},
		{
			name:    "empty version resolves to current formula",
			version: "",
			session: NewSession(userID, "reddit", 12, time.Now()).
				WithGoal(GoalWork).WithActivities(ActivityPost).WithContent(ContentNews).
				WithTriggers(TriggerBoredom).WithContext(TimeBucketEvening, LocationHome, MultitaskNone).
				WithSelfReport(0, -2),
			want: 0.19 - 0.19 + 0.10 + 0.06 - 0.08,
		},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			result, err := ScoreSession(f.session, baseline, f.version)
			require.NoError(t, err)
			assert.InDelta(t, f.want, result.RawScore, 1e-9)
		})
	}
}

func TestScorerFor_UnknownVersion(t *testing.T) {
	_, err := ScorerFor("v9-magic")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownFormula))
}

func TestScore_ConfigurationErrors(t *testing.T) {
	userID := uuid.New()
	session := NewSession(userID, "app", 10, time.Now())

	t.Run("missing baseline", func(t *testing.T) {
		_, err := WeightedSumScorer{}.Score(session, nil)
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("non-positive goal", func(t *testing.T) {
		for _, scorer := range []Scorer{WeightedSumScorer{}, ResearchScorer{}} {
			_, err := scorer.Score(session, NewBaseline(userID, 0))
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, "dailyMinutesGoal", cfgErr.Field)
		}
	})
}

func TestDeltaPoints(t *testing.T) {
	tests := []struct {
		name     string
		raw      float64
		duration int
		goal     int
		want     int
	}{
		{"zero score", 0, 45, 120, 0},
		{"positive rounds up", 0.1, 10, 120, 1},
		{"negative rounds down", -0.1, 10, 120, -1},
		{"exact positive", 1, 12, 50, 12},
		{"exact negative", -1, 12, 50, -12},
		{"float noise around zero", 6.938893903907228e-18, 45, 60, 0},
		{"float noise above whole points", 0.2 + 1e-16, 20, 50, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeltaPoints(tt.raw, tt.duration, tt.goal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("zero goal", func(t *testing.T) {
		_, err := DeltaPoints(0.5, 10, 0)
		assert.True(t, IsConfigurationError(err))
	})
}

func TestSession_ApplyScoreOnce(t *testing.T) {
	s := NewSession(uuid.New(), "app", 10, time.Now())

	require.NoError(t, s.ApplyScore(ScoreResult{FormulaVersion: FormulaWeightedV2, RawScore: 0.5, DeltaPoints: 3}))
	err := s.ApplyScore(ScoreResult{FormulaVersion: FormulaWeightedV2, RawScore: -0.5, DeltaPoints: -3})

	assert.ErrorIs(t, err, ErrSessionAlreadyScored)
	assert.Equal(t, 0.5, s.RawScore)
	assert.Equal(t, 3, s.DeltaPoints)
}
