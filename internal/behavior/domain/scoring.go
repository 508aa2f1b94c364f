package domain

import (
	"fmt"
	"math"
)

// Weights of the weighted-sum formula. They sum to 1.0.
const (
	WeightMood      = 0.23
	WeightContent   = 0.19
	WeightTrigger   = 0.19
	WeightMultitask = 0.15
	WeightActivity  = 0.10
	WeightGoal      = 0.06
	WeightSelf      = 0.08
)

// Legacy research formula blend.
const (
	researchSelfWeight    = 0.6
	researchOutcomeWeight = 0.4
)

// scorePrecision is the number of decimal places scores are snapped to, so
// weighted sums that are exact in decimal arithmetic stay exact.
const scorePrecision = 1e9

// pointsPerGoal is the number of points a full goal's worth of usage moves the score by.
const pointsPerGoal = 50.0

// ScoreResult is the derived score of one session.
type ScoreResult struct {
	FormulaVersion FormulaVersion
	RawScore       float64
	DeltaPoints    int
}

// Scorer computes a session score for one formula version.
type Scorer interface {
	Version() FormulaVersion
	Score(session *Session, baseline *Baseline) (ScoreResult, error)
}

// ScorerFor returns the scorer registered for a formula version.
// An empty version resolves to the current formula.
func ScorerFor(version FormulaVersion) (Scorer, error) {
	switch version {
	case "", FormulaWeightedV2:
		return WeightedSumScorer{}, nil
	case FormulaResearchV1:
		return ResearchScorer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormula, version)
	}
}

// ScoreSession scores a session with the given formula version.
func ScoreSession(session *Session, baseline *Baseline, version FormulaVersion) (ScoreResult, error) {
	scorer, err := ScorerFor(version)
	if err != nil {
		return ScoreResult{}, err
	}
	return scorer.Score(session, baseline)
}

// WeightedSumScorer implements the current weighted-sum formula.
type WeightedSumScorer struct{}

// Version returns FormulaWeightedV2.
func (WeightedSumScorer) Version() FormulaVersion { return FormulaWeightedV2 }

// Score computes rawScore in [-1, 1] and the directional point delta.
func (WeightedSumScorer) Score(session *Session, baseline *Baseline) (ScoreResult, error) {
	if err := baseline.Validate(); err != nil {
		return ScoreResult{}, err
	}
	rules := baseline.CategoryRules

	m := float64(session.MoodDelta) / 2
	p := 0.0
	if !session.Multitask.IsFocused() {
		p = -1
	}
	c := categoryContribution(session.Content, rules.Content)
	trig := categoryContribution(session.Triggers, rules.Triggers)
	a := categoryContribution(session.Activities, rules.Activities)
	g := categoryContribution([]Goal{session.Goal}, rules.Goals)
	selfP := float64(session.SelfRatedProductivity) / 2

	raw := WeightMood*m +
		WeightContent*c +
		WeightTrigger*trig +
		WeightMultitask*p +
		WeightActivity*a +
		WeightGoal*g +
		WeightSelf*selfP
	raw = math.Max(-1, math.Min(1, snap(raw)))

	points, err := DeltaPoints(raw, session.DurationMinutes, baseline.DailyMinutesGoal)
	if err != nil {
		return ScoreResult{}, err
	}
	return ScoreResult{FormulaVersion: FormulaWeightedV2, RawScore: raw, DeltaPoints: points}, nil
}

// ResearchScorer reproduces the legacy formula: a yes/no "was this productive"
// outcome blended with the normalized self rating into a 0..1 score.
type ResearchScorer struct{}

// Version returns FormulaResearchV1.
func (ResearchScorer) Version() FormulaVersion { return FormulaResearchV1 }

// Score computes the 0..1 session score of the legacy formula.
func (ResearchScorer) Score(session *Session, baseline *Baseline) (ScoreResult, error) {
	if err := baseline.Validate(); err != nil {
		return ScoreResult{}, err
	}
	rules := baseline.CategoryRules

	goalProductive := isProductive(session.Goal, rules.Goals)
	activityProductive := anyProductive(session.Activities, rules.Activities)
	contentProductive := anyProductive(session.Content, rules.Content)
	moodBad := baseline.NegativeMoodIsUnproductive && session.MoodDelta < 0

	outcome := 0.0
	if goalProductive && activityProductive && contentProductive && !moodBad {
		outcome = 1
	}
	score := snap(researchSelfWeight*session.PerceivedProductivity() + researchOutcomeWeight*outcome)

	points, err := DeltaPoints(score*2-1, session.DurationMinutes, baseline.DailyMinutesGoal)
	if err != nil {
		return ScoreResult{}, err
	}
	return ScoreResult{FormulaVersion: FormulaResearchV1, RawScore: score, DeltaPoints: points}, nil
}

// DeltaPoints converts a -1..1 score into a user-facing point change scaled by
// session length relative to the daily goal. Positive values round up and
// negative values round down, so a zero score is the only source of zero points.
func DeltaPoints(rawScore float64, durationMinutes, dailyMinutesGoal int) (int, error) {
	if dailyMinutesGoal <= 0 {
		return 0, NewConfigurationError("dailyMinutesGoal", "must be positive", dailyMinutesGoal)
	}
	rate := pointsPerGoal / float64(dailyMinutesGoal)
	rawPoints := snap(snap(rawScore) * float64(durationMinutes) * rate)
	if rawPoints > 0 {
		return int(math.Ceil(rawPoints)), nil
	}
	return int(math.Floor(rawPoints)), nil
}

// snap rounds v to scorePrecision and folds negative zero into zero.
func snap(v float64) float64 {
	v = math.Round(v*scorePrecision) / scorePrecision
	if v == 0 {
		return 0
	}
	return v
}

// categoryContribution averages +1 for every chosen value the rules mark
// productive and -1 for everything else, absent and unknown values included.
// An empty selection contributes -1.
func categoryContribution[T ~string](chosen []T, rules map[T]Polarity) float64 {
	if len(chosen) == 0 {
		return -1
	}
	sum := 0.0
	for _, v := range chosen {
		if isProductive(v, rules) {
			sum++
		} else {
			sum--
		}
	}
	return sum / float64(len(chosen))
}

func anyProductive[T ~string](chosen []T, rules map[T]Polarity) bool {
	for _, v := range chosen {
		if isProductive(v, rules) {
			return true
		}
	}
	return false
}

func isProductive[T ~string](v T, rules map[T]Polarity) bool {
	if string(v) == "unknown" {
		return false
	}
	return rules[v] == PolarityProductive
}
