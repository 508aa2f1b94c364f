package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/queries"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

var (
	colorFix  = lipgloss.Color("#fab387")
	colorKeep = lipgloss.Color("#a6e3a1")
	colorDim  = lipgloss.Color("#a6adc8")
	colorHead = lipgloss.Color("#74c7ec")

	titleStyle = lipgloss.NewStyle().Foreground(colorHead).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorDim)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(64)
	fixCardStyle  = cardStyle.BorderForeground(colorFix)
	keepCardStyle = cardStyle.BorderForeground(colorKeep)

	fixLabel  = lipgloss.NewStyle().Foreground(colorFix).Bold(true).Render("FIX")
	keepLabel = lipgloss.NewStyle().Foreground(colorKeep).Bold(true).Render("KEEP")
)

// RenderAdvice writes the advice cards of a day or period.
func RenderAdvice(w io.Writer, advice *queries.AdviceDTO) {
	title := "Advice for " + advice.Day
	if advice.Days > 1 {
		title = fmt.Sprintf("Advice for %d days from %s", advice.Days, advice.Day)
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	if advice.Empty {
		fmt.Fprintln(w, mutedStyle.Render("No sessions logged, nothing to advise yet."))
		return
	}
	if len(advice.Cards) == 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d sessions logged and nothing stands out.", advice.SessionCount)))
		return
	}
	for _, c := range advice.Cards {
		fmt.Fprintln(w, renderCard(c))
	}
}

func renderCard(c domain.AdviceCard) string {
	if c.Kind == domain.CardKeep {
		return keepCardStyle.Render(keepLabel + "  " + c.Text)
	}
	header := fixLabel
	if c.ImpactMinutes != nil {
		header += mutedStyle.Render(fmt.Sprintf("  ~%d min", *c.ImpactMinutes))
	}
	return fixCardStyle.Render(header + "\n" + c.Text)
}

// RenderAggregate writes a compact report of an aggregate.
func RenderAggregate(w io.Writer, agg *domain.DailyAggregate) {
	fmt.Fprintln(w, titleStyle.Render("Day "+agg.Window.Label()))
	if agg.IsEmpty() {
		fmt.Fprintln(w, mutedStyle.Render("No sessions."))
		return
	}
	fmt.Fprintf(w, "Sessions:      %d (%d min)\n", agg.SessionCount, agg.TotalMinutes)
	fmt.Fprintf(w, "Points:        %+d\n", agg.TotalDeltaPoints)
	fmt.Fprintf(w, "Productive:    %d%% of minutes\n", percent(agg.Productivity))
	fmt.Fprintf(w, "Late night:    %d min\n", agg.LateNightMinutes)
	fmt.Fprintf(w, "Longest:       %d min\n", agg.LongestSessionMinutes)
	fmt.Fprintf(w, "Self-rating gap: %+.2f\n", agg.PerceivedGap)

	for _, d := range agg.Dimensions {
		if len(d.Groups) == 0 {
			continue
		}
		fmt.Fprintf(w, "%-12s most used %s, least productive %s\n",
			humanizeDimension(d.Dimension)+":", d.MostUsed.Key, d.LeastProductive.Key)
	}

	bins := make([]string, 0, len(agg.Histogram.Bins))
	for _, b := range agg.Histogram.Bins {
		bins = append(bins, fmt.Sprintf("%s: %d", b.Label, b.Count))
	}
	fmt.Fprintln(w, mutedStyle.Render("Lengths: "+strings.Join(bins, ", ")))
}

// RenderDigest writes a stored digest.
func RenderDigest(w io.Writer, d *domain.DailyDigest) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Digest %s: %.0f/100", d.Day, d.FinalScore)))
	fmt.Fprintf(w, "Sessions: %d (%d min), mean score %.2f\n", d.SessionCount, d.TotalMinutes, d.WeightedMeanScore)
	if d.Status != "" {
		fmt.Fprintf(w, "Status: %s\n", strings.ReplaceAll(string(d.Status), "_", " "))
	}
	for _, p := range d.Periods {
		if p.SessionCount == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-9s %3d min in %d sessions, %d%% productive, %d%% lifted mood\n",
			p.Bucket, p.TotalMinutes, p.SessionCount, percent(p.HighProdPct), percent(p.MoodLiftPct))
	}
	if d.OverMinutesPenalty > 0 || d.UnproductivePenalty > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Penalties: over goal -%.1f, unproductive -%.1f",
			d.OverMinutesPenalty, d.UnproductivePenalty)))
	}
	for _, c := range d.Advice {
		fmt.Fprintln(w, renderCard(c))
	}
	for _, tip := range d.Tips {
		fmt.Fprintln(w, "* "+tip)
	}
}

// RenderProgress prints the averages since the baseline next to its goals.
func RenderProgress(w io.Writer, p *domain.Progress) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Progress since %s (%.1f days)", p.Since.Format(time.DateOnly), p.Days)))
	fmt.Fprintf(w, "Sessions:     %d (%d min)\n", p.SessionCount, p.TotalMinutes)
	fmt.Fprintf(w, "Daily use:    %d min, goal %d %s\n", p.AvgDailyMinutes, p.DailyMinutesGoal,
		goalMark(p.AvgDailyMinutes <= p.DailyMinutesGoal))
	fmt.Fprintf(w, "Productive:   %d%%, goal %d%% %s\n", p.AvgScorePct, p.GoalProductivityPct,
		goalMark(p.AvgScorePct >= p.GoalProductivityPct))
}

func goalMark(met bool) string {
	if met {
		return keepLabel
	}
	return fixLabel
}

func percent(f float64) int {
	return int(math.Round(f * 100))
}

func humanizeDimension(d domain.Dimension) string {
	s := strings.ReplaceAll(string(d), "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
