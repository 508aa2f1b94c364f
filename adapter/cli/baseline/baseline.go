package baseline

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/commands"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

// Cmd is the baseline command group
var Cmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage your scoring baseline",
	Long: `Your baseline holds your daily time goal and which triggers, goals,
activities and content you consider productive. Sessions cannot be scored
until it is set up.`,
}

func init() {
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(importCmd)
}

// ParseRule reads "category:value=polarity", e.g. "trigger:boredom=-1".
// Polarity may also be written as productive, neutral or unproductive.
func ParseRule(raw string) (category, value string, polarity int, err error) {
	head, pol, ok := strings.Cut(raw, "=")
	if !ok {
		return "", "", 0, fmt.Errorf("rule %q: expected category:value=polarity", raw)
	}
	category, value, ok = strings.Cut(head, ":")
	if !ok || value == "" {
		return "", "", 0, fmt.Errorf("rule %q: expected category:value=polarity", raw)
	}

	switch strings.ToLower(strings.TrimSpace(pol)) {
	case "productive", "+", "+1":
		polarity = 1
	case "neutral":
		polarity = 0
	case "unproductive", "-":
		polarity = -1
	default:
		polarity, err = strconv.Atoi(pol)
		if err != nil || polarity < -1 || polarity > 1 {
			return "", "", 0, fmt.Errorf("rule %q: polarity must be -1, 0 or 1", raw)
		}
	}
	return strings.ToLower(strings.TrimSpace(category)), value, polarity, nil
}

// ApplyRule stores one parsed rule on the command.
func ApplyRule(cmd *commands.SaveBaselineCommand, category, value string, polarity int) error {
	var target *map[string]int
	switch category {
	case "trigger", "triggers":
		target = &cmd.Triggers
	case "goal", "goals":
		target = &cmd.Goals
	case "activity", "activities":
		target = &cmd.Activities
	case "content", "contenttype", "content_type":
		target = &cmd.Content
	default:
		return fmt.Errorf("unknown rule category %q", category)
	}
	if *target == nil {
		*target = make(map[string]int)
	}
	(*target)[value] = polarity
	return nil
}

func printBaseline(w io.Writer, b *domain.Baseline) {
	fmt.Fprintf(w, "Daily goal:       %d min\n", b.DailyMinutesGoal)
	fmt.Fprintf(w, "Time zone:        %s\n", b.Timezone)
	fmt.Fprintf(w, "Bad mood counts:  %t\n", b.NegativeMoodIsUnproductive)
	fmt.Fprintf(w, "Tolerance:        %.0f%%\n", b.UnproductiveTolerancePct)
	fmt.Fprintf(w, "Productive goal:  %d%%\n", b.GoalProductivityPct)
	printRules(w, "Triggers", b.CategoryRules.Triggers)
	printRules(w, "Goals", b.CategoryRules.Goals)
	printRules(w, "Activities", b.CategoryRules.Activities)
	printRules(w, "Content", b.CategoryRules.Content)
}

func printRules[K ~string](w io.Writer, title string, rules map[K]domain.Polarity) {
	if len(rules) == 0 {
		return
	}
	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-18s %s\n", k, polarityLabel(rules[K(k)]))
	}
}

func polarityLabel(p domain.Polarity) string {
	switch p {
	case domain.PolarityProductive:
		return "productive"
	case domain.PolarityNeutral:
		return "neutral"
	default:
		return "unproductive"
	}
}
