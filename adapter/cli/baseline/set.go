package baseline

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/commands"
)

var (
	goalMinutes  int
	timezone     string
	negativeMood bool
	tolerance    float64
	goalProd     int
	rules        []string
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or replace your baseline",
	Long: `Create or replace your baseline. Rules replace all previous rules.

Examples:
  behaviortracker baseline set --goal-minutes 120 --timezone Europe/Berlin \
    --rule goal:work=1 --rule trigger:boredom=-1 --rule content:educational=productive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		save := commands.SaveBaselineCommand{
			UserID:                     app.CurrentUserID,
			DailyMinutesGoal:           goalMinutes,
			NegativeMoodIsUnproductive: negativeMood,
			Timezone:                   timezone,
		}
		if cmd.Flags().Changed("tolerance") {
			save.UnproductiveTolerancePct = &tolerance
		}
		if cmd.Flags().Changed("goal-productivity") {
			save.GoalProductivityPct = &goalProd
		}
		for _, raw := range rules {
			category, value, polarity, err := ParseRule(raw)
			if err != nil {
				return err
			}
			if err := ApplyRule(&save, category, value, polarity); err != nil {
				return err
			}
		}

		b, err := app.Service.SaveBaseline(cmd.Context(), save)
		if err != nil {
			return fmt.Errorf("failed to save baseline: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Baseline saved.")
		printBaseline(cmd.OutOrStdout(), b)
		return nil
	},
}

func init() {
	setCmd.Flags().IntVarP(&goalMinutes, "goal-minutes", "g", 0, "daily minutes goal (required)")
	setCmd.Flags().StringVar(&timezone, "timezone", "", "IANA time zone for your days (default UTC)")
	setCmd.Flags().BoolVar(&negativeMood, "negative-mood-unproductive", false, "count sessions that lower your mood as unproductive")
	setCmd.Flags().Float64Var(&tolerance, "tolerance", 20, "share of daily minutes that may be unproductive before the digest penalizes")
	setCmd.Flags().IntVar(&goalProd, "goal-productivity", 50, "productivity percentage a day needs to count as on track")
	setCmd.Flags().StringArrayVarP(&rules, "rule", "r", nil, "category:value=polarity, repeatable")
	_ = setCmd.MarkFlagRequired("goal-minutes")
}
