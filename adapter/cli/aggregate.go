package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	aggregateDate string
	aggregateDays int
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Summarize a day of sessions",
	Long: `Summarize every session of a calendar day, or of several days with --days.

Examples:
  behaviortracker aggregate
  behaviortracker aggregate --date 2024-05-10
  behaviortracker aggregate --date 2024-05-06 --days 7`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		date, err := ParseDate(aggregateDate, time.Now())
		if err != nil {
			return err
		}

		if aggregateDays > 1 {
			agg, err := a.Service.PeriodAggregate(cmd.Context(), a.CurrentUserID, date, aggregateDays)
			if err != nil {
				return err
			}
			RenderAggregate(cmd.OutOrStdout(), agg)
			return nil
		}

		agg, err := a.Service.DailyAggregate(cmd.Context(), a.CurrentUserID, date)
		if err != nil {
			return err
		}
		RenderAggregate(cmd.OutOrStdout(), agg)
		return nil
	},
}

func init() {
	aggregateCmd.Flags().StringVarP(&aggregateDate, "date", "d", "", "day to summarize (YYYY-MM-DD, today, yesterday)")
	aggregateCmd.Flags().IntVar(&aggregateDays, "days", 1, "number of days to cover")
	rootCmd.AddCommand(aggregateCmd)
}
