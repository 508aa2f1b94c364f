package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/queries"
)

var (
	adviceDate string
	adviceDays int
)

var adviceCmd = &cobra.Command{
	Use:   "advice",
	Short: "Show what to fix and what to keep",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		date, err := ParseDate(adviceDate, time.Now())
		if err != nil {
			return err
		}
		var advice *queries.AdviceDTO
		if adviceDays > 1 {
			advice, err = a.Service.PeriodAdvice(cmd.Context(), a.CurrentUserID, date, adviceDays)
		} else {
			advice, err = a.Service.Advice(cmd.Context(), a.CurrentUserID, date)
		}
		if err != nil {
			return err
		}
		RenderAdvice(cmd.OutOrStdout(), advice)
		return nil
	},
}

func init() {
	adviceCmd.Flags().StringVarP(&adviceDate, "date", "d", "", "day to advise on (YYYY-MM-DD, today, yesterday)")
	adviceCmd.Flags().IntVar(&adviceDays, "days", 1, "advise on this many days starting with --date")
	rootCmd.AddCommand(adviceCmd)
}
