package session

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
)

var listDate string

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the sessions of a day",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		date, err := cli.ParseDate(listDate, time.Now())
		if err != nil {
			return err
		}

		sessions, err := app.Service.ListSessions(cmd.Context(), app.CurrentUserID, date)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintf(out, "No sessions on %s.\n", date.Format(time.DateOnly))
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tAPP\tMIN\tBUCKET\tSCORE\tPOINTS\tFORMULA")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2f\t%+d\t%s\n",
				s.CreatedAt.Format("15:04"), s.AppID, s.DurationMinutes, s.TimeBucket,
				s.Score, s.DeltaPoints, s.FormulaVersion)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().StringVarP(&listDate, "date", "d", "", "day to list (YYYY-MM-DD, today, yesterday)")
}
