package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

var digestDate string

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Compute or show daily digests",
}

var digestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the digest of a day for every user",
	Long: `Compute and store the digest of a day for every user with a baseline.
Defaults to yesterday.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		raw := digestDate
		if raw == "" {
			raw = "yesterday"
		}
		date, err := ParseDate(raw, time.Now())
		if err != nil {
			return err
		}

		result, err := a.Service.RunDigest(cmd.Context(), date)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Digested %d user(s) for %s\n", len(result.Digests), result.Day)
		for _, f := range result.Failures {
			fmt.Fprintf(out, "  failed %s: %v\n", f.UserID, f.Err)
		}
		for _, id := range result.Pending {
			fmt.Fprintf(out, "  pending %s: the day has not ended in their time zone\n", id)
		}
		if len(result.Failures) > 0 {
			return fmt.Errorf("%d digest(s) failed", len(result.Failures))
		}
		return nil
	},
}

var digestShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your stored digest for a day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		raw := digestDate
		if raw == "" {
			raw = "yesterday"
		}
		date, err := ParseDate(raw, time.Now())
		if err != nil {
			return err
		}

		d, err := a.Service.Digest(cmd.Context(), a.CurrentUserID, date)
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Fprintf(cmd.OutOrStdout(), "No digest for %s yet. Run `behaviortracker digest run --date %s`.\n",
				date.Format(time.DateOnly), date.Format(time.DateOnly))
			return nil
		}
		if err != nil {
			return err
		}
		RenderDigest(cmd.OutOrStdout(), d)
		return nil
	},
}

func init() {
	digestCmd.PersistentFlags().StringVarP(&digestDate, "date", "d", "", "day (YYYY-MM-DD, today, yesterday)")
	digestCmd.AddCommand(digestRunCmd)
	digestCmd.AddCommand(digestShowCmd)
	rootCmd.AddCommand(digestCmd)
}
