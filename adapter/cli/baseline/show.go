package baseline

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/behaviortracker/adapter/cli"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your baseline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		b, err := app.Service.Baseline(cmd.Context(), app.CurrentUserID)
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "No baseline yet. Create one with `behaviortracker baseline set`.")
			return nil
		}
		if err != nil {
			return err
		}
		printBaseline(cmd.OutOrStdout(), b)
		return nil
	},
}
