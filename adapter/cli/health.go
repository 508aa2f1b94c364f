package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage, cache and event wiring",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		if a.Health == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}

		health := a.Health.Check(cmd.Context())
		names := make([]string, 0, len(health.Checks))
		for name := range health.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		out := cmd.OutOrStdout()
		for _, name := range names {
			res := health.Checks[name]
			fmt.Fprintf(out, "%-10s %-10s %s\n", name, res.Status, res.Message)
		}
		fmt.Fprintf(out, "overall    %s\n", health.Status)
		if health.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
