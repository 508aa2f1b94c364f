package cli

import (
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Compare your averages since the baseline with its goals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := RequireApp()
		if err != nil {
			return err
		}
		p, err := a.Service.Progress(cmd.Context(), a.CurrentUserID)
		if err != nil {
			return err
		}
		RenderProgress(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
}
