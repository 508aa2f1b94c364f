package session

import (
	"github.com/spf13/cobra"
)

// Cmd is the session command group
var Cmd = &cobra.Command{
	Use:   "session",
	Short: "Log and list app sessions",
}

func init() {
	Cmd.AddCommand(logCmd)
	Cmd.AddCommand(listCmd)
}
