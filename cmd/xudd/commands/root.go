// Package commands implements the xudd CLI's subcommands.
package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "xudd",
	Short: "xudd actor-hive runtime",
	Long: `xudd boots and drives actor hives: single-process demos, an
inter-hive bridge peer for subprocess/websocket transports, and a
directive-documentation renderer.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(
		&verbose, "verbose", false, "Enable debug-level logging",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(bridgePeerCmd)
	rootCmd.AddCommand(docsCmd)
}
