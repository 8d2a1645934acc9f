package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xudd/xudd/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  "Display the version, commit hash, and build metadata for xudd.",
	Run:   runVersion,
}

func runVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("xudd version %s", build.Version())

	if build.Commit != "" {
		fmt.Printf(" commit=%s", build.Commit)
	} else if hash := build.CommitHash(); hash != "" {
		fmt.Printf(" commit=%s", hash)
	}

	if build.GoVersion != "" {
		fmt.Printf(" go=%s", build.GoVersion)
	}

	fmt.Println()
}
