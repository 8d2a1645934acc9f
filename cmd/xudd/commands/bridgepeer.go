package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xudd/xudd/bridge"
	"github.com/xudd/xudd/hive"
)

var (
	bridgePeerHiveID string
	bridgePeerLogDir string
)

var bridgePeerCmd = &cobra.Command{
	Use:   "bridge-peer",
	Short: "Run a passive bridge peer hive over stdin/stdout",
	Long: `bridge-peer boots a hive that frames envelopes as newline-delimited
JSON over its own stdin/stdout, the subprocess target bridge.ProcessTransport
expects on the other end of its pipe. Intended to be launched by another
xudd process, not interactively. As the CLI's closest thing to a
long-lived daemon, it's the one subcommand that exposes --log-dir.`,
	RunE: runBridgePeer,
}

func init() {
	bridgePeerCmd.Flags().StringVar(
		&bridgePeerHiveID, "hive-id", "",
		"Hive ID to advertise to the initiating peer (default: random)",
	)
	bridgePeerCmd.Flags().StringVar(
		&bridgePeerLogDir, "log-dir", "",
		"Directory for rotating log files (empty to disable file logging)",
	)
}

func runBridgePeer(_ *cobra.Command, _ []string) error {
	logRotator := setupLogging(verbose, bridgePeerLogDir)
	if logRotator != nil {
		defer logRotator.Close()
	}

	h := hive.New(bridgePeerHiveID)
	transport := bridge.NewStdioTransport()
	defer transport.Close()

	peer := bridge.NewPeerHive(h, transport)

	fmt.Fprintf(
		os.Stderr, "bridge-peer: hive %s listening on stdio\n",
		peer.Hive.HiveID(),
	)

	return peer.Hive.Run(context.Background())
}
