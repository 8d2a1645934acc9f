package bridge

import "github.com/btcsuite/btclog/v2"

// Subsystem is this package's logging tag, registered with the top-level
// logging rotation the same way actor.Subsystem and hive.Subsystem are.
const Subsystem = "BRDG"

var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-wide logger used by the bridge package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
