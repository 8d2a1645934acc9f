package hive

import "github.com/btcsuite/btclog/v2"

// Subsystem defines the logging code for this package.
const Subsystem = "HIVE"

var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-level logger used by the hive package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
