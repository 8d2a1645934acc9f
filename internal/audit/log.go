package audit

import "github.com/btcsuite/btclog/v2"

// Subsystem is this package's logging tag.
const Subsystem = "AUDT"

var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-wide logger used by the audit package.
func UseLogger(logger btclog.Logger) {
	log = logger
}
