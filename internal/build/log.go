package build

import (
	"github.com/btcsuite/btclog/v2"
)

// Subsystem defines the logging code for this package.
const Subsystem = "BUILD"

// log is the package-level logger used throughout internal/build. It
// defaults to a disabled logger so that importers who never call UseLogger
// don't pay for formatting work they never asked for.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-level logger used by internal/build. Callers
// that assemble a HandlerSet for the whole process should call this once
// during startup, before spawning any hive.
func UseLogger(logger btclog.Logger) {
	log = logger
}
