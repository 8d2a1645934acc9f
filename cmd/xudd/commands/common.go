package commands

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog/v2"
	"github.com/xudd/xudd/actor"
	"github.com/xudd/xudd/bridge"
	"github.com/xudd/xudd/hive"
	"github.com/xudd/xudd/internal/audit"
	"github.com/xudd/xudd/internal/build"
)

// setupLogging wires a console btclog handler into every subsystem's
// package-level logger, following the dual-stream pattern substrated's
// main.go uses: when logDir is non-empty, a rotating, gzip-compressing
// file handler is fanned out alongside the console one via HandlerSet,
// exactly as substrated's main.go combines consoleHandler/fileHandler. A
// non-nil *build.RotatingLogWriter is returned so the caller can defer
// its Close; it is nil when logDir is empty or rotator init failed.
func setupLogging(verbose bool, logDir string) *build.RotatingLogWriter {
	var handlers []btclog.Handler

	consoleHandler := btclog.NewDefaultHandler(os.Stderr)
	handlers = append(handlers, consoleHandler)

	var logRotator *build.RotatingLogWriter
	if logDir != "" {
		logRotator = build.NewRotatingLogWriter()
		err := logRotator.InitLogRotator(&build.LogRotatorConfig{
			LogDir:         logDir,
			MaxLogFiles:    build.DefaultMaxLogFiles,
			MaxLogFileSize: build.DefaultMaxLogFileSize,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr,
				"failed to init log rotator: %v "+
					"(continuing without file logging)\n",
				err,
			)
			logRotator = nil
		} else {
			handlers = append(
				handlers, btclog.NewDefaultHandler(logRotator),
			)
		}
	}

	handlerSet := build.NewHandlerSet(handlers...)
	if verbose {
		handlerSet.SetLevel(btclog.LevelDebug)
	}

	logger := btclog.NewSLogger(handlerSet)

	actor.UseLogger(logger.WithPrefix(actor.Subsystem))
	hive.UseLogger(logger.WithPrefix(hive.Subsystem))
	bridge.UseLogger(logger.WithPrefix(bridge.Subsystem))
	audit.UseLogger(logger.WithPrefix(audit.Subsystem))
	build.UseLogger(logger.WithPrefix(build.Subsystem))

	return logRotator
}
