package core

import (
	log "github.com/sirupsen/logrus"

	"github.com/cryptowatch/cryptowatch/internal/inventory"
	"github.com/cryptowatch/cryptowatch/internal/lifecycle"
	"github.com/cryptowatch/cryptowatch/internal/output"
	"github.com/cryptowatch/cryptowatch/internal/redact"
)

// RunSnapshot produces a procfs-only, point-in-time inventory, bypassing
// the kernel probes and event pipeline entirely.
func RunSnapshot(opts Options) ExitCategory {
	configureVerbosity(opts.Verbose, opts.Quiet)

	if _, err := loadSettings(opts); err != nil {
		log.WithError(err).Error("snapshot: failed to load configuration")
		return ExitGeneral
	}

	sink, ownsSink, err := openSink(opts.OutputPath)
	if err != nil {
		log.WithError(err).Error("snapshot: failed to open output sink")
		return ExitGeneral
	}
	defer closeSinkIfOwned(sink, ownsSink)

	red := redact.New(opts.DisableRedaction)
	shutdown := lifecycle.NewShutdownFlag()
	stopWatch := shutdown.Watch()
	defer stopWatch()

	scanner, err := inventory.NewScanner(red, shutdown)
	if err != nil {
		log.WithError(err).Error("snapshot: failed to initialize process filesystem scanner")
		return ExitKernelEnvironment
	}

	snap := scanner.Scan()
	if snap.Partial {
		log.Warn("snapshot: enumeration stopped early (budget exceeded or shutdown requested)")
	}

	if err := output.WriteDocument(sink, opts.Format == "pretty", snap); err != nil {
		log.WithError(err).Warn("snapshot: error emitting document")
	}
	return ExitSuccess
}
