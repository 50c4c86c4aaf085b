package core

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cryptowatch/cryptowatch/internal/bpfprobe"
	"github.com/cryptowatch/cryptowatch/internal/driver"
	"github.com/cryptowatch/cryptowatch/internal/filter"
	"github.com/cryptowatch/cryptowatch/internal/lifecycle"
	"github.com/cryptowatch/cryptowatch/internal/metricsexport"
	"github.com/cryptowatch/cryptowatch/internal/output"
	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/cryptowatch/cryptowatch/internal/redact"
)

// configureVerbosity sets the package-global logrus level from the two
// CLI-facing flags.
func configureVerbosity(verbose, quiet bool) {
	switch {
	case quiet:
		log.SetLevel(log.WarnLevel)
	case verbose:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// RunMonitor runs the streaming pipeline: kernel probes through decode,
// classify, redact, filter, and emit.
func RunMonitor(opts Options) ExitCategory {
	configureVerbosity(opts.Verbose, opts.Quiet)

	if opts.FollowChildren {
		log.Error("monitor: follow_children is only supported in profile mode")
		return ExitArgument
	}

	settings, err := loadSettings(opts)
	if err != nil {
		log.WithError(err).Error("monitor: failed to load configuration")
		return ExitGeneral
	}

	sink, ownsSink, err := openSink(opts.OutputPath)
	if err != nil {
		log.WithError(err).Error("monitor: failed to open output sink")
		return ExitGeneral
	}
	formatter := output.New(sink, ownsSink, parseFormat(opts.Format))
	defer func() {
		if err := formatter.Finalize(); err != nil {
			log.WithError(err).Warn("monitor: error finalizing output")
		}
	}()

	p := pool.New(settings.PoolCapacity)
	probes := bpfprobe.NewManager()
	filters := filter.BuildSet(filter.Options{
		PID:           opts.PID,
		ProcessName:   opts.ProcessName,
		LibrarySubstr: opts.LibrarySubstring,
		FileGlob:      opts.FileGlob,
	})
	red := redact.New(opts.DisableRedaction)
	shutdown := lifecycle.NewShutdownFlag()
	stopWatch := shutdown.Watch()
	defer stopWatch()

	hooks := driver.Hooks{
		OnEvent: func(v output.EventView) {
			if err := formatter.Emit(v); err != nil {
				log.WithError(err).Warn("monitor: error emitting event")
			}
		},
	}

	d := driver.New(probes, p, filters, red, resolveBootTime(), shutdown, hooks)

	if settings.MetricsListen != "" {
		exporter := metricsexport.New()
		exporter.SetPoolCapacity(settings.PoolCapacity)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go exporter.Serve(ctx, settings.MetricsListen)
		go sampleMetricsWhileRunning(ctx, exporter, d)
	}

	if err := d.Run(opts.Duration()); err != nil {
		cat := classifyStartupError(err)
		log.WithError(err).Error("monitor: run failed")
		return cat
	}
	return ExitSuccess
}

// sampleMetricsWhileRunning periodically copies the driver's running totals
// into the exporter until ctx is canceled. It is a best-effort side channel:
// the single-threaded pipeline goroutine owns the authoritative state; this
// goroutine only reads monotonically-increasing counters and a gauge, never
// mutates driver state.
func sampleMetricsWhileRunning(ctx context.Context, exporter *metricsexport.Exporter, d *driver.Driver) {
	totals := metricsexport.NewTotals()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := d.Probes().Stats()
			exporter.Sample(stats.EventsProcessed, stats.EventsDropped, d.Pool().InUseCount(), totals)
		}
	}
}
