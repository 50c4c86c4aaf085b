package core

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cryptowatch/cryptowatch/internal/bpfprobe"
	"github.com/cryptowatch/cryptowatch/internal/driver"
	"github.com/cryptowatch/cryptowatch/internal/enrich"
	"github.com/cryptowatch/cryptowatch/internal/filter"
	"github.com/cryptowatch/cryptowatch/internal/lifecycle"
	"github.com/cryptowatch/cryptowatch/internal/output"
	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/cryptowatch/cryptowatch/internal/profile"
	"github.com/cryptowatch/cryptowatch/internal/redact"
)

// errNoTargetPID is an ExitArgument condition: profile mode requires a
// target PID; there is no whole-system profile shape.
var errNoTargetPID = errors.New("core: profile mode requires --pid")

// errDescendantSetUnavailable is an ExitArgument condition: follow_children
// asks the aggregator to track a PID's descendants, which is meaningless if
// the target itself is already gone by the time the run starts. Rather than
// silently tracking only the (absent) target, RunProfile rejects the flag
// combination outright.
var errDescendantSetUnavailable = errors.New("core: follow_children requires the target process to be running at profile start")

// processCheckInterval is how often RunProfile checks whether the target
// process has exited.
const processCheckInterval = 500 * time.Millisecond

// RunProfile accumulates per-PID activity and emits one profile document.
//
// follow_children is implemented by wiring the driver with an empty
// (match-all) filter.Set rather than a PID-based one, because a static
// filter cannot express "this PID, plus whichever descendants get added
// or removed as the run progresses" — that dynamic membership decision
// belongs to profile.Aggregator.Observe alone, which is exactly the
// boundary driver.Hooks.OnRawEvent exists to expose.
func RunProfile(opts Options) ExitCategory {
	configureVerbosity(opts.Verbose, opts.Quiet)

	if opts.PID == nil {
		log.WithError(errNoTargetPID).Error("profile: missing target")
		return ExitArgument
	}
	if opts.FollowChildren && !enrich.ProcessExists(*opts.PID) {
		log.WithError(errDescendantSetUnavailable).Error("profile: cannot establish descendant set")
		return ExitArgument
	}

	settings, err := loadSettings(opts)
	if err != nil {
		log.WithError(err).Error("profile: failed to load configuration")
		return ExitGeneral
	}

	sink, ownsSink, err := openSink(opts.OutputPath)
	if err != nil {
		log.WithError(err).Error("profile: failed to open output sink")
		return ExitGeneral
	}
	defer closeSinkIfOwned(sink, ownsSink)

	p := pool.New(settings.PoolCapacity)
	probes := bpfprobe.NewManager()
	red := redact.New(opts.DisableRedaction)
	shutdown := lifecycle.NewShutdownFlag()
	stopWatch := shutdown.Watch()
	defer stopWatch()

	agg := profile.NewAggregator(*opts.PID, opts.FollowChildren)
	hooks := driver.Hooks{
		OnRawEvent: func(e *pool.Event) { agg.Observe(e) },
	}

	d := driver.New(probes, p, filter.NewSet(), red, resolveBootTime(), shutdown, hooks)

	reason := profile.TerminationDurationElapsed
	done := make(chan error, 1)
	go func() { done <- d.Run(opts.Duration()) }()

	targetPID := *opts.PID
	ticker := time.NewTicker(processCheckInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case runErr := <-done:
			if runErr != nil {
				cat := classifyStartupError(runErr)
				log.WithError(runErr).Error("profile: run failed")
				return cat
			}
			break loop
		case <-ticker.C:
			if shutdown.IsRequested() {
				reason = profile.TerminationShutdownRequested
			} else if !enrich.ProcessExists(targetPID) {
				reason = profile.TerminationTargetGone
				shutdown.Request()
			}
		}
	}

	doc := agg.Finalize(reason)
	if err := output.WriteDocument(sink, opts.Format == "pretty", doc); err != nil {
		log.WithError(err).Warn("profile: error emitting document")
	}
	return ExitSuccess
}
