// Package metricsexport publishes the probe manager's counters and the
// event pool's occupancy as Prometheus metrics, served over promhttp. Each
// Exporter owns its own prometheus.Registry rather than registering
// against the package-level default, so a test can construct more than
// one Exporter without a duplicate-registration panic.
package metricsexport

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Exporter holds the metrics this agent publishes: the probe manager's
// events_processed/events_dropped counters and the event pool's current
// occupancy.
type Exporter struct {
	registry        *prometheus.Registry
	eventsProcessed prometheus.Counter
	eventsDropped   prometheus.Counter
	poolInUse       prometheus.Gauge
	poolCapacity    prometheus.Gauge
}

// New constructs an Exporter with its own registry.
func New() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		eventsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptowatch_events_processed_total",
			Help: "Records read from the ring buffer.",
		}),
		eventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cryptowatch_events_dropped_total",
			Help: "Records read from the ring buffer and then dropped (malformed, undecodable, unknown kind, or event pool exhausted); ring-buffer overflow is not counted.",
		}),
		poolInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cryptowatch_pool_in_use",
			Help: "Event pool slots currently acquired.",
		}),
		poolCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cryptowatch_pool_capacity",
			Help: "Event pool fixed capacity.",
		}),
	}
	e.registry.MustRegister(e.eventsProcessed, e.eventsDropped, e.poolInUse, e.poolCapacity)
	return e
}

// SetPoolCapacity records the pool's fixed capacity; called once at
// startup.
func (e *Exporter) SetPoolCapacity(capacity int) {
	e.poolCapacity.Set(float64(capacity))
}

// lastTotals holds the cumulative totals seen by the previous Sample call.
type lastTotals struct {
	processed uint64
	dropped   uint64
}

// Sample records one observation of the driver's running totals and the
// pool's current occupancy. processedTotal and droppedTotal are cumulative
// (as reported by bpfprobe.Stats); Sample adds only the delta since the
// totals stored in last, then updates last.
func (e *Exporter) Sample(processedTotal, droppedTotal uint64, poolInUse int, last *lastTotals) {
	if processedTotal >= last.processed {
		e.eventsProcessed.Add(float64(processedTotal - last.processed))
	}
	if droppedTotal >= last.dropped {
		e.eventsDropped.Add(float64(droppedTotal - last.dropped))
	}
	last.processed = processedTotal
	last.dropped = droppedTotal
	e.poolInUse.Set(float64(poolInUse))
}

// NewTotals returns a zeroed running-totals tracker for use with Sample.
func NewTotals() *lastTotals {
	return &lastTotals{}
}

// Serve starts an HTTP server exposing /metrics on addr. It runs until ctx
// is canceled; listen errors are logged, not returned, since this is a
// fire-and-forget goroutine: the metrics endpoint is an optional side
// channel, never load-bearing for the main pipeline.
func (e *Exporter) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	log.Infof("metrics exporter listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Warn("metrics exporter stopped")
	}
}
