// Package driver implements the single-threaded cooperative pipeline that
// ties decode, acceptance filtering, enrichment, classification,
// redaction, filter matching, and output together: load/attach, then a
// channel-driven per-record loop until shutdown is requested, structured
// as an explicit Init/Running/Draining/Stopped state machine.
package driver

import (
	"encoding/binary"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cryptowatch/cryptowatch/internal/bpfprobe"
	"github.com/cryptowatch/cryptowatch/internal/classify"
	"github.com/cryptowatch/cryptowatch/internal/decode"
	"github.com/cryptowatch/cryptowatch/internal/enrich"
	"github.com/cryptowatch/cryptowatch/internal/filter"
	"github.com/cryptowatch/cryptowatch/internal/lifecycle"
	"github.com/cryptowatch/cryptowatch/internal/output"
	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/cryptowatch/cryptowatch/internal/record"
	"github.com/cryptowatch/cryptowatch/internal/redact"
)

// State is one of the four phases of the event driver's lifecycle.
type State int

const (
	StateInit State = iota
	StateRunning
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const drainBudget = 1 * time.Second

// Hooks lets callers observe accepted events without coupling the driver to
// a particular consumer — the monitor command emits to an output.Formatter;
// the profile command instead feeds an aggregator. Exactly one of these is
// typically set.
type Hooks struct {
	OnEvent func(output.EventView)
	// OnRawEvent, when set, is called with the pool-held event before
	// release, for consumers (the profile aggregator) that need fields the
	// JSON projection omits (Ppid) or the enum form of FileKind rather than
	// its string name. The callee must not retain e past the call.
	OnRawEvent func(e *pool.Event)
}

// Driver runs the Init -> Running -> Draining -> Stopped pipeline over one
// bpfprobe.Manager.
type Driver struct {
	probes   *bpfprobe.Manager
	pool     *pool.Pool
	filters  filter.Set
	red      redact.Redactor
	bootTime time.Time
	shutdown *lifecycle.ShutdownFlag
	hooks    Hooks

	state State
}

// New constructs a Driver. bootTime is the wall-clock instant corresponding
// to a monotonic record timestamp of zero (see decode.Decode).
func New(probes *bpfprobe.Manager, p *pool.Pool, filters filter.Set, red redact.Redactor, bootTime time.Time, shutdown *lifecycle.ShutdownFlag, hooks Hooks) *Driver {
	return &Driver{
		probes:   probes,
		pool:     p,
		filters:  filters,
		red:      red,
		bootTime: bootTime,
		shutdown: shutdown,
		hooks:    hooks,
		state:    StateInit,
	}
}

// State returns the driver's current lifecycle state.
func (d *Driver) State() State { return d.state }

// Probes returns the driver's probe manager, for callers (the metrics
// exporter) that sample its stats while a run is in progress.
func (d *Driver) Probes() *bpfprobe.Manager { return d.probes }

// Pool returns the driver's event pool, for callers that sample its
// occupancy while a run is in progress.
func (d *Driver) Pool() *pool.Pool { return d.pool }

// Run executes the full lifecycle: Init -> Running for up to duration (or
// indefinitely if duration <= 0) -> Draining -> Stopped. Run blocks until
// Stopped.
func (d *Driver) Run(duration time.Duration) error {
	if err := d.probes.Load(); err != nil {
		return err
	}
	if err := d.probes.Attach(); err != nil {
		return err
	}
	d.state = StateRunning

	deadline := time.Time{}
	if duration > 0 {
		deadline = time.Now().Add(duration)
	}

	for d.state == StateRunning {
		if d.shutdown.IsRequested() {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		d.probes.Poll(d.shutdown.IsRequested, d.handleRaw)
	}

	d.state = StateDraining
	drainDeadline := time.Now().Add(drainBudget)
	for time.Now().Before(drainDeadline) {
		result := d.probes.Poll(func() bool { return false }, d.handleRaw)
		if result.Consumed == 0 {
			break
		}
	}

	d.state = StateStopped
	d.probes.Cleanup()
	return nil
}

// handleRaw runs one record through decode -> acceptance -> enrich ->
// classify -> redact -> filter -> emit -> release, in that fixed order.
func (d *Driver) handleRaw(raw []byte) {
	rec, err := parseRaw(raw)
	if err != nil {
		log.WithError(err).Warn("driver: malformed record, dropping")
		d.probes.RecordDrop()
		return
	}

	h, ok, err := decode.Decode(d.pool, rec, d.bootTime)
	if err != nil {
		log.WithError(err).Warn("driver: decode failed, dropping")
		d.probes.RecordDrop()
		return
	}
	if !ok {
		if !record.Kind(rec.Kind).Valid() {
			log.WithField("kind", rec.Kind).Warn("driver: unknown record kind, dropping")
		}
		d.probes.RecordDrop()
		return
	}
	e := d.pool.Get(h)
	defer func() { _ = d.pool.Release(h) }()

	if !acceptKind(e) {
		return
	}

	enrich.Enrich(e)
	e.FileKind = classify.FileKind(e.File)
	e.LibraryName = classify.LibraryName(e.Library)

	e.File = d.red.RedactPath(e.File)
	e.Exe = d.red.RedactPath(e.Exe)
	e.Library = d.red.RedactPath(e.Library)

	if !d.filters.Matches(e) {
		return
	}

	if d.hooks.OnRawEvent != nil {
		d.hooks.OnRawEvent(e)
	}
	if d.hooks.OnEvent != nil {
		d.hooks.OnEvent(output.FromEvent(e))
	}
}

// acceptKind applies the kind-specific acceptance stage: file_open records
// for a non-crypto extension, and lib_load records for a non-canonical
// library, are filtered out in user space because probes may over-report.
func acceptKind(e *pool.Event) bool {
	switch e.Kind {
	case record.KindFileOpen:
		return classify.IsCryptoFile(e.File)
	case record.KindLibLoad:
		return classify.IsCanonicalLibrary(e.Library)
	default:
		return true
	}
}

// parseRaw splits a ring-buffer record into its fixed header and trailing
// payload. The header layout is record.Header; anything remaining in raw
// is the kind-specific payload decode.Decode dispatches on.
func parseRaw(raw []byte) (record.Raw, error) {
	headerSize := binary.Size(record.Header{})
	if len(raw) < headerSize {
		return record.Raw{}, errShortRecord
	}

	var hdr record.Header
	if err := decodeHeader(raw[:headerSize], &hdr); err != nil {
		return record.Raw{}, err
	}
	return record.Raw{Header: hdr, Payload: raw[headerSize:]}, nil
}
