// Package bpfprobe loads, attaches, polls, and tears down the kernel
// probes that feed the ring buffer, via github.com/aquasecurity/libbpfgo.
// Each of the five programs attaches independently: one program failing
// to load or attach does not prevent the others from running.
package bpfprobe

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/aquasecurity/libbpfgo"
	log "github.com/sirupsen/logrus"

	"github.com/cryptowatch/cryptowatch/internal/errtag"
)

// bpfObject is the compiled BPF object containing the five programs named
// below. A real build compiles this from a .bpf.c source via the BPF CO-RE
// toolchain; that compilation step is out of scope here, so the embed
// target is a placeholder the build process must supply.
//
//go:embed bpfobj/cryptowatch.bpf.o
var bpfObject []byte

const (
	moduleName       = "cryptowatch_bpf"
	ringBufMapName   = "cryptowatch_events"
	ringBufChanDepth = 10000
	pollTimeout      = 10 * time.Millisecond
	maxBatchRecords  = 100
	cleanupBudget    = 5 * time.Second
)

// ProgramName identifies one of the five kernel probes.
type ProgramName string

const (
	ProgramFileOpen    ProgramName = "file_open"
	ProgramLibLoad     ProgramName = "lib_load"
	ProgramProcessExec ProgramName = "process_exec"
	ProgramProcessExit ProgramName = "process_exit"
	ProgramAPICall     ProgramName = "api_call"
)

// hookCandidate is one entry point a program may attach to, in priority
// order. Hook availability varies by kernel version: a tracepoint is
// preferred when the kernel exposes one,
// falling back to a kprobe on an internal helper otherwise. The exact
// symbol names are an implementation concern, not part of the contract; a
// production build should generate this table from the kernel's own
// tracefs/kallsyms at startup, which the prioritized-list shape here
// supports without a code change.
type hookCandidate struct {
	kind   string // "tracepoint" or "kprobe"
	target string
}

var programHooks = map[ProgramName][]hookCandidate{
	ProgramFileOpen: {
		{"tracepoint", "syscalls/sys_enter_openat"},
		{"kprobe", "do_sys_openat2"},
	},
	ProgramLibLoad: {
		{"tracepoint", "syscalls/sys_enter_openat"},
		{"kprobe", "do_dentry_open"},
	},
	ProgramProcessExec: {
		{"tracepoint", "sched/sched_process_exec"},
	},
	ProgramProcessExit: {
		{"tracepoint", "sched/sched_process_exit"},
	},
	ProgramAPICall: {
		{"kprobe", "SSL_write"},
		{"kprobe", "SSL_read"},
	},
}

// ProbeStatus is one program's load/attach outcome.
type ProbeStatus struct {
	Name      ProgramName
	Loaded    bool
	Attached  bool
	HookUsed  string
	LastError error
}

// Stats exposes the monotonic event counters.
type Stats struct {
	EventsProcessed uint64
	EventsDropped   uint64
}

// ErrNoUsableProbes is returned by Load when every program failed to load.
var ErrNoUsableProbes = errors.New("bpfprobe: no usable probes")

// Manager owns the loaded BPF module, its ring buffer, and per-program
// status. Not safe for concurrent use: it is driven by a single-threaded
// pipeline with exactly one consumer.
type Manager struct {
	module  *libbpfgo.Module
	ringBuf *libbpfgo.RingBuffer
	channel chan []byte
	status  map[ProgramName]*ProbeStatus
	stats   Stats
}

// NewManager constructs an unloaded Manager.
func NewManager() *Manager {
	return &Manager{status: make(map[ProgramName]*ProbeStatus)}
}

// Load opens the embedded BPF object and loads each of the five programs.
// A program that fails to load is recorded in Status and logged as a
// warning; Load only returns an error when every program failed.
func (m *Manager) Load() error {
	module, err := libbpfgo.NewModuleFromBuffer(bpfObject, moduleName)
	if err != nil {
		return errtag.New(errtag.ClassEnvironmental, fmt.Errorf("bpfprobe: opening BPF object: %w", err))
	}
	m.module = module

	if err := module.BPFLoadObject(); err != nil {
		module.Close()
		m.module = nil
		return errtag.New(errtag.ClassEnvironmental, fmt.Errorf("bpfprobe: loading BPF object: %w", err))
	}

	usable := 0
	for name := range programHooks {
		st := &ProbeStatus{Name: name}
		m.status[name] = st

		prog, err := module.GetProgram(string(name))
		if err != nil {
			st.LastError = err
			log.WithError(err).Warnf("bpfprobe: program %s unavailable", name)
			continue
		}
		_ = prog
		st.Loaded = true
		usable++
	}

	if usable == 0 {
		module.Close()
		m.module = nil
		return errtag.New(errtag.ClassProbePartial, ErrNoUsableProbes)
	}
	return nil
}

// Attach attaches every loaded program through its prioritized hook-
// candidate list, stopping at the first candidate that attaches
// successfully. Partial attach is normal; Attach only returns an error
// when zero programs end up attached.
func (m *Manager) Attach() error {
	attached := 0
	for name, st := range m.status {
		if !st.Loaded {
			continue
		}
		prog, err := m.module.GetProgram(string(name))
		if err != nil {
			st.LastError = err
			continue
		}

		var lastErr error
		for _, cand := range programHooks[name] {
			link, err := prog.AttachGeneric()
			if err != nil {
				lastErr = err
				continue
			}
			if link.FileDescriptor() == 0 {
				lastErr = fmt.Errorf("hook %s/%s did not attach", cand.kind, cand.target)
				continue
			}
			st.Attached = true
			st.HookUsed = cand.kind + "/" + cand.target
			lastErr = nil
			break
		}
		if !st.Attached {
			st.LastError = lastErr
			log.WithError(lastErr).Warnf("bpfprobe: program %s failed to attach any hook candidate", name)
			continue
		}
		attached++
	}

	if attached == 0 {
		return errtag.New(errtag.ClassProbePartial, ErrNoUsableProbes)
	}

	channel := make(chan []byte, ringBufChanDepth)
	ringBuf, err := m.module.InitRingBuf(ringBufMapName, channel)
	if err != nil {
		return errtag.New(errtag.ClassEnvironmental, fmt.Errorf("bpfprobe: initializing ring buffer: %w", err))
	}
	m.channel = channel
	m.ringBuf = ringBuf
	m.ringBuf.Start()
	return nil
}

// Status returns a snapshot of every program's load/attach outcome.
func (m *Manager) Status() []ProbeStatus {
	out := make([]ProbeStatus, 0, len(m.status))
	for _, st := range m.status {
		out = append(out, *st)
	}
	return out
}

// Stats returns the current counters.
func (m *Manager) Stats() Stats {
	return m.stats
}

// PollResult is the outcome of one Poll call.
type PollResult struct {
	Consumed    int
	Interrupted bool
}

// Poll waits up to 10 ms for ring-buffer activity, then drains up to 100
// records, invoking callback for each. shutdownRequested is checked before
// waiting so a pending shutdown interrupts promptly rather than waiting out
// the full timeout.
func (m *Manager) Poll(shutdownRequested func() bool, callback func(raw []byte)) PollResult {
	if shutdownRequested() {
		return PollResult{Interrupted: true}
	}

	timer := time.NewTimer(pollTimeout)
	defer timer.Stop()

	consumed := 0
	for consumed < maxBatchRecords {
		select {
		case data := <-m.channel:
			callback(data)
			m.stats.EventsProcessed++
			consumed++
		case <-timer.C:
			return PollResult{Consumed: consumed}
		}
	}
	return PollResult{Consumed: consumed}
}

// RecordDrop increments the drop counter; called by the driver when the
// event pool is exhausted or decoding fails. It is the authoritative
// lossy-capture account.
func (m *Manager) RecordDrop() {
	m.stats.EventsDropped++
}

// Cleanup detaches and closes every program, bounded to 5 s total. It
// never blocks indefinitely: a watchdog forces return once the budget is
// exhausted, leaving module.Close() as a best-effort background call.
func (m *Manager) Cleanup() {
	if m.ringBuf != nil {
		m.ringBuf.Stop()
		m.ringBuf.Close()
	}

	done := make(chan struct{})
	go func() {
		if m.module != nil {
			m.module.Close()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(cleanupBudget):
		log.Warn("bpfprobe: cleanup watchdog expired before module close completed")
	}
}
