// Package pool implements the event pool: a fixed capacity arena of
// reusable Event records with an intrusive free list, so acquire/release
// never allocates the record itself. Callers hold an integer Handle, not
// a pointer, so a double-release or a handle from a different pool is
// caught by a bounds/ownership check instead of corrupting storage.
package pool

import (
	"fmt"
	"time"

	"github.com/cryptowatch/cryptowatch/internal/record"
)

// FileKind classifies a crypto-relevant file path.
type FileKind uint8

const (
	FileKindUnknown FileKind = iota
	FileKindCertificate
	FileKindPrivateKey
	FileKindKeystore
)

func (k FileKind) String() string {
	switch k {
	case FileKindCertificate:
		return "certificate"
	case FileKindPrivateKey:
		return "private_key"
	case FileKindKeystore:
		return "keystore"
	default:
		return "unknown"
	}
}

// Event is one pool-held record. Variable-length string fields are owned by
// the slot and freed (set to "") on Release. Callers must never retain a
// *Event past Release.
type Event struct {
	// identity
	Kind      record.Kind
	Timestamp string // ISO-8601 UTC, six-digit sub-second, set by decode
	Pid       uint32
	Uid       uint32
	Ppid      uint32 // only populated for KindProcessExec; used by the profile aggregator's descendant tracking, never emitted in JSON output

	// enrichment, best-effort
	Process string
	Exe     string
	Cmdline string

	// payload, by Kind
	File        string
	Library     string
	LibraryName string
	Function    string
	Flags       uint32
	Result      int32
	ExitCode    int32

	// classification
	FileKind FileKind

	inUse bool
	next  int // free-list link; -1 when tail
}

// reset clears an Event back to its zero value before handing it out:
// acquire always returns a zeroed record.
func (e *Event) reset() {
	*e = Event{next: e.next, inUse: e.inUse}
}

// Handle is an opaque reference to a pool slot. The zero Handle is never
// valid (slots are 1-indexed internally to make that true).
type Handle int

const invalidHandle Handle = 0

// Pool is a fixed-capacity arena of Event slots with an intrusive free list.
// Not safe for concurrent use: it is driven by a single-threaded
// cooperative pipeline with exactly one consumer, so no pool-internal
// locking is needed or added.
type Pool struct {
	slots    []Event
	freeHead int // index into slots of next free slot, -1 if none
	inUse    int
}

// New creates a Pool with the given fixed capacity. A capacity <= 0 falls
// back to the default of 1000.
func New(capacity int) *Pool {
	if capacity <= 0 {
		capacity = 1000
	}
	p := &Pool{
		slots:    make([]Event, capacity),
		freeHead: 0,
	}
	for i := range p.slots {
		if i == len(p.slots)-1 {
			p.slots[i].next = -1
		} else {
			p.slots[i].next = i + 1
		}
	}
	return p
}

// Capacity returns the fixed number of slots in the pool.
func (p *Pool) Capacity() int {
	return len(p.slots)
}

// InUseCount returns the number of slots currently acquired. Never exceeds
// Capacity().
func (p *Pool) InUseCount() int {
	return p.inUse
}

// Acquire returns a handle to a zeroed Event, or ok=false if the pool is
// exhausted. Exhaustion is non-fatal: the caller (the event driver) treats
// the current record as dropped and increments its own drop counter.
func (p *Pool) Acquire() (Handle, bool) {
	if p.freeHead == -1 {
		return invalidHandle, false
	}
	idx := p.freeHead
	p.freeHead = p.slots[idx].next
	p.slots[idx].inUse = true
	p.slots[idx].reset()
	p.inUse++
	return Handle(idx + 1), true
}

// Get returns the Event for h, or nil if h is not a currently-acquired
// handle from this pool (foreign handle, zero handle, or already
// released) — the defensive checks that guard against double-release and
// foreign-pointer misuse.
func (p *Pool) Get(h Handle) *Event {
	idx := int(h) - 1
	if idx < 0 || idx >= len(p.slots) {
		return nil
	}
	if !p.slots[idx].inUse {
		return nil
	}
	return &p.slots[idx]
}

// Release returns a slot to the free list. Releasing an invalid, foreign, or
// already-released handle is a programmer error: it is reported as an error
// the caller may choose to log, and the free list is left untouched.
func (p *Pool) Release(h Handle) error {
	idx := int(h) - 1
	if idx < 0 || idx >= len(p.slots) {
		return fmt.Errorf("pool: release of out-of-range handle %d (capacity %d)", h, len(p.slots))
	}
	if !p.slots[idx].inUse {
		return fmt.Errorf("pool: double release of handle %d", h)
	}
	p.slots[idx].inUse = false
	p.slots[idx].reset()
	p.slots[idx].next = p.freeHead
	p.freeHead = idx
	p.inUse--
	return nil
}

// TimestampLayout is the ISO-8601 UTC form with six-digit sub-second
// precision (YYYY-MM-DDTHH:MM:SS.ffffffZ) used throughout this module.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// FormatTimestamp formats t per TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
