// Package profile accumulates per-PID state over a profiling run and
// finalizes it into one profile document: an aggregation for one target
// PID that rolls a stream of events up into library/file/API-call
// counters, plus descendant-set tracking for the follow_children flag.
package profile

import (
	"time"

	"github.com/prometheus/procfs"

	"github.com/cryptowatch/cryptowatch/internal/enrich"
	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/cryptowatch/cryptowatch/internal/record"
)

// LibraryObservation is one entry in a Document's insertion-ordered
// library set.
type LibraryObservation struct {
	Name          string    `json:"name"`
	Path          string    `json:"path"`
	FirstLoadTime time.Time `json:"first_load_time"`
}

// FileObservation is the accumulated state for one redacted file path.
type FileObservation struct {
	Kind        string    `json:"kind"`
	AccessCount int       `json:"access_count"`
	FirstAccess time.Time `json:"first_access"`
	LastAccess  time.Time `json:"last_access"`
	Mode        uint32    `json:"mode"`
}

// Metadata describes the target process at profile construction time.
type Metadata struct {
	Version   string        `json:"version"`
	Generated time.Time     `json:"generated"`
	Duration  time.Duration `json:"duration"`
	TargetPID uint32        `json:"target_pid"`
	Name      string        `json:"name"`
	Exe       string        `json:"exe"`
	Cmdline   string        `json:"cmdline"`
	UID       uint32        `json:"uid"`
	GID       uint32        `json:"gid"`
	StartTime time.Time     `json:"start_time,omitempty"`
}

// Statistics rolls up totals across the run.
type Statistics struct {
	TotalEvents    int `json:"total_events"`
	TotalLibraries int `json:"total_libraries"`
	TotalFiles     int `json:"total_files"`
	TotalAPICalls  int `json:"total_api_calls"`
}

// Document is the finalized profile emitted via the output formatter.
type Document struct {
	Metadata      Metadata                    `json:"metadata"`
	Libraries     []LibraryObservation        `json:"libraries"`
	FilesAccessed map[string]*FileObservation `json:"files_accessed"`
	APICalls      map[string]int              `json:"api_calls"`
	Statistics    Statistics                  `json:"statistics"`
	Partial       bool                        `json:"partial"`
}

// TerminationReason records which of the three conditions ended the run.
type TerminationReason int

const (
	TerminationDurationElapsed TerminationReason = iota
	TerminationTargetGone
	TerminationShutdownRequested
)

// Aggregator accumulates state for one target PID (and, when
// followChildren is set, its tracked descendants) over a profiling run.
// Not safe for concurrent use, consistent with the single-threaded
// pipeline driving it.
type Aggregator struct {
	targetPID      uint32
	followChildren bool
	descendants    map[uint32]bool

	startedAt time.Time

	libraryOrder []string
	libraries    map[string]*LibraryObservation
	files        map[string]*FileObservation
	apiCalls     map[string]int
	totalEvents  int
}

// NewAggregator constructs an Aggregator targeting pid. When
// followChildren is true, process_exec records whose ppid is already a
// tracked descendant (or the target itself) add the child pid to the
// tracked set, and process_exit records remove it.
func NewAggregator(pid uint32, followChildren bool) *Aggregator {
	return &Aggregator{
		targetPID:      pid,
		followChildren: followChildren,
		descendants:    map[uint32]bool{pid: true},
		startedAt:      time.Now(),
		libraries:      make(map[string]*LibraryObservation),
		files:          make(map[string]*FileObservation),
		apiCalls:       make(map[string]int),
	}
}

// tracks reports whether pid is the target or a tracked descendant.
func (a *Aggregator) tracks(pid uint32) bool {
	if pid == a.targetPID {
		return true
	}
	return a.followChildren && a.descendants[pid]
}

// Observe folds one pool-held event into the running aggregate. e must not
// be retained past the call; Observe copies every string field it keeps.
func (a *Aggregator) Observe(e *pool.Event) {
	if a.followChildren {
		switch e.Kind {
		case record.KindProcessExec:
			if a.descendants[e.Ppid] {
				a.descendants[e.Pid] = true
			}
		case record.KindProcessExit:
			if e.Pid != a.targetPID {
				delete(a.descendants, e.Pid)
			}
		}
	}

	if !a.tracks(e.Pid) {
		return
	}
	a.totalEvents++

	switch e.Kind {
	case record.KindLibLoad:
		if _, seen := a.libraries[e.Library]; !seen {
			a.libraries[e.Library] = &LibraryObservation{
				Name:          e.LibraryName,
				Path:          e.Library,
				FirstLoadTime: parseTimestamp(e.Timestamp),
			}
			a.libraryOrder = append(a.libraryOrder, e.Library)
		}
	case record.KindFileOpen:
		obs, seen := a.files[e.File]
		ts := parseTimestamp(e.Timestamp)
		if !seen {
			obs = &FileObservation{
				Kind:        e.FileKind.String(),
				FirstAccess: ts,
				Mode:        e.Flags,
			}
			a.files[e.File] = obs
		}
		obs.AccessCount++
		obs.LastAccess = ts
	case record.KindAPICall:
		a.apiCalls[e.Function]++
	}
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(pool.TimestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Finalize builds the Document. reason records why the run ended; it does
// not change the document's schema, only the Partial flag and the
// caller's own logging.
func (a *Aggregator) Finalize(reason TerminationReason) Document {
	libs := make([]LibraryObservation, 0, len(a.libraryOrder))
	for _, path := range a.libraryOrder {
		libs = append(libs, *a.libraries[path])
	}

	return Document{
		Metadata:      a.buildMetadata(),
		Libraries:     libs,
		FilesAccessed: a.files,
		APICalls:      a.apiCalls,
		Statistics: Statistics{
			TotalEvents:    a.totalEvents,
			TotalLibraries: len(libs),
			TotalFiles:     len(a.files),
			TotalAPICalls:  len(a.apiCalls),
		},
		Partial: reason != TerminationDurationElapsed,
	}
}

// buildMetadata resolves the target's identity fields. Process name, exe,
// and cmdline come from the enrich package (best-effort, matching the rest
// of the pipeline); uid/gid/start_time come from prometheus/procfs, which
// parses /proc/<pid>/status and /proc/<pid>/stat for us rather than this
// package hand-rolling that parse.
func (a *Aggregator) buildMetadata() Metadata {
	md := Metadata{
		Version:   "1",
		Generated: time.Now(),
		Duration:  time.Since(a.startedAt),
		TargetPID: a.targetPID,
	}

	ev := &pool.Event{Pid: a.targetPID}
	enrich.Enrich(ev)
	md.Name, md.Exe, md.Cmdline = ev.Process, ev.Exe, ev.Cmdline

	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return md
	}
	proc, err := fs.Proc(int(a.targetPID))
	if err != nil {
		return md
	}
	if status, err := proc.NewStatus(); err == nil {
		if len(status.UIDs) > 0 {
			md.UID = parseUint32(status.UIDs[0])
		}
		if len(status.GIDs) > 0 {
			md.GID = parseUint32(status.GIDs[0])
		}
	}
	if stat, err := proc.Stat(); err == nil {
		bootTime, err := fs.Stat()
		if err == nil {
			md.StartTime = time.Unix(int64(bootTime.BootTime), 0).Add(
				time.Duration(stat.Starttime) * time.Second / time.Duration(clockTicksPerSecond),
			)
		}
	}
	return md
}

// clockTicksPerSecond is USER_HZ, the conversion factor for /proc/<pid>/stat's
// starttime field. 100 is the value on every Linux platform this agent
// targets (x86_64, arm64); it is not reliably discoverable from procfs
// itself.
const clockTicksPerSecond = 100

func parseUint32(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return v
		}
		v = v*10 + uint32(s[i]-'0')
	}
	return v
}
