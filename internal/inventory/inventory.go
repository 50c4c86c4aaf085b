// Package inventory builds a point-in-time snapshot of crypto artifacts
// per process, built purely from the process filesystem with no kernel
// probes involved, using prometheus/procfs's AllProcs/ProcMaps/file
// descriptor helpers instead of a hand-rolled /proc walker.
package inventory

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/procfs"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/cryptowatch/cryptowatch/internal/classify"
	"github.com/cryptowatch/cryptowatch/internal/lifecycle"
	"github.com/cryptowatch/cryptowatch/internal/redact"
)

// budget is the end-to-end wall-clock limit on one snapshot run. Exceeding
// it stops enumeration early rather than blocking the caller indefinitely;
// the resulting document is marked Partial.
const budget = 5 * time.Second

// ProcessEntry is one process retained in a Snapshot: it carries at least
// one crypto artifact.
type ProcessEntry struct {
	PID             int      `json:"pid"`
	Name            string   `json:"name"`
	Exe             string   `json:"exe"`
	RunningAs       uint32   `json:"running_as"`
	Libraries       []string `json:"libraries"`
	OpenCryptoFiles []string `json:"open_crypto_files"`
}

// Metadata describes the snapshot itself.
type Metadata struct {
	Version   string    `json:"version"`
	Generated time.Time `json:"generated"`
	Hostname  string    `json:"hostname"`
	Kernel    string    `json:"kernel"`
}

// Summary totals the processes actually emitted. These totals must always
// equal the sums of the per-process sequences in Processes, even when the
// run stopped early on the wall-clock budget.
type Summary struct {
	TotalProcesses int `json:"total_processes"`
	TotalLibraries int `json:"total_libraries"`
	TotalFiles     int `json:"total_files"`
}

// Snapshot is the finalized inventory document emitted via the output
// formatter.
type Snapshot struct {
	Metadata  Metadata       `json:"metadata"`
	Processes []ProcessEntry `json:"processes"`
	Summary   Summary        `json:"summary"`
	Partial   bool           `json:"partial"`
}

// Scanner builds one Snapshot from the live process filesystem.
type Scanner struct {
	fs       procfs.FS
	red      redact.Redactor
	shutdown *lifecycle.ShutdownFlag
}

// NewScanner constructs a Scanner. shutdown, when non-nil, is polled
// between each per-PID scan; a nil shutdown flag means "never interrupt",
// useful for tests.
func NewScanner(red redact.Redactor, shutdown *lifecycle.ShutdownFlag) (*Scanner, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, err
	}
	return &Scanner{fs: fs, red: red, shutdown: shutdown}, nil
}

// Scan enumerates every PID in ascending order, building one ProcessEntry
// per process that has at least one crypto artifact. It stops early (and
// returns Partial=true via the caller's logging) if the budget or a
// shutdown request is observed mid-scan.
func (s *Scanner) Scan() Snapshot {
	started := time.Now()
	deadline := started.Add(budget)

	procs, err := s.fs.AllProcs()
	if err != nil {
		log.WithError(err).Warn("inventory: failed to enumerate processes")
		return s.finalize(nil, true)
	}
	sort.Sort(procs)

	var entries []ProcessEntry
	partial := false

	for _, proc := range procs {
		if s.shutdown != nil && s.shutdown.IsRequested() {
			partial = true
			break
		}
		if time.Now().After(deadline) {
			log.Warn("inventory: wall-clock budget exceeded, stopping enumeration early")
			partial = true
			break
		}

		entry, ok := s.scanOne(proc)
		if ok {
			entries = append(entries, entry)
		}
	}

	return s.finalize(entries, partial)
}

func (s *Scanner) scanOne(proc procfs.Proc) (ProcessEntry, bool) {
	libs := s.scanLibraries(proc)
	files := s.scanCryptoFiles(proc)
	if len(libs) == 0 && len(files) == 0 {
		return ProcessEntry{}, false
	}

	entry := ProcessEntry{
		PID:             proc.PID,
		Libraries:       libs,
		OpenCryptoFiles: files,
	}
	if comm, err := proc.Comm(); err == nil {
		entry.Name = comm
	}
	if exe, err := proc.Executable(); err == nil {
		entry.Exe = s.red.RedactPath(exe)
	}
	if status, err := proc.NewStatus(); err == nil && len(status.UIDs) > 0 {
		entry.RunningAs = parseUint32(status.UIDs[0])
	}
	return entry, true
}

// scanLibraries collects the insertion-ordered, de-duplicated set of
// memory-mapped shared objects whose filename matches a canonical crypto
// library substring.
func (s *Scanner) scanLibraries(proc procfs.Proc) []string {
	maps, err := proc.ProcMaps()
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var libs []string
	for _, m := range maps {
		path := m.Pathname
		if path == "" || seen[path] {
			continue
		}
		if !classify.IsCanonicalLibrary(path) {
			continue
		}
		seen[path] = true
		libs = append(libs, s.red.RedactPath(path))
	}
	return libs
}

// scanCryptoFiles collects the insertion-ordered, de-duplicated set of
// file-descriptor targets whose extension matches a crypto-file extension.
func (s *Scanner) scanCryptoFiles(proc procfs.Proc) []string {
	targets, err := proc.FileDescriptorTargets()
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var files []string
	for _, path := range targets {
		if path == "" || seen[path] || strings.HasPrefix(path, "socket:") || strings.HasPrefix(path, "pipe:") {
			continue
		}
		if classify.FileKind(path).String() == "unknown" {
			continue
		}
		seen[path] = true
		files = append(files, s.red.RedactPath(path))
	}
	return files
}

func (s *Scanner) finalize(entries []ProcessEntry, partial bool) Snapshot {
	totalLibs, totalFiles := 0, 0
	for _, e := range entries {
		totalLibs += len(e.Libraries)
		totalFiles += len(e.OpenCryptoFiles)
	}

	hostname, _ := os.Hostname()
	kernel := kernelRelease()

	return Snapshot{
		Metadata: Metadata{
			Version:   "1",
			Generated: time.Now(),
			Hostname:  hostname,
			Kernel:    kernel,
		},
		Processes: entries,
		Summary: Summary{
			TotalProcesses: len(entries),
			TotalLibraries: totalLibs,
			TotalFiles:     totalFiles,
		},
		Partial: partial,
	}
}

// kernelRelease resolves the running kernel release string via uname(2); a
// failure here is best-effort, matching every other optional metadata field
// in this agent.
func kernelRelease() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return ""
	}
	return charsToString(uts.Release[:])
}

func charsToString(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

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
