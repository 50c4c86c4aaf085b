// Package enrich resolves process name, executable path, and command line
// from the process filesystem given a PID, via prometheus/procfs rather
// than a hand-rolled /proc/<pid> reader. There is no cache: every call
// re-reads procfs. Each field is best-effort: any failure (process
// already gone, unreadable) leaves the corresponding Event field untouched
// rather than propagating an error.
package enrich

import (
	"strings"

	"github.com/prometheus/procfs"

	"github.com/cryptowatch/cryptowatch/internal/pool"
)

// Enrich fills e.Process, e.Exe, and e.Cmdline from procfs. Each of the
// three reads is independent and best-effort: a failure on one does not
// prevent the others from succeeding, and none of them is ever surfaced
// as an error to the caller.
func Enrich(e *pool.Event) {
	proc, ok := lookup(e.Pid)
	if !ok {
		return
	}

	if comm, err := proc.Comm(); err == nil {
		e.Process = comm
	}
	if exe, err := proc.Executable(); err == nil {
		e.Exe = exe
	}
	if cmdline, err := proc.CmdLine(); err == nil {
		e.Cmdline = strings.Join(cmdline, " ")
	}
}

// ProcessExists reports whether pid currently has a procfs entry. Used by
// profile mode (core.RunProfile) to check the target before the run and to
// detect target termination during it.
func ProcessExists(pid uint32) bool {
	_, ok := lookup(pid)
	return ok
}

func lookup(pid uint32) (procfs.Proc, bool) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return procfs.Proc{}, false
	}
	proc, err := fs.Proc(int(pid))
	if err != nil {
		return procfs.Proc{}, false
	}
	return proc, true
}
