// Package filter implements a small closed sum type over PID/process-name/
// library/file-glob predicates, short-circuit AND-evaluated against an
// event: a sequence of predicates evaluated by a single dispatch, ordering
// irrelevant.
package filter

import (
	"path"
	"strings"

	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/cryptowatch/cryptowatch/internal/record"
)

// Predicate is one filter clause. Matches must be deterministic and must
// not allocate on the hot path.
type Predicate interface {
	Matches(e *pool.Event) bool
}

// PID matches an exact process id.
type PID uint32

// Matches reports e.Pid == uint32(p).
func (p PID) Matches(e *pool.Event) bool { return e.Pid == uint32(p) }

// ProcessName is a case-insensitive substring match against the event's
// enriched process name.
type ProcessName string

// Matches reports whether e.Process contains p, case-insensitively.
func (p ProcessName) Matches(e *pool.Event) bool {
	return e.Process != "" && containsFold(e.Process, string(p))
}

// Library is a case-insensitive substring match against either the
// library path or the extracted library name. Only lib_load and api_call
// events carry a library field; other kinds never match.
type Library string

// Matches reports whether e.Library or e.LibraryName contains l,
// case-insensitively. Events of a kind with no library field do not match.
func (l Library) Matches(e *pool.Event) bool {
	switch e.Kind {
	case record.KindLibLoad, record.KindAPICall:
	default:
		return false
	}
	needle := string(l)
	return containsFold(e.Library, needle) || containsFold(e.LibraryName, needle)
}

// FileGlob is a shell-glob match against the event's file path. Glob
// matching is path-aware: a wildcard never matches '/'. Only file_open
// events carry a file field; other kinds never match.
type FileGlob string

// Matches compiles and applies the glob pattern against e.File. A malformed
// pattern never matches: there is no error channel at evaluation time, and
// the pattern is not validated when the Set is built.
func (g FileGlob) Matches(e *pool.Event) bool {
	if e.Kind != record.KindFileOpen || e.File == "" {
		return false
	}
	ok, err := path.Match(string(g), e.File)
	return err == nil && ok
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Set is an unordered collection of predicates, short-circuit
// AND-evaluated. The empty Set matches every event.
type Set struct {
	predicates []Predicate
}

// NewSet builds a Set from the given predicates. A nil or empty slice
// yields a Set that matches unconditionally.
func NewSet(predicates ...Predicate) Set {
	return Set{predicates: predicates}
}

// Matches evaluates all predicates in p against e with short-circuit AND.
// matches({F1,F2}, E) == matches({F1},E) && matches({F2},E), and
// matches(empty, E) == true.
func (s Set) Matches(e *pool.Event) bool {
	for _, pr := range s.predicates {
		if !pr.Matches(e) {
			return false
		}
	}
	return true
}

// Len reports the number of predicates in the set.
func (s Set) Len() int { return len(s.predicates) }

// Options is the subset of core.Options relevant to constructing a filter
// Set — kept as plain fields here (rather than importing the core package,
// which imports this one and would create an import cycle).
type Options struct {
	PID           *uint32
	ProcessName   string
	LibrarySubstr string
	FileGlob      string
}

// BuildSet deterministically maps CLI options to predicates. Each
// populated field contributes exactly one predicate.
func BuildSet(o Options) Set {
	var preds []Predicate
	if o.PID != nil {
		preds = append(preds, PID(*o.PID))
	}
	if o.ProcessName != "" {
		preds = append(preds, ProcessName(o.ProcessName))
	}
	if o.LibrarySubstr != "" {
		preds = append(preds, Library(o.LibrarySubstr))
	}
	if o.FileGlob != "" {
		preds = append(preds, FileGlob(o.FileGlob))
	}
	return NewSet(preds...)
}
