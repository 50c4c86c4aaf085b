// Package errtag provides a small, concrete set of error tags so the CLI
// layer can translate a failure into one of the exit categories, without
// every lower layer needing to know about exit codes. It adds a minimal
// tag type on top of the standard library's error-wrapping idiom rather
// than reaching for a stack-trace-capture library meant for interactive
// crash reporting, a concern this headless agent does not have.
package errtag

import "errors"

// Class is one of the five error categories this package defines.
type Class int

const (
	// ClassEnvironmental covers kernel-too-old, insufficient-privilege, and
	// unsupported-probe-type failures. Fatal for the current command.
	ClassEnvironmental Class = iota
	// ClassProbePartial covers some-but-not-all probes failing to load or
	// attach. Non-fatal unless zero probes end up usable.
	ClassProbePartial
	// ClassTransient covers a ring-buffer poll interruption, a procfs entry
	// vanishing mid-read, or a sink momentarily unavailable. Recovered
	// locally; never surfaced up as a failure.
	ClassTransient
	// ClassResourceExhaustion covers pool exhaustion, sink write failure, and
	// formatter finalization errors. Recovered locally with a counter bump
	// or a logged warning; never fatal.
	ClassResourceExhaustion
	// ClassProgrammerError covers double-release, foreign-pointer release,
	// and out-of-range record kinds. Logged and swallowed in release
	// builds.
	ClassProgrammerError
)

func (c Class) String() string {
	switch c {
	case ClassEnvironmental:
		return "environmental"
	case ClassProbePartial:
		return "probe_partial"
	case ClassTransient:
		return "transient"
	case ClassResourceExhaustion:
		return "resource_exhaustion"
	case ClassProgrammerError:
		return "programmer_error"
	default:
		return "unknown"
	}
}

// Tagged is an error annotated with a Class. Only the CLI layer inspects
// the tag; every lower layer either recovers internally or returns a
// Tagged error for that layer to translate into an exit category.
type Tagged struct {
	class Class
	err   error
}

func (t *Tagged) Error() string { return t.err.Error() }

func (t *Tagged) Unwrap() error { return t.err }

// Class returns the tag's error class.
func (t *Tagged) Class() Class { return t.class }

// New wraps err with class. Returns nil if err is nil.
func New(class Class, err error) error {
	if err == nil {
		return nil
	}
	return &Tagged{class: class, err: err}
}

// ClassOf returns the Class of err if it (or something it wraps) is a
// *Tagged, and ok=false otherwise — callers should then treat the error as
// environmental, the most conservative (fatal) category.
func ClassOf(err error) (Class, bool) {
	var t *Tagged
	if errors.As(err, &t) {
		return t.class, true
	}
	return ClassEnvironmental, false
}
