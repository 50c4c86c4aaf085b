// Package core implements the three command entry points exposed to the
// CLI layer — run_monitor, run_profile, run_snapshot — and owns the
// exit-category taxonomy: only this layer translates error tags into
// user-visible exit categories. It builds a run from flags and runs it,
// the same way for all three modes.
package core

import (
	"time"
)

// Options is the validated, CLI-agnostic input to a run: command,
// duration, output destination and format, the process/library/file
// filters, logging verbosity, and the redaction toggle. ConfigPath is
// this layer's own extension point for locating the host-level
// config.Settings file and is always caller-supplied (an empty string
// means "use defaults").
type Options struct {
	Command          string
	DurationSeconds  int
	OutputPath       string
	Format           string // "stream" | "array" | "pretty"
	PID              *uint32
	ProcessName      string
	LibrarySubstring string
	FileGlob         string
	Verbose          bool
	Quiet            bool
	DisableRedaction bool
	FollowChildren   bool
	ConfigPath       string

	// CryptoLibraries, when non-empty, overrides config.Settings.CryptoLibraries
	// for this run. MetricsListen, when non-empty, overrides
	// config.Settings.MetricsListen; only the monitor command exposes it.
	CryptoLibraries []string
	MetricsListen   string
}

// Duration returns the configured run length, or 0 for "run until
// shutdown requested" (duration <= 0 is treated as unbounded).
func (o Options) Duration() time.Duration {
	if o.DurationSeconds <= 0 {
		return 0
	}
	return time.Duration(o.DurationSeconds) * time.Second
}
