package core

import (
	"errors"
	"os"
	"syscall"

	"github.com/cryptowatch/cryptowatch/internal/bpfprobe"
	"github.com/cryptowatch/cryptowatch/internal/errtag"
)

// ExitCategory is one of the six machine-readable exit categories the CLI
// layer distinguishes.
type ExitCategory int

const (
	ExitSuccess ExitCategory = iota
	ExitGeneral
	ExitArgument
	ExitInsufficientPrivilege
	ExitKernelEnvironment
	ExitProbeLoadingFailure
)

func (c ExitCategory) String() string {
	switch c {
	case ExitSuccess:
		return "success"
	case ExitGeneral:
		return "general"
	case ExitArgument:
		return "argument"
	case ExitInsufficientPrivilege:
		return "insufficient_privilege"
	case ExitKernelEnvironment:
		return "kernel_environment"
	case ExitProbeLoadingFailure:
		return "probe_loading_failure"
	default:
		return "unknown"
	}
}

// classifyStartupError maps an error returned from probes.Load/Attach (via
// driver.Run) to one of the exit categories. This is the one place in the
// whole codebase that turns an errtag.Class into a user-visible exit
// category; every lower layer only tags and returns. bpfprobe tags its
// zero-usable-probes condition
// ClassProbePartial (escalated from "normal" to fatal, since every probe
// failed) and its BPF-object/ring-buffer failures ClassEnvironmental; an
// untagged error, or a direct bpfprobe.ErrNoUsableProbes without a wrapper
// (defensive — every current caller tags it), falls back to the same
// mapping by direct inspection.
func classifyStartupError(err error) ExitCategory {
	if err == nil {
		return ExitSuccess
	}
	if class, ok := errtag.ClassOf(err); ok {
		switch class {
		case errtag.ClassProbePartial:
			return ExitProbeLoadingFailure
		case errtag.ClassEnvironmental:
			return classifyEnvironmental(err)
		}
	}
	if errors.Is(err, bpfprobe.ErrNoUsableProbes) {
		return ExitProbeLoadingFailure
	}
	return classifyEnvironmental(err)
}

// classifyEnvironmental distinguishes the "insufficient privilege" exit
// category from the broader "kernel/environment" one, even though both
// arrive tagged with the same Environmental error class: a permission
// error is the common, actionable case (run as root / grant capabilities)
// worth its own exit code.
func classifyEnvironmental(err error) ExitCategory {
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES) {
		return ExitInsufficientPrivilege
	}
	return ExitKernelEnvironment
}
