package output

import (
	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/cryptowatch/cryptowatch/internal/record"
)

// eventTypeName maps a record.Kind to its wire name for the event_type
// field.
func eventTypeName(k record.Kind) string {
	switch k {
	case record.KindFileOpen:
		return "file_open"
	case record.KindLibLoad:
		return "lib_load"
	case record.KindProcessExec:
		return "process_exec"
	case record.KindProcessExit:
		return "process_exit"
	case record.KindAPICall:
		return "api_call"
	default:
		return "unknown"
	}
}

// eventFields builds the ordered field list for one event: the common
// group first, then kind-specific fields appended.
func eventFields(e EventView) []field {
	fields := []field{
		strField("event_type", eventTypeName(e.Kind)),
		strField("timestamp", e.Timestamp),
		uintField("pid", e.Pid),
		uintField("uid", e.Uid),
		optStrField("process", e.Process, e.Process != ""),
		optStrField("exe", e.Exe, e.Exe != ""),
	}

	switch e.Kind {
	case record.KindFileOpen:
		fields = append(fields,
			strField("file", e.File),
			strField("file_type", e.FileKind),
			uintField("flags", e.Flags),
			intField("result", e.Result),
		)
	case record.KindLibLoad:
		fields = append(fields,
			strField("library", e.Library),
			strField("library_name", e.LibraryName),
		)
	case record.KindProcessExec:
		fields = append(fields, optStrField("cmdline", e.Cmdline, e.Cmdline != ""))
	case record.KindProcessExit:
		fields = append(fields, intField("exit_code", e.ExitCode))
	case record.KindAPICall:
		fields = append(fields,
			strField("function_name", e.Function),
			strField("library", e.Library),
		)
	}
	return fields
}

// EventView is the read-only projection of a pool.Event the formatter
// needs. Kept as its own type (rather than importing pool.Event directly)
// so this package does not depend on pool's mutable acquire/release API —
// the formatter only ever reads.
type EventView struct {
	Kind        record.Kind
	Timestamp   string
	Pid         uint32
	Uid         uint32
	Process     string
	Exe         string
	Cmdline     string
	File        string
	Library     string
	LibraryName string
	Function    string
	Flags       uint32
	Result      int32
	ExitCode    int32
	FileKind    string
}

// FromEvent projects a pool.Event into the formatter's read-only view.
func FromEvent(e *pool.Event) EventView {
	return EventView{
		Kind:        e.Kind,
		Timestamp:   e.Timestamp,
		Pid:         e.Pid,
		Uid:         e.Uid,
		Process:     e.Process,
		Exe:         e.Exe,
		Cmdline:     e.Cmdline,
		File:        e.File,
		Library:     e.Library,
		LibraryName: e.LibraryName,
		Function:    e.Function,
		Flags:       e.Flags,
		Result:      e.Result,
		ExitCode:    e.ExitCode,
		FileKind:    e.FileKind.String(),
	}
}
