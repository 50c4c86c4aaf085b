// Package output renders events as JSON (see json.go for the encoding
// rules). A Formatter holds an io.Writer sink and a mode switch and writes
// one rendering per record, with array-mode bracket/comma bookkeeping
// layered on top for the array output shape.
package output

import (
	"fmt"
	"io"
)

// Format selects one of the three output shapes.
type Format int

const (
	FormatStream Format = iota
	FormatArray
	FormatPretty
)

// flusher is implemented by sinks that buffer (e.g. *bufio.Writer); the
// formatter flushes after every event so streaming consumers see data
// promptly.
type flusher interface {
	Flush() error
}

// closer is implemented by sinks the formatter owns (an opened file, as
// opposed to a borrowed stdout) and must close on Finalize.
type closer interface {
	Close() error
}

// Formatter renders events to sink in one of the three shapes. Not safe
// for concurrent use: it is driven by a single-threaded pipeline with
// exactly one writer.
type Formatter struct {
	sink       io.Writer
	ownsSink   bool
	format     Format
	wroteFirst bool
	finalized  bool
}

// New constructs a Formatter. ownsSink controls whether Finalize closes
// sink: true when the user supplied a filename, false for the borrowed
// stdout sink.
func New(sink io.Writer, ownsSink bool, format Format) *Formatter {
	f := &Formatter{sink: sink, ownsSink: ownsSink, format: format}
	if format == FormatArray {
		fmt.Fprint(sink, "[\n")
	}
	return f
}

// Emit writes one event body in the formatter's configured shape, then
// flushes the sink.
func (f *Formatter) Emit(e EventView) error {
	fields := eventFields(e)

	switch f.format {
	case FormatStream:
		if _, err := fmt.Fprintln(f.sink, renderCompact(fields)); err != nil {
			return err
		}
	case FormatArray:
		if f.wroteFirst {
			if _, err := fmt.Fprint(f.sink, ",\n"); err != nil {
				return err
			}
		}
		f.wroteFirst = true
		if _, err := fmt.Fprint(f.sink, renderIndented(fields, "")); err != nil {
			return err
		}
	case FormatPretty:
		if _, err := fmt.Fprintln(f.sink, renderIndented(fields, "")); err != nil {
			return err
		}
	}

	if fl, ok := f.sink.(flusher); ok {
		return fl.Flush()
	}
	return nil
}

// Finalize closes out the document (the array mode's trailing `]`) and
// releases an owned sink. Idempotent: repeated calls (e.g. from both a
// normal shutdown path and a deferred cleanup) are safe.
func (f *Formatter) Finalize() error {
	if f.finalized {
		return nil
	}
	f.finalized = true

	if f.format == FormatArray {
		if _, err := fmt.Fprint(f.sink, "\n]\n"); err != nil {
			return err
		}
	}
	if fl, ok := f.sink.(flusher); ok {
		_ = fl.Flush()
	}
	if f.ownsSink {
		if c, ok := f.sink.(closer); ok {
			return c.Close()
		}
	}
	return nil
}
