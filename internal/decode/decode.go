// Package decode turns a raw ring-buffer record into a pool-held Event,
// filling type-specific fields via a fixed-layout-struct binary.Read
// rather than a hand-rolled byte walker.
package decode

import (
	"bytes"
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"

	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/cryptowatch/cryptowatch/internal/record"
)

// byteOrder is host byte order. The producer (the BPF programs) always
// emits little-endian on the Linux/x86_64 and Linux/arm64 targets this
// agent supports; this is fixed as part of the wire ABI.
var byteOrder = binary.LittleEndian

// clockToWall converts a monotonic kernel boot-clock timestamp into a wall
// clock time. In production this would read the kernel's boot time once at
// startup (clock_gettime(CLOCK_BOOTTIME)) and add the record's offset; decode
// accepts that reference point as a parameter so the conversion stays a
// pure, testable function.
func clockToWall(bootTime time.Time, timestampNs uint64) time.Time {
	return bootTime.Add(time.Duration(timestampNs))
}

// Decode acquires an Event from p and fills it from raw. bootTime is the
// wall-clock instant corresponding to a monotonic timestamp of zero (used to
// render raw.TimestampNs as an ISO-8601 string). Decode returns ok=false
// when the pool is exhausted (the driver must treat the record as dropped)
// or when raw's Kind is unrecognized (no event is produced; the caller logs
// a warning for the unknown kind).
func Decode(p *pool.Pool, raw record.Raw, bootTime time.Time) (pool.Handle, bool, error) {
	kind := record.Kind(raw.Kind)
	if !kind.Valid() {
		return 0, false, nil
	}

	h, ok := p.Acquire()
	if !ok {
		return 0, false, nil
	}
	e := p.Get(h)

	e.Kind = kind
	e.Pid = raw.Pid
	e.Uid = raw.Uid
	e.Process = unix.ByteSliceToString(raw.Comm[:])
	e.Timestamp = pool.FormatTimestamp(clockToWall(bootTime, raw.TimestampNs))

	if err := decodePayload(e, kind, raw.Payload); err != nil {
		_ = p.Release(h)
		return 0, false, err
	}
	return h, true, nil
}

func decodePayload(e *pool.Event, kind record.Kind, payload []byte) error {
	r := bytes.NewReader(payload)
	switch kind {
	case record.KindFileOpen:
		var pl record.FileOpenPayload
		if err := binary.Read(r, byteOrder, &pl); err != nil {
			return err
		}
		e.File = unix.ByteSliceToString(pl.Filename[:])
		e.Flags = pl.Flags
		e.Result = pl.Result
	case record.KindLibLoad:
		var pl record.LibLoadPayload
		if err := binary.Read(r, byteOrder, &pl); err != nil {
			return err
		}
		e.Library = unix.ByteSliceToString(pl.Path[:])
	case record.KindProcessExec:
		var pl record.ProcessExecPayload
		if err := binary.Read(r, byteOrder, &pl); err != nil {
			return err
		}
		e.Cmdline = unix.ByteSliceToString(pl.Cmdline[:])
		e.Ppid = pl.Ppid
	case record.KindProcessExit:
		var pl record.ProcessExitPayload
		if err := binary.Read(r, byteOrder, &pl); err != nil {
			return err
		}
		e.ExitCode = pl.ExitCode
	case record.KindAPICall:
		var pl record.APICallPayload
		if err := binary.Read(r, byteOrder, &pl); err != nil {
			return err
		}
		e.Function = unix.ByteSliceToString(pl.Function[:])
		e.Library = unix.ByteSliceToString(pl.Library[:])
	}
	return nil
}
