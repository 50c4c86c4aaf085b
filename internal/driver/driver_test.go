package driver

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cryptowatch/cryptowatch/internal/bpfprobe"
	"github.com/cryptowatch/cryptowatch/internal/filter"
	"github.com/cryptowatch/cryptowatch/internal/lifecycle"
	"github.com/cryptowatch/cryptowatch/internal/output"
	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/cryptowatch/cryptowatch/internal/record"
	"github.com/cryptowatch/cryptowatch/internal/redact"
)

func rawFileOpen(t *testing.T, pid uint32, comm, filename string, flags uint32, result int32) []byte {
	t.Helper()
	var commArr [record.CommLen]byte
	copy(commArr[:], comm)

	hdr := record.Header{
		TimestampNs: 0,
		Pid:         pid,
		Uid:         1000,
		Comm:        commArr,
		Kind:        uint32(record.KindFileOpen),
	}
	var payload record.FileOpenPayload
	copy(payload.Filename[:], filename)
	payload.Flags = flags
	payload.Result = result

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, hdr))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, payload))
	return buf.Bytes()
}

func newTestDriver(t *testing.T, filters filter.Set, onEvent func(output.EventView)) *Driver {
	t.Helper()
	return New(
		bpfprobe.NewManager(),
		pool.New(4),
		filters,
		redact.New(false),
		time.Unix(0, 0),
		lifecycle.NewShutdownFlag(),
		Hooks{OnEvent: onEvent},
	)
}

func TestHandleRawAcceptsCryptoFileOpen(t *testing.T) {
	var got []output.EventView
	d := newTestDriver(t, filter.NewSet(), func(e output.EventView) { got = append(got, e) })

	d.handleRaw(rawFileOpen(t, 42, "curl", "/etc/ssl/cert.pem", 1, 0))

	require.Len(t, got, 1)
	require.Equal(t, "/etc/ssl/cert.pem", got[0].File)
	require.Equal(t, "certificate", got[0].FileKind)
}

func TestHandleRawRejectsNonCryptoFileOpen(t *testing.T) {
	var got []output.EventView
	d := newTestDriver(t, filter.NewSet(), func(e output.EventView) { got = append(got, e) })

	d.handleRaw(rawFileOpen(t, 42, "cat", "/etc/hosts", 1, 0))

	require.Empty(t, got)
}

func TestHandleRawAppliesRedactionBeforeFilterAndEmit(t *testing.T) {
	var got []output.EventView
	d := newTestDriver(t, filter.NewSet(), func(e output.EventView) { got = append(got, e) })

	d.handleRaw(rawFileOpen(t, 42, "curl", "/root/.ssh/id.pem", 1, 0))

	require.Len(t, got, 1)
	require.Equal(t, "/home/ROOT/.ssh/id.pem", got[0].File)
}

func TestHandleRawFilterSetExcludesNonMatchingPID(t *testing.T) {
	var got []output.EventView
	pid := uint32(9999)
	d := newTestDriver(t, filter.NewSet(filter.PID(pid)), func(e output.EventView) { got = append(got, e) })

	d.handleRaw(rawFileOpen(t, 42, "curl", "/etc/ssl/cert.pem", 1, 0))

	require.Empty(t, got)
}

func TestHandleRawReleasesPoolSlotAfterEmit(t *testing.T) {
	d := newTestDriver(t, filter.NewSet(), func(output.EventView) {})
	d.handleRaw(rawFileOpen(t, 42, "curl", "/etc/ssl/cert.pem", 1, 0))
	require.Equal(t, 0, d.pool.InUseCount())
}

func TestHandleRawShortRecordIsDroppedNotPanicked(t *testing.T) {
	d := newTestDriver(t, filter.NewSet(), func(output.EventView) {})
	require.NotPanics(t, func() { d.handleRaw([]byte{1, 2, 3}) })
	require.Equal(t, uint64(1), d.probes.Stats().EventsDropped)
}

func TestStateStringCovers(t *testing.T) {
	require.Equal(t, "init", StateInit.String())
	require.Equal(t, "running", StateRunning.String())
	require.Equal(t, "draining", StateDraining.String())
	require.Equal(t, "stopped", StateStopped.String())
}
