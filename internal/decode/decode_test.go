package decode

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/cryptowatch/cryptowatch/internal/record"
	"github.com/stretchr/testify/require"
)

func encodePayload(t *testing.T, v interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	return buf.Bytes()
}

func putString(dst []byte, s string) {
	copy(dst, s)
}

func TestDecodeFileOpen(t *testing.T) {
	p := pool.New(4)
	var payload record.FileOpenPayload
	putString(payload.Filename[:], "/etc/ssl/cert.pem")
	payload.Flags = 0x1
	payload.Result = 3

	var comm [record.CommLen]byte
	putString(comm[:], "curl")

	raw := record.Raw{
		Header: record.Header{
			TimestampNs: uint64(5 * time.Second),
			Pid:         42,
			Uid:         1000,
			Comm:        comm,
			Kind:        uint32(record.KindFileOpen),
		},
		Payload: encodePayload(t, payload),
	}

	boot := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h, ok, err := Decode(p, raw, boot)
	require.NoError(t, err)
	require.True(t, ok)

	e := p.Get(h)
	require.Equal(t, record.KindFileOpen, e.Kind)
	require.Equal(t, uint32(42), e.Pid)
	require.Equal(t, uint32(1000), e.Uid)
	require.Equal(t, "curl", e.Process)
	require.Equal(t, "/etc/ssl/cert.pem", e.File)
	require.Equal(t, uint32(0x1), e.Flags)
	require.Equal(t, int32(3), e.Result)
	require.Equal(t, "2026-01-01T00:00:05.000000Z", e.Timestamp)
}

func TestDecodeUnknownKindProducesNoEvent(t *testing.T) {
	p := pool.New(2)
	raw := record.Raw{Header: record.Header{Kind: 99}}
	_, ok, err := Decode(p, raw, time.Now())
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, p.InUseCount())
}

func TestDecodePoolExhaustionReturnsNotOK(t *testing.T) {
	p := pool.New(1)
	_, _ = p.Acquire()

	raw := record.Raw{
		Header:  record.Header{Kind: uint32(record.KindProcessExit)},
		Payload: encodePayload(t, record.ProcessExitPayload{ExitCode: 1}),
	}
	_, ok, err := Decode(p, raw, time.Now())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDecodeLibLoad(t *testing.T) {
	p := pool.New(2)
	var payload record.LibLoadPayload
	putString(payload.Path[:], "/usr/lib/libssl.so.1.1")
	raw := record.Raw{
		Header:  record.Header{Kind: uint32(record.KindLibLoad)},
		Payload: encodePayload(t, payload),
	}
	h, ok, err := Decode(p, raw, time.Now())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/usr/lib/libssl.so.1.1", p.Get(h).Library)
}
