package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/cryptowatch/cryptowatch/internal/record"
)

func ts(t *testing.T, s string) string {
	t.Helper()
	return s
}

func TestObserveAccumulatesLibrariesInInsertionOrder(t *testing.T) {
	a := NewAggregator(42, false)
	a.Observe(&pool.Event{Pid: 42, Kind: record.KindLibLoad, Library: "/usr/lib/libssl.so.1.1", LibraryName: "libssl", Timestamp: "2026-01-01T00:00:00.000000Z"})
	a.Observe(&pool.Event{Pid: 42, Kind: record.KindLibLoad, Library: "/usr/lib/libcrypto.so.1.1", LibraryName: "libcrypto", Timestamp: "2026-01-01T00:00:01.000000Z"})
	a.Observe(&pool.Event{Pid: 42, Kind: record.KindLibLoad, Library: "/usr/lib/libssl.so.1.1", LibraryName: "libssl", Timestamp: "2026-01-01T00:00:02.000000Z"})

	doc := a.Finalize(TerminationDurationElapsed)
	require.Len(t, doc.Libraries, 2)
	require.Equal(t, "libssl", doc.Libraries[0].Name)
	require.Equal(t, "libcrypto", doc.Libraries[1].Name)
}

func TestObserveIgnoresEventsForOtherPIDsWithoutFollowChildren(t *testing.T) {
	a := NewAggregator(42, false)
	a.Observe(&pool.Event{Pid: 43, Kind: record.KindLibLoad, Library: "/usr/lib/libssl.so", LibraryName: "libssl"})

	doc := a.Finalize(TerminationDurationElapsed)
	require.Empty(t, doc.Libraries)
	require.Equal(t, 0, doc.Statistics.TotalEvents)
}

func TestFollowChildrenTracksDescendantAddedByExecThenExit(t *testing.T) {
	a := NewAggregator(42, true)

	a.Observe(&pool.Event{Pid: 100, Ppid: 42, Kind: record.KindProcessExec, Timestamp: ts(t, "")})
	a.Observe(&pool.Event{Pid: 100, Kind: record.KindLibLoad, Library: "/usr/lib/libssl.so", LibraryName: "libssl"})

	doc := a.Finalize(TerminationDurationElapsed)
	require.Len(t, doc.Libraries, 1)

	a.Observe(&pool.Event{Pid: 100, Kind: record.KindProcessExit})
	a.Observe(&pool.Event{Pid: 100, Kind: record.KindLibLoad, Library: "/usr/lib/libcrypto.so", LibraryName: "libcrypto"})

	doc2 := a.Finalize(TerminationDurationElapsed)
	require.Len(t, doc2.Libraries, 1, "library load after the descendant exited must not be attributed")
}

func TestFollowChildrenIgnoresExecWithUntrackedParent(t *testing.T) {
	a := NewAggregator(42, true)
	a.Observe(&pool.Event{Pid: 200, Ppid: 999, Kind: record.KindProcessExec})
	a.Observe(&pool.Event{Pid: 200, Kind: record.KindLibLoad, Library: "/usr/lib/libssl.so", LibraryName: "libssl"})

	doc := a.Finalize(TerminationDurationElapsed)
	require.Empty(t, doc.Libraries)
}

func TestObserveFileAccessCountsRepeatedOpens(t *testing.T) {
	a := NewAggregator(42, false)
	e := &pool.Event{Pid: 42, Kind: record.KindFileOpen, File: "/etc/ssl/cert.pem", FileKind: pool.FileKindCertificate, Timestamp: "2026-01-01T00:00:00.000000Z"}
	a.Observe(e)
	e2 := &pool.Event{Pid: 42, Kind: record.KindFileOpen, File: "/etc/ssl/cert.pem", FileKind: pool.FileKindCertificate, Timestamp: "2026-01-01T00:00:05.000000Z"}
	a.Observe(e2)

	doc := a.Finalize(TerminationDurationElapsed)
	obs := doc.FilesAccessed["/etc/ssl/cert.pem"]
	require.NotNil(t, obs)
	require.Equal(t, 2, obs.AccessCount)
	require.Equal(t, "certificate", obs.Kind)
}

func TestObserveAPICallCounts(t *testing.T) {
	a := NewAggregator(42, false)
	a.Observe(&pool.Event{Pid: 42, Kind: record.KindAPICall, Function: "SSL_write"})
	a.Observe(&pool.Event{Pid: 42, Kind: record.KindAPICall, Function: "SSL_write"})
	a.Observe(&pool.Event{Pid: 42, Kind: record.KindAPICall, Function: "SSL_read"})

	doc := a.Finalize(TerminationDurationElapsed)
	require.Equal(t, 2, doc.APICalls["SSL_write"])
	require.Equal(t, 1, doc.APICalls["SSL_read"])
}

func TestFinalizePartialFlagReflectsTerminationReason(t *testing.T) {
	a := NewAggregator(42, false)
	require.False(t, a.Finalize(TerminationDurationElapsed).Partial)
	require.True(t, a.Finalize(TerminationTargetGone).Partial)
	require.True(t, a.Finalize(TerminationShutdownRequested).Partial)
}

func TestFinalizeMetadataCarriesTargetPID(t *testing.T) {
	a := NewAggregator(4242424, false)
	doc := a.Finalize(TerminationDurationElapsed)
	require.Equal(t, uint32(4242424), doc.Metadata.TargetPID)
	require.Greater(t, doc.Metadata.Duration, time.Duration(-1))
}
