package enrich

import (
	"os"
	"testing"

	"github.com/cryptowatch/cryptowatch/internal/pool"
	"github.com/stretchr/testify/require"
)

func TestEnrichSelf(t *testing.T) {
	e := &pool.Event{Pid: uint32(os.Getpid())}
	Enrich(e)
	require.NotEmpty(t, e.Process)
	require.NotEmpty(t, e.Exe)
}

func TestEnrichNonexistentPIDLeavesFieldsUntouched(t *testing.T) {
	e := &pool.Event{Pid: 0, Process: "preexisting"}
	// PID 0 never exists as a procfs entry.
	Enrich(e)
	require.Equal(t, "preexisting", e.Process)
	require.Empty(t, e.Exe)
}

func TestProcessExists(t *testing.T) {
	require.True(t, ProcessExists(uint32(os.Getpid())))
	require.False(t, ProcessExists(0))
}
