package errtag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNilErrReturnsNil(t *testing.T) {
	require.NoError(t, New(ClassTransient, nil))
}

func TestClassOfRecoversClassThroughWrapping(t *testing.T) {
	base := New(ClassProbePartial, errors.New("boom"))
	wrapped := fmt.Errorf("loading probes: %w", base)

	class, ok := ClassOf(wrapped)
	require.True(t, ok)
	require.Equal(t, ClassProbePartial, class)
}

func TestClassOfUntaggedErrorDefaultsToEnvironmental(t *testing.T) {
	class, ok := ClassOf(errors.New("plain"))
	require.False(t, ok)
	require.Equal(t, ClassEnvironmental, class)
}

func TestClassString(t *testing.T) {
	require.Equal(t, "probe_partial", ClassProbePartial.String())
	require.Equal(t, "programmer_error", ClassProgrammerError.String())
}
