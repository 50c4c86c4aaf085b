package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, Defaults(), s)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Defaults(), s)
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool_capacity: 5000\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5000, s.PoolCapacity)
	require.Equal(t, Defaults().CryptoLibraries, s.CryptoLibraries)
}

func TestApplyOverridesFlagsWinOverFile(t *testing.T) {
	s := Settings{PoolCapacity: 5000}
	capOverride := 42
	out := ApplyOverrides(s, Overrides{PoolCapacity: &capOverride})
	require.Equal(t, 42, out.PoolCapacity)
}

func TestApplyOverridesNilLeavesFieldUntouched(t *testing.T) {
	s := Settings{PoolCapacity: 5000}
	out := ApplyOverrides(s, Overrides{})
	require.Equal(t, 5000, out.PoolCapacity)
}
