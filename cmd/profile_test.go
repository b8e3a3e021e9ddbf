package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfilerWritesBothProfiles(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "run")

	p, err := startProfiler(prefix)
	require.NoError(t, err)
	activeProfiler = p

	require.NoError(t, StopProfiling())
	assert.FileExists(t, prefix+".cpu.prof")
	assert.FileExists(t, prefix+".mem.prof")
	assert.Nil(t, activeProfiler)

	assert.NoError(t, StopProfiling(), "stopping twice is a no-op")
}

func TestStartProfilerBadPrefix(t *testing.T) {
	_, err := startProfiler(filepath.Join(t.TempDir(), "missing", "run"))
	assert.Error(t, err)
}
