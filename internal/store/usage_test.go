package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedUsage(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "bin")
	require.NoError(t, WriteProcessedText(filepath.Join(outDir, "a-0123456789ab.txt"), "hello"))
	require.NoError(t, WriteProcessedText(filepath.Join(outDir, "nested", "b-0123456789ab.txt"), "ab"))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "scratch.tmp"), []byte("ignored"), 0644))
	processed := filepath.Join(dir, "processed.txt")
	require.NoError(t, WriteProcessedText(processed, "Quarterly revenue grew."))

	u, err := ProcessedUsage(processed, outDir)
	require.NoError(t, err)
	assert.Equal(t, int64(len("Quarterly revenue grew.")), u.ProcessedBytes)
	assert.Equal(t, int64(7), u.OutputBytes)
	assert.Equal(t, 2, u.OutputFiles)
}

func TestProcessedUsage_missingPaths(t *testing.T) {
	dir := t.TempDir()
	u, err := ProcessedUsage(filepath.Join(dir, "absent.txt"), filepath.Join(dir, "no-bin"))
	require.NoError(t, err)
	assert.Equal(t, Usage{}, u)

	u, err = ProcessedUsage("", "")
	require.NoError(t, err)
	assert.Equal(t, Usage{}, u)
}
