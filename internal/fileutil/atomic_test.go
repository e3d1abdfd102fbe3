package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Games int   `json:"games"`
	Wins  []int `json:"wins"`
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")
	require.NoError(t, WriteJSON(path, report{Games: 3, Wins: []int{2, 1}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, report{Games: 3, Wins: []int{2, 1}}, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files remain")
}

func TestWriteJSONOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, WriteJSON(path, report{Games: 1}))
	require.NoError(t, WriteJSON(path, report{Games: 2}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"games": 2`)
}

func TestWriteFileAtomicInvalidDir(t *testing.T) {
	t.Parallel()

	err := WriteFileAtomic("/nonexistent/dir/results.json", []byte("{}"), 0o644)
	assert.Error(t, err)
}

func TestWriteJSONRejectsUnencodable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results.json")
	assert.Error(t, WriteJSON(path, map[string]any{"ch": make(chan int)}))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
