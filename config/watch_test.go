package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replaceFile writes data next to path and renames it into place, as editors do, so the
// watcher never sees a truncated file.
func replaceFile(t *testing.T, path string, data string) {
	t.Helper()
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(data), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestWatchDeliversValidEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave.toml")
	require.NoError(t, os.WriteFile(path, []byte("[grid]\nrows = 10\n"), 0o644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	replaceFile(t, path, "[grid]\nrows = 20\n")

	select {
	case cfg := <-w.Changes():
		assert.Equal(t, 20, cfg.Grid.Rows)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}

func TestWatchSkipsInvalidEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	replaceFile(t, path, "[grid]\nrows = 0\n")

	select {
	case cfg := <-w.Changes():
		t.Fatalf("invalid config delivered: %+v", cfg.Grid)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave.toml")
	w, err := Watch(path)
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(filepath.Join(t.TempDir(), "nope", "wave.toml"))
	assert.Error(t, err)
}
