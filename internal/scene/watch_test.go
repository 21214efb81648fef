package scene

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsSceneChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlScene), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	// untracked files in the same directory are ignored
	require.NoError(t, os.WriteFile(other, []byte(yamlScene), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(yamlScene+"\n"), 0o644))

	select {
	case name := <-w.Events:
		abs, err := filepath.Abs(path)
		require.NoError(t, err)
		assert.Equal(t, abs, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for the watched scene")
	}
}

func TestWatcherClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events
	assert.False(t, ok)
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope", "scene.yaml"))
	assert.Error(t, err)
}
