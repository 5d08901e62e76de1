package ebitenview

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsWatchedFile(t *testing.T) {
	dir := t.TempDir()
	pano := filepath.Join(dir, "pano.png")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(pano, []byte("a"), 0o600))

	w, err := NewWatcher(pano)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(pano, []byte("b"), 0o600))

	select {
	case name := <-w.Events:
		want, _ := filepath.Abs(pano)
		assert.Equal(t, want, name)
	case <-time.After(2 * time.Second):
		t.Fatal("no event for the watched file")
	}
}

func TestWatcherClose(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "pano.webp"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case _, ok := <-w.Events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher("/nonexistent/dir/pano.png")
	assert.Error(t, err)
}
