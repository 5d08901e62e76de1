package ebitenview

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"north", "north"},
		{"after-zoom", "after-zoom"},
		{"frame.01", "frame.01"},
		{"look up", "look_up"},
		{"a/b\\c", "a_b_c"},
		{"fov=30°", "fov_30_"},
		{"", "unlabeled"},
		{"   ", "unlabeled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeLabel(tt.in), "sanitizeLabel(%q)", tt.in)
	}
}

func TestUnpremultiply(t *testing.T) {
	img := unpremultiply([]byte{
		255, 0, 0, 255,
		64, 32, 0, 128,
		0, 0, 0, 0,
	}, 3, 1)
	assert.Equal(t, []uint8{255, 0, 0, 255, 127, 63, 0, 128, 0, 0, 0, 0}, img.Pix)
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	require.NoError(t, writePNG(path, quadrants(8, 4)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	assert.Error(t, writePNG(filepath.Join(t.TempDir(), "missing", "shot.png"), quadrants(2, 2)))
}
