package ebitenview

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/panorama"
)

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	white = color.RGBA{255, 255, 255, 255}
)

// quadrants returns a panorama whose four azimuth quarters are red, green,
// blue and white, left to right.
func quadrants(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	cols := []color.RGBA{red, green, blue, white}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, cols[x*4/w])
		}
	}
	return img
}

func TestSamplerAt(t *testing.T) {
	s := NewSampler(quadrants(8, 4))
	assert.Equal(t, panorama.ImageSize{Width: 8, Height: 4}, s.Size())

	assert.Equal(t, red, s.At(panorama.Vec2{X: 0.01, Y: 0.5}))
	assert.Equal(t, blue, s.At(panorama.Vec2{X: 0.6, Y: 0.5}))
	assert.Equal(t, red, s.At(panorama.Vec2{X: 1.0, Y: 0.5}), "u wraps")
	assert.Equal(t, white, s.At(panorama.Vec2{X: -0.01, Y: 0.5}), "u wraps below zero")
	assert.Equal(t, green, s.At(panorama.Vec2{X: 0.3, Y: 1.0}), "v clamps")
}

func TestSamplerConvertsOffsetImages(t *testing.T) {
	src := quadrants(8, 4)
	sub := src.SubImage(image.Rect(4, 0, 8, 4))
	s := NewSampler(sub)
	assert.Equal(t, panorama.ImageSize{Width: 4, Height: 4}, s.Size())
	assert.Equal(t, blue, s.At(panorama.Vec2{X: 0.1, Y: 0.1}))
}

func TestSamplerRender(t *testing.T) {
	s := NewSampler(quadrants(400, 200))
	v := panorama.NewView(40, 20)
	require.NoError(t, v.SetFieldOfView(20))

	// Looking at azimuth 0 (u = 0.5): left of centre is green, right is blue.
	dst := image.NewRGBA(image.Rect(0, 0, 40, 20))
	s.Render(dst, v.Projection(), 1)
	assert.Equal(t, green, dst.RGBAAt(10, 10))
	assert.Equal(t, blue, dst.RGBAAt(30, 10))

	// Azimuth π/4 is the middle of the blue quarter.
	require.True(t, v.OrientToAzimuthAltitude(math.Pi/4, 0))
	s.Render(dst, v.Projection(), 1)
	for _, x := range []int{0, 20, 39} {
		assert.Equal(t, blue, dst.RGBAAt(x, 10), "x=%d", x)
	}
}

func TestSamplerRenderScaled(t *testing.T) {
	s := NewSampler(quadrants(400, 200))
	v := panorama.NewView(80, 40)
	require.NoError(t, v.SetFieldOfView(20))

	dst := image.NewRGBA(image.Rect(0, 0, 20, 10))
	s.Render(dst, v.Projection(), 4)
	assert.Equal(t, green, dst.RGBAAt(5, 5))
	assert.Equal(t, blue, dst.RGBAAt(15, 5))
}

func TestTestPattern(t *testing.T) {
	img := TestPattern(240, 120)
	assert.Equal(t, image.Rect(0, 0, 240, 120), img.Bounds())
	assert.Equal(t, white, img.RGBAAt(0, 5), "grid line")
	assert.Equal(t, color.RGBA{200, 60, 60, 255}, img.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{100, 30, 30, 255}, img.RGBAAt(5, 65), "below the horizon")

	small := TestPattern(1, 1)
	assert.Equal(t, image.Rect(0, 0, 24, 12), small.Bounds())
}
