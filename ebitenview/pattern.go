package ebitenview

import (
	"image"
	"image/color"
)

// TestPattern returns a w x h equirectangular grid: a band of color per
// 90° of azimuth, darker below the horizon, with a white line every 15° of
// latitude and longitude.
func TestPattern(w, h int) *image.RGBA {
	w, h = max(w, 24), max(h, 12)
	bands := []color.RGBA{
		{200, 60, 60, 255},
		{60, 170, 80, 255},
		{60, 90, 200, 255},
		{200, 180, 60, 255},
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	stepX, stepY := w/24, h/12
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := bands[x*4/w]
			if y >= h/2 {
				c = color.RGBA{c.R / 2, c.G / 2, c.B / 2, 255}
			}
			if x%stepX == 0 || y%stepY == 0 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
