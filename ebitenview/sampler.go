package ebitenview

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"runtime"
	"sync"

	"github.com/phanxgames/panorama"
)

// Sampler renders a perspective frame out of an equirectangular panorama
// on the CPU. Each destination pixel is mapped through the view projection
// to a sphere direction and then to a source pixel (nearest neighbour,
// wrapping horizontally).
type Sampler struct {
	src     *image.RGBA
	workers int
}

// NewSampler converts img to RGBA once so sampling is a slice lookup.
func NewSampler(img image.Image) *Sampler {
	src, ok := img.(*image.RGBA)
	if !ok || src.Bounds().Min != (image.Point{}) {
		b := img.Bounds()
		src = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)
	}
	return &Sampler{src: src, workers: runtime.GOMAXPROCS(0)}
}

// Size returns the source panorama size.
func (s *Sampler) Size() panorama.ImageSize {
	b := s.src.Bounds()
	return panorama.ImageSize{Width: b.Dx(), Height: b.Dy()}
}

// At returns the source color in the direction of a normalized (u, v).
func (s *Sampler) At(uv panorama.Vec2) color.RGBA {
	w, h := s.src.Rect.Dx(), s.src.Rect.Dy()
	x := int(math.Floor(uv.X * float64(w)))
	y := int(math.Floor(uv.Y * float64(h)))
	x %= w
	if x < 0 {
		x += w
	}
	y = min(max(y, 0), h-1)
	i := y*s.src.Stride + x*4
	p := s.src.Pix[i : i+4 : i+4]
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Render fills dst. dst's pixel (x, y) shows screen point
// (x+0.5, y+0.5)*scale, so a frame smaller than the viewport by scale
// covers the whole viewport.
func (s *Sampler) Render(dst *image.RGBA, p panorama.Projection, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	b := dst.Bounds()
	rows := make(chan int, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		rows <- y
	}
	close(rows)

	var wg sync.WaitGroup
	for w := 0; w < max(s.workers, 1); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				s.renderRow(dst, p, scale, y)
			}
		}()
	}
	wg.Wait()
}

func (s *Sampler) renderRow(dst *image.RGBA, p panorama.Projection, scale float64, y int) {
	b := dst.Bounds()
	sy := (float64(y-b.Min.Y) + 0.5) * scale
	off := (y - b.Min.Y) * dst.Stride
	for x := b.Min.X; x < b.Max.X; x++ {
		pt := panorama.Vec2{X: (float64(x-b.Min.X) + 0.5) * scale, Y: sy}
		c := s.At(panorama.EquirectangularUV(p.VectorFromScreenLocation(pt)))
		i := off + (x-b.Min.X)*4
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}
