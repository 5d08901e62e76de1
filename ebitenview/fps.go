package ebitenview

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsWidget draws FPS and TPS in the top-left corner, refreshed about
// twice a second.
type fpsWidget struct {
	img     *ebiten.Image
	elapsed float64
	text    string
}

func newFPSWidget() *fpsWidget {
	// 100x48 is enough for "FPS: 60.0\nTPS: 60.0\nFOV: 60.0"
	return &fpsWidget{img: ebiten.NewImage(100, 48)}
}

func (w *fpsWidget) update(dt, fov float64) {
	w.elapsed += dt
	if w.text != "" && w.elapsed < 0.5 {
		return
	}
	w.elapsed = 0
	w.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nFOV: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS(), fov)

	w.img.Clear()
	w.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(w.img, w.text)
}

func (w *fpsWidget) draw(screen *ebiten.Image) {
	screen.DrawImage(w.img, nil)
}
