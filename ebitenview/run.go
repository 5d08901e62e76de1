package ebitenview

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Run opens a resizable width x height window and runs g until the window
// closes or the game terminates. It closes g afterwards.
func Run(g *Game, width, height int) error {
	title := g.opts.Title
	if title == "" {
		title = "Panorama"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g.Layout(width, height)
	err := ebiten.RunGame(g)
	if cerr := g.Close(); err == nil {
		err = cerr
	}
	return err
}
