// Package ebitenview hosts a panorama.View in an ebiten window. It polls
// touches and the mouse, renders the equirectangular image on the CPU,
// draws the touch overlay and reloads the panorama file when it changes.
package ebitenview

import (
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/panorama"
)

// Options configures a Game.
type Options struct {
	Title string
	// RenderScale is the number of screen pixels per sampled pixel in each
	// direction. 1 samples every pixel; the default is 2.
	RenderScale float64
	// WheelStep is the field-of-view change per mouse wheel notch in
	// degrees. The default is 5.
	WheelStep     float64
	ShowFPS       bool
	ScreenshotDir string // defaults to "screenshots"
	// Assets is searched for panorama files not found on disk.
	Assets fs.FS
	// ExitWhenScriptDone ends the game once the view's test runner
	// finishes, after saving FinalScreenshot if it is set.
	ExitWhenScriptDone bool
	FinalScreenshot    string
	Logger             *slog.Logger
}

var (
	backgroundColor = color.RGBA{24, 24, 28, 255}
	latitudeColor   = color.RGBA{255, 200, 40, 220}
	longitudeColor  = color.RGBA{40, 200, 255, 220}
	dividerColor    = color.RGBA{0, 0, 0, 255}
)

const overlaySegments = 96

// Game implements ebiten.Game around a View.
type Game struct {
	view   *panorama.View
	opts   Options
	logger *slog.Logger

	sampler   *Sampler
	frame     *image.RGBA
	frameImg  *ebiten.Image
	imagePath string
	watcher   *Watcher

	pointers *pointerTracker
	fps      *fpsWidget

	screenshotQueue []string
	screenshotDir   string
	exiting         bool

	width, height int
}

// NewGame creates a game driving v.
func NewGame(v *panorama.View, opts Options) *Game {
	if opts.RenderScale <= 0 {
		opts.RenderScale = 2
	}
	if opts.WheelStep <= 0 {
		opts.WheelStep = 5
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "screenshots"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		view:          v,
		opts:          opts,
		logger:        logger.With("component", "ebitenview"),
		pointers:      newPointerTracker(),
		screenshotDir: opts.ScreenshotDir,
	}
}

// View returns the driven view.
func (g *Game) View() *panorama.View { return g.view }

// SetPanorama shows img. A nil image detaches the panorama.
func (g *Game) SetPanorama(img image.Image) {
	if img == nil {
		g.sampler = nil
		g.view.ClearImage()
		return
	}
	g.sampler = NewSampler(img)
	size := g.sampler.Size()
	if err := g.view.SetImageSize(size.Width, size.Height); err != nil {
		g.logger.Error("attach panorama", "err", err)
	}
}

// LoadPanorama loads name from disk or the asset bundle and shows it.
func (g *Game) LoadPanorama(name string) error {
	img, err := LoadImage(g.opts.Assets, name)
	if err != nil {
		return err
	}
	g.SetPanorama(img)
	g.imagePath = name
	b := img.Bounds()
	g.logger.Info("panorama loaded", "path", name, "width", b.Dx(), "height", b.Dy())
	return nil
}

// WatchPanorama reloads the current panorama file whenever it changes on
// disk. Call Close to stop.
func (g *Game) WatchPanorama() error {
	if g.imagePath == "" {
		return fmt.Errorf("ebitenview: no panorama loaded")
	}
	w, err := NewWatcher(g.imagePath)
	if err != nil {
		return fmt.Errorf("ebitenview: watch %s: %w", g.imagePath, err)
	}
	g.watcher = w
	return nil
}

// Close stops the file watcher and the view's motion source.
func (g *Game) Close() error {
	if g.watcher != nil {
		_ = g.watcher.Close()
		g.watcher = nil
	}
	return g.view.Close()
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if ebiten.IsFocused() {
		g.pointers.sync(g.view, g.pointers.poll())
	} else {
		g.pointers.cancel(g.view)
	}
	g.handleKeys()
	g.pollReload()

	dt := 1.0 / float64(ebiten.TPS())
	g.view.Update(float32(dt))
	if g.opts.ShowFPS {
		if g.fps == nil {
			g.fps = newFPSWidget()
		}
		g.fps.update(dt, g.view.FieldOfView())
	}

	if g.opts.ExitWhenScriptDone && g.scriptDone() {
		return g.exit()
	}
	return nil
}

// exit queues the final screenshot and terminates once it has been drawn.
func (g *Game) exit() error {
	if !g.exiting {
		g.exiting = true
		if g.opts.FinalScreenshot != "" {
			g.Screenshot(g.opts.FinalScreenshot)
		}
	}
	if len(g.screenshotQueue) > 0 {
		return nil
	}
	return ebiten.Termination
}

func (g *Game) handleKeys() {
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.zoomBy(-dy * g.opts.WheelStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.zoomBy(-g.opts.WheelStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.zoomBy(g.opts.WheelStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.view.SetVRMode(!g.view.VRMode())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.view.SetShowTouches(!g.view.ShowTouches())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.view.SetOrientToDevice(!g.view.OrientToDevice())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.Screenshot("view")
	}
}

// zoomBy changes the field of view by delta degrees, clamped to the
// allowed range.
func (g *Game) zoomBy(delta float64) {
	fov := math.Max(panorama.MinFieldOfView, math.Min(panorama.MaxFieldOfView, g.view.FieldOfView()+delta))
	if err := g.view.SetFieldOfView(fov); err != nil {
		g.logger.Warn("zoom", "err", err)
	}
}

func (g *Game) pollReload() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			if err := g.LoadPanorama(g.imagePath); err != nil {
				g.logger.Warn("reload failed", "path", name, "err", err)
			}
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.logger.Warn("watch", "err", err)
			}
		default:
			return
		}
	}
}

func (g *Game) scriptDone() bool {
	r := g.view.TestRunner()
	return r != nil && r.Done()
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	proj := g.view.Projection()
	if g.sampler == nil {
		screen.Fill(backgroundColor)
		ebitenutil.DebugPrintAt(screen, "no panorama loaded", 8, screen.Bounds().Dy()/2)
	} else {
		g.drawPanorama(screen, proj)
	}

	for _, line := range overlayPolylines(proj, g.overlayHits(proj)) {
		strokePolyline(screen, line.points, line.color)
	}
	if proj.VRSplit() {
		vp := proj.Viewport()
		x := float32(vp.X + vp.Width/2)
		vector.StrokeLine(screen, x, float32(vp.Y), x, float32(vp.Y+vp.Height), 2, dividerColor, false)
	}
	if g.fps != nil {
		g.fps.draw(screen)
	}
	g.flushScreenshots(screen)
}

// overlayHits intersects the live touches with proj, the snapshot the
// frame is drawn from.
func (g *Game) overlayHits(proj panorama.Projection) []panorama.TouchIntersection {
	if !g.view.ShowTouches() {
		return nil
	}
	return proj.Intersections(g.view.Touches())
}

func (g *Game) drawPanorama(screen *ebiten.Image, proj panorama.Projection) {
	w, h := frameSize(screen.Bounds().Dx(), screen.Bounds().Dy(), g.opts.RenderScale)
	if g.frame == nil || g.frame.Rect.Dx() != w || g.frame.Rect.Dy() != h {
		g.frame = image.NewRGBA(image.Rect(0, 0, w, h))
		if g.frameImg != nil {
			g.frameImg.Deallocate()
		}
		g.frameImg = ebiten.NewImage(w, h)
	}
	g.sampler.Render(g.frame, proj, g.opts.RenderScale)
	g.frameImg.WritePixels(g.frame.Pix)

	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	op.GeoM.Scale(g.opts.RenderScale, g.opts.RenderScale)
	screen.DrawImage(g.frameImg, op)
}

// Layout implements ebiten.Game. The view always covers the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		if err := g.view.SetViewportSize(float64(outsideWidth), float64(outsideHeight)); err != nil {
			g.logger.Warn("resize", "err", err)
		}
	}
	return outsideWidth, outsideHeight
}

// frameSize returns the sampled frame size covering a w x h screen.
func frameSize(w, h int, scale float64) (int, int) {
	if scale <= 0 {
		scale = 1
	}
	fw := max(int(math.Ceil(float64(w)/scale)), 1)
	fh := max(int(math.Ceil(float64(h)/scale)), 1)
	return fw, fh
}

type polyline struct {
	points []panorama.Vec2
	color  color.RGBA
}

// overlayPolylines returns the latitude and longitude lines through each
// touch intersection, projected through every eye.
func overlayPolylines(proj panorama.Projection, hits []panorama.TouchIntersection) []polyline {
	var out []polyline
	for _, hit := range hits {
		lat := panorama.LatitudeLine(hit.Latitude, overlaySegments)
		lon := panorama.LongitudeLine(hit.Longitude, overlaySegments/2)
		for eye := range proj.Eyes() {
			for _, pts := range proj.ProjectLine(eye, lat) {
				out = append(out, polyline{points: pts, color: latitudeColor})
			}
			for _, pts := range proj.ProjectLine(eye, lon) {
				out = append(out, polyline{points: pts, color: longitudeColor})
			}
		}
	}
	return out
}

func strokePolyline(dst *ebiten.Image, pts []panorama.Vec2, clr color.Color) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 2, clr, true)
	}
}
