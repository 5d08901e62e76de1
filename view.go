package panorama

import (
	"io"
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// View is the top-level object for one panorama: it owns the orientation,
// the view configuration, the touch registry and both input adapters, and
// answers projection queries.
//
// A View is meant to be driven from one goroutine (the host's UI or game
// loop). Motion sources may deliver from their own goroutines; samples are
// handed over in Update. Projection snapshots may be taken from any
// goroutine.
type View struct {
	mu sync.RWMutex

	orientation Orientation
	config      ViewConfiguration
	image       *ImageSize

	// Input
	touches TouchRegistry
	pinch   pinchState
	zoom    *zoomAnim
	sensor  sensorAdapter
	motion  MotionSource

	// Events
	handlers handlerRegistry
	pending  []ViewEvent
	store    EntityStore

	// Synthetic input and scripted tests
	injectQueue [][]syntheticTouchEvent
	testRunner  *TestRunner

	logger *slog.Logger
	debug  bool
}

// NewView creates a view of the given pixel size looking along +Z.
// Sizes that are not positive fall back to 1x1 until SetViewportSize.
func NewView(width, height float64) *View {
	return &View{
		orientation: NewOrientation(),
		config:      DefaultViewConfiguration(width, height),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Update hands the latest motion sample to the orientation, advances zoom
// animations and consumes one frame of injected input. Call it once per
// tick with the elapsed seconds.
func (v *View) Update(dt float32) {
	v.mu.RLock()
	runner := v.testRunner
	v.mu.RUnlock()
	if runner != nil {
		runner.step(v)
	}

	v.mu.Lock()
	v.processInjectedInput()
	if v.sensor.apply(&v.orientation) {
		v.queueOrientationChange(SourceSensor)
	}
	v.advanceZoom(dt)
	if v.debug {
		v.debugLog(v.collectStats())
	}
	v.mu.Unlock()
	v.flush()
}

// Close stops motion tracking.
func (v *View) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sensor.disable()
}

// --- Orientation (read-only derived state) ---

// LookVector returns the unit world direction at the center of the view.
func (v *View) LookVector() mgl64.Vec3 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.orientation.LookVector()
}

// LookAzimuth returns the horizontal look angle in (-π, π].
func (v *View) LookAzimuth() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.orientation.Azimuth()
}

// LookAltitude returns the vertical look angle in [-π/2, π/2].
func (v *View) LookAltitude() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.orientation.Altitude()
}

// Rotation returns the camera rotation.
func (v *View) Rotation() mgl64.Quat {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.orientation.Rotation()
}

// --- Orientation setters ---

// OrientToVector points the camera along vec. Zero or non-finite vectors
// are ignored and reported as false.
func (v *View) OrientToVector(vec mgl64.Vec3) bool {
	v.mu.Lock()
	ok := v.orientation.OrientToVector(vec)
	if ok {
		v.queueOrientationChange(SourceProgram)
	}
	v.mu.Unlock()
	v.flush()
	return ok
}

// OrientToAzimuthAltitude points the camera at the given angles in radians.
func (v *View) OrientToAzimuthAltitude(azimuth, altitude float64) bool {
	v.mu.Lock()
	ok := v.orientation.OrientToAzimuthAltitude(azimuth, altitude)
	if ok {
		v.queueOrientationChange(SourceProgram)
	}
	v.mu.Unlock()
	v.flush()
	return ok
}

// --- Configuration ---

// Configuration returns a copy of the current view configuration.
func (v *View) Configuration() ViewConfiguration {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config
}

// FieldOfView returns the vertical field of view in degrees.
func (v *View) FieldOfView() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config.fieldOfView
}

// SetFieldOfView sets the vertical field of view in degrees. Values in
// (0, 180) are clamped to [MinFieldOfView, MaxFieldOfView]; others are
// rejected and the current value kept. A running ZoomTo is cancelled.
func (v *View) SetFieldOfView(degrees float64) error {
	v.mu.Lock()
	next := v.config
	if err := next.SetFieldOfView(degrees); err != nil {
		logger := v.logger
		v.mu.Unlock()
		logger.Debug("rejected field of view", "degrees", degrees)
		return err
	}
	v.zoom = nil
	v.setFieldOfViewLocked(next.fieldOfView)
	v.mu.Unlock()
	v.flush()
	return nil
}

// Viewport returns the screen rectangle the view renders into.
func (v *View) Viewport() Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config.viewport
}

// SetViewport sets the screen rectangle the view renders into.
func (v *View) SetViewport(r Rect) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.config.SetViewport(r)
}

// SetViewportSize sets the viewport to (0, 0, width, height). Render
// drivers call it whenever the surface is resized.
func (v *View) SetViewportSize(width, height float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.config.SetViewportSize(width, height)
}

// VRMode reports whether split-screen stereo rendering is on.
func (v *View) VRMode() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config.VRMode
}

// SetVRMode turns split-screen stereo rendering on or off.
func (v *View) SetVRMode(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.config.VRMode = enabled
}

// SetStereoSeparation sets the total inward yaw between the two VR eyes in
// radians. Zero (the default) renders both eyes identically.
func (v *View) SetStereoSeparation(radians float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.config.SetStereoSeparation(radians)
}

// TouchToPan reports whether single-pointer drags rotate the camera.
func (v *View) TouchToPan() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config.TouchToPan
}

// SetTouchToPan enables or disables drag rotation. Disabling it mid-drag
// freezes the orientation while the pointer keeps moving.
func (v *View) SetTouchToPan(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.config.TouchToPan = enabled
}

// PinchToZoom reports whether pinches change the field of view.
func (v *View) PinchToZoom() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config.PinchToZoom
}

// SetPinchToZoom enables or disables pinch zoom.
func (v *View) SetPinchToZoom(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.config.PinchToZoom = enabled
}

// ShowTouches reports whether the touch overlay is enabled.
func (v *View) ShowTouches() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config.ShowTouches
}

// SetShowTouches enables or disables the touch overlay.
func (v *View) SetShowTouches(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.config.ShowTouches = enabled
}

// --- Motion tracking ---

// SetMotionSource attaches the device motion source. If motion tracking is
// already requested, the view switches to the new source.
func (v *View) SetMotionSource(src MotionSource) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.motion = src
	if v.config.OrientToDevice {
		v.syncSensorLocked()
	}
}

// SetCalibrationMode selects how tracking aligns with the current view when
// it starts. It applies from the next enable.
func (v *View) SetCalibrationMode(mode CalibrationMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sensor.mode = mode
}

// OrientToDevice reports whether motion tracking is requested.
func (v *View) OrientToDevice() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config.OrientToDevice
}

// SetOrientToDevice requests motion tracking. Without an available motion
// source the request is remembered but has no effect.
func (v *View) SetOrientToDevice(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.config.OrientToDevice = enabled
	v.syncSensorLocked()
}

// SensorState reports whether motion samples are being applied.
func (v *View) SensorState() SensorState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sensor.State()
}

// SensorStats returns counts of applied and skipped motion samples.
func (v *View) SensorStats() SensorStats {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sensor.stats
}

// syncSensorLocked starts or stops the adapter to match the configuration.
// Caller must hold v.mu.
func (v *View) syncSensorLocked() {
	if !v.config.OrientToDevice {
		if err := v.sensor.disable(); err != nil {
			v.logger.Warn("motion tracking stop failed", "err", err)
		}
		return
	}
	if err := v.sensor.enable(v.motion); err != nil {
		v.logger.Info("motion tracking unavailable", "err", err)
		return
	}
	v.logger.Debug("motion tracking enabled", "mode", v.sensor.mode)
}

// --- Image ---

// SetImageSize records the pixel size of the loaded panorama.
func (v *View) SetImageSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidImageSize
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.image = &ImageSize{Width: width, Height: height}
	return nil
}

// ClearImage forgets the panorama; image queries return normalized
// coordinates afterwards.
func (v *View) ClearImage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.image = nil
}

// ImageSize returns the loaded panorama size, if any.
func (v *View) ImageSize() (ImageSize, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.image == nil {
		return ImageSize{}, false
	}
	return *v.image, true
}

// HasImage reports whether a panorama size is set.
func (v *View) HasImage() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.image != nil
}

// --- Projection queries ---

// Projection returns a consistent snapshot of rotation, field of view and
// viewport for one frame.
func (v *View) Projection() Projection {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.projectionLocked()
}

// projectionLocked builds a snapshot. Caller must hold v.mu.
func (v *View) projectionLocked() Projection {
	return NewProjection(v.orientation.Rotation(), v.config)
}

// ScreenLocationFromVector projects a world direction onto the screen.
// It returns false when the direction points behind the camera.
func (v *View) ScreenLocationFromVector(vec mgl64.Vec3) (Vec2, bool) {
	return v.Projection().ScreenLocationFromVector(vec)
}

// VectorFromScreenLocation returns the unit world direction through a
// screen point.
func (v *View) VectorFromScreenLocation(pt Vec2) mgl64.Vec3 {
	return v.Projection().VectorFromScreenLocation(pt)
}

// ImagePixelAtScreenLocation returns the panorama pixel under a screen
// point, or normalized (u, v) in [0, 1] when no image is set.
func (v *View) ImagePixelAtScreenLocation(pt Vec2) Vec2 {
	v.mu.RLock()
	p := v.projectionLocked()
	var img *ImageSize
	if v.image != nil {
		size := *v.image
		img = &size
	}
	v.mu.RUnlock()
	return p.ImagePixelAtScreenLocation(pt, img)
}

// --- Touches ---

// TouchBegan registers a pointer going down at a screen point.
func (v *View) TouchBegan(id int, pt Vec2) {
	v.mu.Lock()
	v.touchBeganLocked(id, pt)
	v.mu.Unlock()
	v.flush()
}

// TouchMoved updates a pointer. The primary pointer pans the camera when
// it is the only one down; two pointers pinch.
func (v *View) TouchMoved(id int, pt Vec2) {
	v.mu.Lock()
	v.touchMovedLocked(id, pt)
	v.mu.Unlock()
	v.flush()
}

// TouchEnded removes a pointer that lifted.
func (v *View) TouchEnded(id int) {
	v.mu.Lock()
	v.touchEndedLocked(EventTouchEnded, id)
	v.mu.Unlock()
	v.flush()
}

// TouchCancelled removes a pointer the host cancelled.
func (v *View) TouchCancelled(id int) {
	v.mu.Lock()
	v.touchEndedLocked(EventTouchCancelled, id)
	v.mu.Unlock()
	v.flush()
}

func (v *View) touchBeganLocked(id int, pt Vec2) {
	if !v.touches.Began(id, pt) {
		return
	}
	v.zoom = nil
	v.queueTouch(EventTouchBegan, id, pt, Vec2{})
	v.detectPinch()
}

func (v *View) touchMovedLocked(id int, pt Vec2) {
	delta, ok := v.touches.Moved(id, pt)
	if !ok {
		return
	}
	t, _ := v.touches.Get(id)
	v.queueTouch(EventTouchMoved, id, pt, delta)
	v.panTouch(t, delta)
	v.detectPinch()
}

func (v *View) touchEndedLocked(kind EventType, id int) {
	t, live := v.touches.Get(id)
	if !live {
		return
	}
	v.touches.Ended(id)
	v.queueTouch(kind, id, t.Position, Vec2{})
	v.detectPinch()
}

// queueTouch records a touch event. Caller must hold v.mu.
func (v *View) queueTouch(kind EventType, id int, pt, delta Vec2) {
	v.queue(ViewEvent{
		Type:     kind,
		TouchID:  id,
		Position: pt,
		Delta:    delta,
		Count:    v.touches.Count(),
	})
}

// Touches returns the live pointers in the order they went down.
func (v *View) Touches() []Touch {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.touches.Snapshot()
}

// NumberOfTouches returns the number of live pointers.
func (v *View) NumberOfTouches() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.touches.Count()
}

// TouchInRect reports whether any live pointer lies inside rect.
func (v *View) TouchInRect(rect Rect) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.touches.InRect(rect)
}

// --- Diagnostics ---

// SetLogger sets the structured logger. nil restores the discarding
// default.
func (v *View) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.logger = l
}

// SetDebugMode enables or disables per-update debug stats on the logger.
func (v *View) SetDebugMode(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.debug = enabled
}
