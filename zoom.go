package panorama

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// pinchState follows the first two live pointers while they pinch.
type pinchState struct {
	active      bool
	pointer0    int
	pointer1    int
	initialDist float64
	prevDist    float64
	startFOV    float64
}

// zoomAnim holds an active field-of-view tween.
type zoomAnim struct {
	tween *gween.Tween
}

// detectPinch starts, advances or ends the pinch from the registry state.
// Caller must hold v.mu.
func (v *View) detectPinch() {
	p0, ok0 := v.touches.Primary()
	p1, ok1 := v.touches.Secondary()
	if !ok0 || !ok1 {
		v.pinch.active = false
		return
	}

	center := Vec2{X: (p0.Position.X + p1.Position.X) / 2, Y: (p0.Position.Y + p1.Position.Y) / 2}
	dist := p1.Position.Sub(p0.Position).Len()

	if !v.pinch.active || v.pinch.pointer0 != p0.ID || v.pinch.pointer1 != p1.ID {
		v.pinch = pinchState{
			active:      true,
			pointer0:    p0.ID,
			pointer1:    p1.ID,
			initialDist: dist,
			prevDist:    dist,
			startFOV:    v.config.fieldOfView,
		}
		return
	}

	scale := 1.0
	if v.pinch.initialDist > 0 {
		scale = dist / v.pinch.initialDist
	}
	scaleDelta := 0.0
	if v.pinch.prevDist > 0 {
		scaleDelta = dist/v.pinch.prevDist - 1.0
	}
	v.pinch.prevDist = dist

	if v.config.PinchToZoom && scale > 0 {
		v.zoom = nil
		v.setFieldOfViewLocked(clamp(v.pinch.startFOV/scale, MinFieldOfView, MaxFieldOfView))
	}
	v.queue(ViewEvent{
		Type:        EventPinch,
		Position:    center,
		Scale:       scale,
		ScaleDelta:  scaleDelta,
		FieldOfView: v.config.fieldOfView,
		Count:       v.touches.Count(),
	})
}

// ZoomTo animates the field of view to degrees over duration seconds. A
// non-positive duration sets it immediately. The target is validated and
// clamped like SetFieldOfView. A pinch or a direct SetFieldOfView cancels
// the animation.
func (v *View) ZoomTo(degrees float64, duration float32, easeFn ease.TweenFunc) error {
	v.mu.Lock()
	probe := v.config
	if err := probe.SetFieldOfView(degrees); err != nil {
		v.mu.Unlock()
		return err
	}
	target := probe.fieldOfView
	if duration <= 0 || math.Abs(target-v.config.fieldOfView) < 1e-9 {
		v.zoom = nil
		v.setFieldOfViewLocked(target)
	} else {
		if easeFn == nil {
			easeFn = ease.OutQuad
		}
		v.zoom = &zoomAnim{
			tween: gween.New(float32(v.config.fieldOfView), float32(target), duration, easeFn),
		}
	}
	v.mu.Unlock()
	v.flush()
	return nil
}

// Zooming reports whether a ZoomTo animation is running.
func (v *View) Zooming() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoom != nil
}

// advanceZoom steps the field-of-view tween. Caller must hold v.mu.
func (v *View) advanceZoom(dt float32) {
	if v.zoom == nil {
		return
	}
	val, done := v.zoom.tween.Update(dt)
	v.setFieldOfViewLocked(clamp(float64(val), MinFieldOfView, MaxFieldOfView))
	if done {
		v.zoom = nil
	}
}

// setFieldOfViewLocked stores an already validated field of view and queues
// a change event. Caller must hold v.mu.
func (v *View) setFieldOfViewLocked(degrees float64) {
	if degrees == v.config.fieldOfView {
		return
	}
	v.config.fieldOfView = degrees
	v.queue(ViewEvent{Type: EventFieldOfViewChange, FieldOfView: degrees})
}
