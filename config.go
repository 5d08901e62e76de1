package panorama

import (
	"errors"
	"math"
)

// Field of view limits in degrees. Requests inside (0, 180) are clamped to
// this range; anything else is rejected.
const (
	MinFieldOfView     = 1.0
	MaxFieldOfView     = 170.0
	DefaultFieldOfView = 60.0
)

var (
	// ErrInvalidFieldOfView is returned for a field of view that is not a
	// finite angle strictly between 0 and 180 degrees.
	ErrInvalidFieldOfView = errors.New("panorama: field of view must be in (0, 180) degrees")
	// ErrInvalidViewport is returned for a viewport with non-positive or
	// non-finite size.
	ErrInvalidViewport = errors.New("panorama: viewport must have positive finite size")
	// ErrInvalidStereoSeparation is returned for a negative or non-finite
	// stereo separation.
	ErrInvalidStereoSeparation = errors.New("panorama: stereo separation must be a finite angle >= 0")
	// ErrInvalidImageSize is returned for a panorama with non-positive size.
	ErrInvalidImageSize = errors.New("panorama: image size must be positive")
)

// ViewConfiguration holds the settings that shape the projection and gate
// the input adapters.
//
// Field of view, viewport and stereo separation are validated by their
// setters; a rejected value leaves the previous one in place. The flags are
// plain fields.
type ViewConfiguration struct {
	// VRMode splits the viewport into two half-width eye viewports.
	VRMode bool
	// OrientToDevice enables motion tracking when a source is available.
	OrientToDevice bool
	// TouchToPan lets single-pointer drags rotate the camera.
	TouchToPan bool
	// PinchToZoom lets two-pointer pinches change the field of view.
	PinchToZoom bool
	// ShowTouches enables the latitude/longitude overlay for live touches.
	ShowTouches bool

	fieldOfView      float64
	viewport         Rect
	stereoSeparation float64
}

// DefaultViewConfiguration returns the settings a new View starts with.
func DefaultViewConfiguration(width, height float64) ViewConfiguration {
	c := ViewConfiguration{
		TouchToPan:  true,
		PinchToZoom: true,
		fieldOfView: DefaultFieldOfView,
		viewport:    Rect{Width: 1, Height: 1},
	}
	_ = c.SetViewportSize(width, height)
	return c
}

// FieldOfView returns the vertical field of view in degrees.
func (c *ViewConfiguration) FieldOfView() float64 {
	return c.fieldOfView
}

// SetFieldOfView sets the vertical field of view in degrees, clamped to
// [MinFieldOfView, MaxFieldOfView].
func (c *ViewConfiguration) SetFieldOfView(degrees float64) error {
	if !finite(degrees) || degrees <= 0 || degrees >= 180 {
		return ErrInvalidFieldOfView
	}
	c.fieldOfView = clamp(degrees, MinFieldOfView, MaxFieldOfView)
	return nil
}

// Viewport returns the screen rectangle the view renders into.
func (c *ViewConfiguration) Viewport() Rect {
	return c.viewport
}

// SetViewport sets the screen rectangle the view renders into.
func (c *ViewConfiguration) SetViewport(r Rect) error {
	if !finite(r.X) || !finite(r.Y) || !finite(r.Width) || !finite(r.Height) ||
		r.Width <= 0 || r.Height <= 0 {
		return ErrInvalidViewport
	}
	c.viewport = r
	return nil
}

// SetViewportSize sets the viewport to (0, 0, width, height).
func (c *ViewConfiguration) SetViewportSize(width, height float64) error {
	return c.SetViewport(Rect{Width: width, Height: height})
}

// StereoSeparation returns the per-pair eye yaw in radians used in VR mode.
func (c *ViewConfiguration) StereoSeparation() float64 {
	return c.stereoSeparation
}

// SetStereoSeparation sets the total yaw between the two eyes in radians.
// Each eye is turned inward by half of it. Up to 10° is accepted.
func (c *ViewConfiguration) SetStereoSeparation(radians float64) error {
	if !finite(radians) || radians < 0 || radians > math.Pi/18 {
		return ErrInvalidStereoSeparation
	}
	c.stereoSeparation = radians
	return nil
}
