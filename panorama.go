package panorama

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is a 2D vector used for screen positions, deltas, and normalized
// image coordinates throughout the API.
type Vec2 struct {
	X, Y float64
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) finite() bool {
	return finite(v.X) && finite(v.Y)
}

// Rect is an axis-aligned rectangle in screen pixels. The coordinate system
// has its origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ImageSize is the pixel size of the loaded equirectangular panorama.
// Decoding and texture upload happen elsewhere; the core only needs the
// dimensions to turn normalized sphere coordinates into image pixels.
type ImageSize struct {
	Width, Height int
}

// EventType identifies a kind of view event.
type EventType uint8

const (
	EventTouchBegan        EventType = iota // a pointer went down
	EventTouchMoved                         // a live pointer moved
	EventTouchEnded                         // a pointer lifted
	EventTouchCancelled                     // the host cancelled a pointer
	EventPinch                              // two-pointer pinch in progress
	EventOrientationChange                  // the look direction changed
	EventFieldOfViewChange                  // the field of view changed
)

// OrientationSource identifies what moved the camera.
type OrientationSource uint8

const (
	SourceProgram OrientationSource = iota // OrientToVector / OrientToAzimuthAltitude
	SourceTouch                            // touch-drag panning
	SourceSensor                           // device motion tracking
)

// Eye indices for VR split mode. Without VR split only EyeLeft exists and
// it covers the whole viewport.
const (
	EyeLeft  = 0
	EyeRight = 1
)

// World and camera-local basis vectors. The camera looks along +Z with +Y up
// and +X to the right of the screen.
var (
	worldUp      = mgl64.Vec3{0, 1, 0}
	localRight   = mgl64.Vec3{1, 0, 0}
	localUp      = mgl64.Vec3{0, 1, 0}
	localForward = mgl64.Vec3{0, 0, 1}
)

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec3(v mgl64.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// wrapAngle maps an angle into (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
