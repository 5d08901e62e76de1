package panorama

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Clip planes for the matrices handed to GPU render drivers. The panorama
// sphere is drawn at unit radius, so anything in (near, far) works.
const (
	nearPlane = 0.1
	farPlane  = 100.0
)

// flipZ converts the camera frame (forward +Z) into OpenGL eye space
// (forward -Z) without touching right or up.
var flipZ = mgl64.Scale3D(1, 1, -1)

// eyeState is the per-eye part of a Projection, derived once at construction.
type eyeState struct {
	viewport Rect
	rotation mgl64.Quat
	inverse  mgl64.Quat
	tanH     float64 // tan(horizontal fov / 2)
	tanV     float64 // tan(vertical fov / 2)
}

// Projection is an immutable snapshot of everything needed to map between
// screen pixels, world rays and panorama pixels: the camera rotation, the
// vertical field of view, the viewport and the VR split flag.
//
// A render driver takes one Projection per frame so rotation and field of
// view stay consistent for the whole frame.
type Projection struct {
	rotation    mgl64.Quat
	fieldOfView float64
	viewport    Rect
	vrSplit     bool
	eyes        [2]eyeState
	eyeCount    int
}

// NewProjection builds a projection snapshot from a rotation and a view
// configuration.
func NewProjection(rotation mgl64.Quat, cfg ViewConfiguration) Projection {
	if !validQuat(rotation) {
		rotation = mgl64.QuatIdent()
	}
	p := Projection{
		rotation:    rotation.Normalize(),
		fieldOfView: cfg.fieldOfView,
		viewport:    cfg.viewport,
		vrSplit:     cfg.VRMode,
	}

	tanV := math.Tan(mgl64.DegToRad(p.fieldOfView) / 2)
	vp := p.viewport
	if !p.vrSplit {
		p.eyeCount = 1
		p.eyes[EyeLeft] = newEyeState(vp, p.rotation, tanV, 0)
		return p
	}

	p.eyeCount = 2
	half := vp.Width / 2
	toe := cfg.stereoSeparation / 2
	p.eyes[EyeLeft] = newEyeState(Rect{X: vp.X, Y: vp.Y, Width: half, Height: vp.Height}, p.rotation, tanV, toe)
	p.eyes[EyeRight] = newEyeState(Rect{X: vp.X + half, Y: vp.Y, Width: half, Height: vp.Height}, p.rotation, tanV, -toe)
	return p
}

// newEyeState derives one eye. yaw turns the eye about its own up axis;
// positive yaw turns it to the right.
func newEyeState(vp Rect, rotation mgl64.Quat, tanV, yaw float64) eyeState {
	rot := rotation
	if yaw != 0 {
		rot = rotation.Mul(mgl64.QuatRotate(yaw, localUp)).Normalize()
	}
	return eyeState{
		viewport: vp,
		rotation: rot,
		inverse:  rot.Conjugate(),
		tanH:     tanV * vp.Width / vp.Height,
		tanV:     tanV,
	}
}

// Rotation returns the camera rotation captured by the snapshot.
func (p Projection) Rotation() mgl64.Quat {
	return p.rotation
}

// LookVector returns the world direction at the center of the view.
func (p Projection) LookVector() mgl64.Vec3 {
	return p.rotation.Rotate(localForward)
}

// FieldOfView returns the vertical field of view in degrees.
func (p Projection) FieldOfView() float64 {
	return p.fieldOfView
}

// HorizontalFieldOfView returns the horizontal field of view of an eye in
// radians.
func (p Projection) HorizontalFieldOfView(eye int) float64 {
	return 2 * math.Atan(p.eye(eye).tanH)
}

// VerticalFieldOfView returns the vertical field of view in radians.
func (p Projection) VerticalFieldOfView() float64 {
	return mgl64.DegToRad(p.fieldOfView)
}

// Viewport returns the full screen rectangle.
func (p Projection) Viewport() Rect {
	return p.viewport
}

// VRSplit reports whether the projection renders two eyes.
func (p Projection) VRSplit() bool {
	return p.vrSplit
}

// Eyes returns the eye viewports: one covering the whole viewport, or the
// left and right halves in VR split mode.
func (p Projection) Eyes() []Rect {
	out := make([]Rect, p.eyeCount)
	for i := range out {
		out[i] = p.eyes[i].viewport
	}
	return out
}

// EyeAt returns the eye whose viewport contains the screen point. Points
// outside the viewport are assigned to the nearest half.
func (p Projection) EyeAt(pt Vec2) int {
	if !p.vrSplit {
		return EyeLeft
	}
	if pt.X < p.viewport.X+p.viewport.Width/2 {
		return EyeLeft
	}
	return EyeRight
}

func (p Projection) eye(i int) *eyeState {
	if i < 0 || i >= p.eyeCount {
		i = EyeLeft
	}
	return &p.eyes[i]
}

// ScreenLocationFromVector projects a world direction onto the screen. It
// returns false when the direction is zero or points behind the camera. In
// VR split mode the location in the left eye is returned; see
// ScreenLocationInEye and ScreenLocationsFromVector for the others.
//
// A true result may still lie outside the viewport; check it with
// Rect.Contains when only visible points matter.
func (p Projection) ScreenLocationFromVector(v mgl64.Vec3) (Vec2, bool) {
	return p.ScreenLocationInEye(EyeLeft, v)
}

// ScreenLocationInEye projects a world direction through one eye.
func (p Projection) ScreenLocationInEye(eye int, v mgl64.Vec3) (Vec2, bool) {
	if eye < 0 || eye >= p.eyeCount {
		return Vec2{}, false
	}
	if !finiteVec3(v) || v.Len() == 0 {
		return Vec2{}, false
	}
	e := &p.eyes[eye]
	c := e.inverse.Rotate(v.Normalize())
	if c[2] <= 0 {
		return Vec2{}, false
	}

	ndcX := c[0] / c[2] / e.tanH
	ndcY := c[1] / c[2] / e.tanV
	vp := e.viewport
	return Vec2{
		X: vp.X + (ndcX+1)/2*vp.Width,
		Y: vp.Y + (1-ndcY)/2*vp.Height,
	}, true
}

// ScreenLocationsFromVector projects a world direction through every eye.
// The slice has one entry per eye; ok[i] is false where the direction is
// behind that eye.
func (p Projection) ScreenLocationsFromVector(v mgl64.Vec3) (points []Vec2, ok []bool) {
	points = make([]Vec2, p.eyeCount)
	ok = make([]bool, p.eyeCount)
	for i := 0; i < p.eyeCount; i++ {
		points[i], ok[i] = p.ScreenLocationInEye(i, v)
	}
	return points, ok
}

// VectorFromScreenLocation returns the unit world direction seen through a
// screen pixel, using the eye that contains it. A non-finite point maps to
// the look vector.
func (p Projection) VectorFromScreenLocation(pt Vec2) mgl64.Vec3 {
	if !pt.finite() {
		return p.LookVector()
	}
	return p.vectorInEye(p.EyeAt(pt), pt)
}

// ImagePixelAtScreenLocation returns the panorama pixel seen through a
// screen point. With img nil it returns normalized (u, v) in [0, 1]
// instead, so callers must know whether an image is loaded.
func (p Projection) ImagePixelAtScreenLocation(pt Vec2, img *ImageSize) Vec2 {
	uv := EquirectangularUV(p.VectorFromScreenLocation(pt))
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return uv
	}
	return Vec2{X: uv.X * float64(img.Width), Y: uv.Y * float64(img.Height)}
}

// EquirectangularUV maps a world direction to normalized panorama
// coordinates: u grows with azimuth from 0 at -π to 1 at π, v grows
// downward from 0 at the zenith to 1 at the nadir.
func EquirectangularUV(ray mgl64.Vec3) Vec2 {
	if !finiteVec3(ray) || ray.Len() == 0 {
		return Vec2{X: 0.5, Y: 0.5}
	}
	n := ray.Normalize()
	return Vec2{
		X: 0.5 + math.Atan2(n[0], n[2])/(2*math.Pi),
		Y: 0.5 - math.Asin(clamp(n[1], -1, 1))/math.Pi,
	}
}

// ViewMatrix returns the world-to-eye matrix for an eye in OpenGL
// conventions (eye looks down -Z).
func (p Projection) ViewMatrix(eye int) mgl64.Mat4 {
	return flipZ.Mul4(p.eye(eye).inverse.Mat4())
}

// ProjectionMatrix returns the perspective matrix for an eye.
func (p Projection) ProjectionMatrix(eye int) mgl64.Mat4 {
	e := p.eye(eye)
	return mgl64.Perspective(p.VerticalFieldOfView(), e.viewport.Width/e.viewport.Height, nearPlane, farPlane)
}

// ViewProjectionMatrix returns ProjectionMatrix * ViewMatrix for an eye.
func (p Projection) ViewProjectionMatrix(eye int) mgl64.Mat4 {
	return p.ProjectionMatrix(eye).Mul4(p.ViewMatrix(eye))
}

// VisibleCorners returns the world directions through the four corners of
// an eye viewport, clockwise from the top-left.
func (p Projection) VisibleCorners(eye int) [4]mgl64.Vec3 {
	vp := p.eye(eye).viewport
	return [4]mgl64.Vec3{
		p.vectorInEye(eye, Vec2{vp.X, vp.Y}),
		p.vectorInEye(eye, Vec2{vp.X + vp.Width, vp.Y}),
		p.vectorInEye(eye, Vec2{vp.X + vp.Width, vp.Y + vp.Height}),
		p.vectorInEye(eye, Vec2{vp.X, vp.Y + vp.Height}),
	}
}

// vectorInEye is VectorFromScreenLocation without the eye lookup, so points
// on the shared VR edge resolve against the requested eye.
func (p Projection) vectorInEye(eye int, pt Vec2) mgl64.Vec3 {
	e := p.eye(eye)
	vp := e.viewport
	ndcX := 2*(pt.X-vp.X)/vp.Width - 1
	ndcY := 1 - 2*(pt.Y-vp.Y)/vp.Height
	c := mgl64.Vec3{ndcX * e.tanH, ndcY * e.tanV, 1}.Normalize()
	return e.rotation.Rotate(c).Normalize()
}
