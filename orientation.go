package panorama

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// poleEpsilon is the horizontal look length below which the look vector
	// is treated as pointing straight up or down.
	poleEpsilon = 1e-9

	// maxPanAltitude keeps incremental pitch just short of the poles so a
	// drag can never carry the look vector over the top.
	maxPanAltitude = math.Pi/2 - 1e-6
)

// Orientation is the camera rotation. The zero value is not usable; create
// one with NewOrientation.
//
// The rotation is the only stored state. The look vector, azimuth and
// altitude are all derived from it on demand.
type Orientation struct {
	rotation mgl64.Quat
}

// NewOrientation returns an orientation looking along +Z with +Y up.
func NewOrientation() Orientation {
	return Orientation{rotation: mgl64.QuatIdent()}
}

// Rotation returns the unit quaternion mapping camera-local axes to world.
func (o *Orientation) Rotation() mgl64.Quat {
	return o.rotation
}

// LookVector returns the world-space direction the camera faces.
func (o *Orientation) LookVector() mgl64.Vec3 {
	return o.rotation.Rotate(localForward)
}

// UpVector returns the world-space direction of the top of the screen.
func (o *Orientation) UpVector() mgl64.Vec3 {
	return o.rotation.Rotate(localUp)
}

// RightVector returns the world-space direction of the right screen edge.
func (o *Orientation) RightVector() mgl64.Vec3 {
	return o.rotation.Rotate(localRight)
}

// Azimuth returns the horizontal look angle in (-π, π], measured from +Z
// towards +X.
//
// When the look vector is vertical the horizontal component vanishes. The
// heading is then read from the camera's up vector, which still carries the
// azimuth the camera had before it reached the pole.
func (o *Orientation) Azimuth() float64 {
	look := o.LookVector()
	if math.Hypot(look[0], look[2]) < poleEpsilon {
		up := o.UpVector()
		s := -math.Copysign(1, look[1])
		return wrapAngle(math.Atan2(s*up[0], s*up[2]))
	}
	return wrapAngle(math.Atan2(look[0], look[2]))
}

// Altitude returns the vertical look angle in [-π/2, π/2].
func (o *Orientation) Altitude() float64 {
	return math.Asin(clamp(o.LookVector()[1], -1, 1))
}

// ApplyIncrementalRotation composes delta in camera-local space and
// renormalizes. Zero-length or non-finite deltas are ignored.
func (o *Orientation) ApplyIncrementalRotation(delta mgl64.Quat) bool {
	if !validQuat(delta) {
		return false
	}
	o.rotation = o.rotation.Mul(delta.Normalize()).Normalize()
	return true
}

// ApplyYawPitch turns the camera by dAz about the world up axis and tilts it
// by dAlt about the horizontal axis perpendicular to the look vector (the
// camera's right axis when it is level). The tilt is limited so the look
// vector never passes over a pole.
func (o *Orientation) ApplyYawPitch(dAz, dAlt float64) bool {
	if !finite(dAz) || !finite(dAlt) {
		return false
	}

	alt := o.Altitude()
	target := alt + dAlt
	if math.Abs(target) > maxPanAltitude {
		switch {
		case math.Abs(alt) < maxPanAltitude:
			target = math.Copysign(maxPanAltitude, target)
		case math.Abs(target) > math.Abs(alt):
			// Already past the limit (set programmatically or by a sensor):
			// allow tilting back towards the horizon only.
			target = alt
		}
	}
	dPitch := target - alt

	q := o.rotation
	if dPitch != 0 {
		look := o.LookVector()
		axis := look.Cross(worldUp)
		if axis.Len() < poleEpsilon {
			axis = o.RightVector().Mul(-1)
		}
		q = mgl64.QuatRotate(dPitch, axis.Normalize()).Mul(q)
	}
	if dAz != 0 {
		q = mgl64.QuatRotate(dAz, worldUp).Mul(q)
	}
	o.rotation = q.Normalize()
	return true
}

// SetFromAbsolute replaces the rotation, typically with a device attitude
// already mapped into the render frame. Zero-length or non-finite
// quaternions are rejected.
func (o *Orientation) SetFromAbsolute(q mgl64.Quat) bool {
	if !validQuat(q) {
		return false
	}
	o.rotation = q.Normalize()
	return true
}

// OrientToVector points the camera along v with no roll relative to the
// world up axis. A zero or non-finite v leaves the orientation unchanged.
// At the exact poles the azimuth is undefined and the current one is kept.
func (o *Orientation) OrientToVector(v mgl64.Vec3) bool {
	if !finiteVec3(v) || v.Len() == 0 {
		return false
	}
	n := v.Normalize()

	az := o.Azimuth()
	if math.Hypot(n[0], n[2]) >= poleEpsilon {
		az = math.Atan2(n[0], n[2])
	}
	o.orientYawPitch(az, math.Asin(clamp(n[1], -1, 1)))
	return true
}

// OrientToAzimuthAltitude points the camera at the given spherical angles.
// Altitude is clamped to [-π/2, π/2]; at the poles the given azimuth is kept
// as the heading.
func (o *Orientation) OrientToAzimuthAltitude(azimuth, altitude float64) bool {
	if !finite(azimuth) || !finite(altitude) {
		return false
	}
	o.orientYawPitch(wrapAngle(azimuth), clamp(altitude, -math.Pi/2, math.Pi/2))
	return true
}

// orientYawPitch builds the roll-free rotation Yaw(az) * Pitch(alt).
// Pitching up is a negative rotation about +X in this frame.
func (o *Orientation) orientYawPitch(az, alt float64) {
	yaw := mgl64.QuatRotate(az, worldUp)
	pitch := mgl64.QuatRotate(-alt, localRight)
	o.rotation = yaw.Mul(pitch).Normalize()
}

// SphericalVector returns the unit world vector for an azimuth (longitude)
// and altitude (latitude), both in radians.
func SphericalVector(azimuth, altitude float64) mgl64.Vec3 {
	sinAz, cosAz := math.Sincos(azimuth)
	sinAlt, cosAlt := math.Sincos(altitude)
	return mgl64.Vec3{sinAz * cosAlt, sinAlt, cosAz * cosAlt}
}

func validQuat(q mgl64.Quat) bool {
	if !finite(q.W) || !finiteVec3(q.V) {
		return false
	}
	return q.Len() > 1e-12
}
