package panorama

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TouchIntersection is where a live touch meets the panorama sphere.
type TouchIntersection struct {
	ID        int
	Screen    Vec2
	Vector    mgl64.Vec3
	Latitude  float64 // altitude of the ray in radians
	Longitude float64 // azimuth of the ray in radians
}

// OverlayIntersections returns the sphere intersection of every live touch
// in registration order. It is empty unless ShowTouches is on.
func (v *View) OverlayIntersections() []TouchIntersection {
	v.mu.RLock()
	if !v.config.ShowTouches || v.touches.Count() == 0 {
		v.mu.RUnlock()
		return nil
	}
	p := v.projectionLocked()
	touches := v.touches.Snapshot()
	v.mu.RUnlock()
	return p.Intersections(touches)
}

// Intersections casts a ray through each touch position using p, so the
// result matches a frame drawn from the same snapshot.
func (p Projection) Intersections(touches []Touch) []TouchIntersection {
	if len(touches) == 0 {
		return nil
	}
	out := make([]TouchIntersection, 0, len(touches))
	for _, t := range touches {
		ray := p.VectorFromScreenLocation(t.Position)
		out = append(out, TouchIntersection{
			ID:        t.ID,
			Screen:    t.Position,
			Vector:    ray,
			Latitude:  math.Asin(clamp(ray[1], -1, 1)),
			Longitude: math.Atan2(ray[0], ray[2]),
		})
	}
	return out
}

// LatitudeLine returns segments+1 unit vectors tracing the circle of
// constant altitude through the full azimuth range.
func LatitudeLine(altitude float64, segments int) []mgl64.Vec3 {
	if segments < 3 {
		segments = 3
	}
	pts := make([]mgl64.Vec3, segments+1)
	for i := range pts {
		az := -math.Pi + 2*math.Pi*float64(i)/float64(segments)
		pts[i] = SphericalVector(az, altitude)
	}
	return pts
}

// LongitudeLine returns segments+1 unit vectors tracing the half great
// circle of constant azimuth from the nadir to the zenith.
func LongitudeLine(azimuth float64, segments int) []mgl64.Vec3 {
	if segments < 2 {
		segments = 2
	}
	pts := make([]mgl64.Vec3, segments+1)
	for i := range pts {
		alt := -math.Pi/2 + math.Pi*float64(i)/float64(segments)
		pts[i] = SphericalVector(azimuth, alt)
	}
	return pts
}

// ProjectLine projects a polyline of world directions through one eye and
// splits it wherever a point falls behind the camera.
func (p Projection) ProjectLine(eye int, line []mgl64.Vec3) [][]Vec2 {
	var out [][]Vec2
	var cur []Vec2
	for _, d := range line {
		pt, ok := p.ScreenLocationInEye(eye, d)
		if !ok {
			if len(cur) > 1 {
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, pt)
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}
