package panorama

// dragAngles converts a screen-space drag into azimuth and altitude deltas.
// A drag across the full width of an eye turns the camera by that eye's
// horizontal field of view, whatever the zoom level. Screen Y grows
// downward, so dragging up (negative dy) raises the look vector.
func dragAngles(p Projection, at, delta Vec2) (dAz, dAlt float64) {
	eye := p.EyeAt(at)
	vp := p.eye(eye).viewport
	dAz = delta.X / vp.Width * p.HorizontalFieldOfView(eye)
	dAlt = -delta.Y / vp.Height * p.VerticalFieldOfView()
	return dAz, dAlt
}

// panTouch applies a primary-pointer drag to the orientation. Caller must
// hold v.mu.
//
// While motion tracking is live the drag yaw is folded into the sensor
// heading offset so the next sample keeps it, and the pitch is dropped.
func (v *View) panTouch(t Touch, delta Vec2) {
	if !v.config.TouchToPan || v.touches.Count() != 1 {
		return
	}
	if primary, ok := v.touches.Primary(); !ok || primary.ID != t.ID {
		return
	}

	dAz, dAlt := dragAngles(v.projectionLocked(), t.Position, delta)
	if v.sensor.State() == SensorEnabled {
		v.sensor.adjustHeading(dAz)
		dAlt = 0
	}
	if dAz == 0 && dAlt == 0 {
		return
	}
	if v.orientation.ApplyYawPitch(dAz, dAlt) {
		v.queueOrientationChange(SourceTouch)
	}
}
