package panorama

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrSensorUnavailable is returned when motion tracking is requested without
// a usable MotionSource.
var ErrSensorUnavailable = errors.New("panorama: motion source unavailable")

// ReferenceFrame names the convention an attitude sample is expressed in.
type ReferenceFrame uint8

const (
	// FrameRender samples already map camera-local axes to world axes
	// (camera forward +Z, world up +Y).
	FrameRender ReferenceFrame = iota
	// FrameZVertical samples follow the usual device convention: the
	// reference frame has Z up and X/Y horizontal, the device frame has X to
	// the right of the screen, Y to its top and Z out of the screen.
	FrameZVertical
)

// AttitudeSample is one device attitude reading.
type AttitudeSample struct {
	Timestamp time.Time
	Attitude  mgl64.Quat
	Frame     ReferenceFrame
}

// MotionSource delivers device attitude samples. Start may deliver from any
// goroutine; the view hands each sample over to its owner goroutine.
type MotionSource interface {
	// Available reports whether the source can produce samples at all.
	Available() bool
	// Start begins delivering samples to deliver until Stop is called.
	Start(deliver func(AttitudeSample)) error
	// Stop ends delivery. Samples may still arrive briefly afterwards.
	Stop() error
}

// SensorState is the motion tracking state.
type SensorState uint8

const (
	SensorDisabled SensorState = iota
	SensorEnabled
)

// CalibrationMode selects how the first sample after enabling is aligned
// with the current view.
type CalibrationMode uint8

const (
	// CalibrateFull keeps the whole current orientation, so the panorama does
	// not move at all when tracking starts. Device motion is then applied
	// relative to that pose.
	CalibrateFull CalibrationMode = iota
	// CalibrateHeading keeps only the current azimuth; pitch and roll snap to
	// the device relative to gravity on the first sample.
	CalibrateHeading
)

// SensorStats counts processed samples.
type SensorStats struct {
	Applied uint64
	Skipped uint64
}

// zVerticalToRender maps the Z-up reference frame onto the Y-up render
// frame, and cameraToDevice maps camera axes onto device axes (the camera
// looks into the screen, along device -Z). Both are reflections; their
// product with a device rotation is a rotation again.
var (
	zVerticalToRender = mgl64.Mat3{1, 0, 0, 0, 0, 1, 0, 1, 0}
	cameraToDevice    = mgl64.Mat3{1, 0, 0, 0, 1, 0, 0, 0, -1}
)

// DeviceToRender converts a sample attitude into a camera-to-world rotation.
// It reports false for malformed samples.
func DeviceToRender(s AttitudeSample) (mgl64.Quat, bool) {
	if !validQuat(s.Attitude) {
		return mgl64.Quat{}, false
	}
	q := s.Attitude.Normalize()
	switch s.Frame {
	case FrameRender:
		return q, true
	case FrameZVertical:
		m := zVerticalToRender.Mul3(q.Mat4().Mat3()).Mul3(cameraToDevice)
		r := mgl64.Mat4ToQuat(m.Mat4())
		if !validQuat(r) {
			return mgl64.Quat{}, false
		}
		return r.Normalize(), true
	default:
		return mgl64.Quat{}, false
	}
}

// sampleSlot is a single-producer/single-consumer latest-value mailbox.
// Offers tagged with an old generation are dropped, so samples from a
// stopped subscription never land after a restart.
type sampleSlot struct {
	mu     sync.Mutex
	gen    uint64
	sample AttitudeSample
	fresh  bool
}

func (s *sampleSlot) offer(gen uint64, sample AttitudeSample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.sample = sample
	s.fresh = true
}

func (s *sampleSlot) take() (AttitudeSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fresh {
		return AttitudeSample{}, false
	}
	s.fresh = false
	return s.sample, true
}

// advance bumps the generation and drops any pending sample.
func (s *sampleSlot) advance() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.fresh = false
	return s.gen
}

// sensorAdapter folds device attitude samples into an Orientation.
type sensorAdapter struct {
	source      MotionSource
	state       SensorState
	mode        CalibrationMode
	slot        sampleSlot
	calibrated  bool
	calibration mgl64.Quat
	stats       SensorStats
}

func (a *sensorAdapter) State() SensorState {
	return a.state
}

// enable subscribes to src. Calibration happens on the first sample.
func (a *sensorAdapter) enable(src MotionSource) error {
	if a.state == SensorEnabled {
		if a.source == src {
			return nil
		}
		_ = a.disable()
	}
	if src == nil || !src.Available() {
		return ErrSensorUnavailable
	}

	gen := a.slot.advance()
	a.calibrated = false
	if err := src.Start(func(s AttitudeSample) { a.slot.offer(gen, s) }); err != nil {
		a.slot.advance()
		return fmt.Errorf("panorama: start motion source: %w", err)
	}
	a.source = src
	a.state = SensorEnabled
	return nil
}

// disable stops the subscription. Late samples are discarded.
func (a *sensorAdapter) disable() error {
	if a.state == SensorDisabled {
		return nil
	}
	a.slot.advance()
	a.state = SensorDisabled
	a.calibrated = false
	src := a.source
	a.source = nil
	if err := src.Stop(); err != nil {
		return fmt.Errorf("panorama: stop motion source: %w", err)
	}
	return nil
}

// apply takes the latest pending sample, if any, and writes it into o.
// This is the only place sensor data reaches the orientation.
func (a *sensorAdapter) apply(o *Orientation) bool {
	if a.state != SensorEnabled {
		return false
	}
	sample, ok := a.slot.take()
	if !ok {
		return false
	}
	device, ok := DeviceToRender(sample)
	if !ok {
		a.stats.Skipped++
		return false
	}

	if !a.calibrated {
		a.calibration = a.calibrate(o, device)
		a.calibrated = true
	}
	if !o.SetFromAbsolute(a.calibration.Mul(device)) {
		a.stats.Skipped++
		return false
	}
	a.stats.Applied++
	return true
}

func (a *sensorAdapter) calibrate(o *Orientation, device mgl64.Quat) mgl64.Quat {
	if a.mode == CalibrateFull {
		return o.Rotation().Mul(device.Inverse()).Normalize()
	}
	d := Orientation{rotation: device}
	return mgl64.QuatRotate(o.Azimuth()-d.Azimuth(), worldUp)
}

// adjustHeading turns the calibration about the world up axis so samples
// after a touch pan keep the panned heading.
func (a *sensorAdapter) adjustHeading(dAz float64) {
	if !a.calibrated || !finite(dAz) {
		return
	}
	a.calibration = mgl64.QuatRotate(dAz, worldUp).Mul(a.calibration).Normalize()
}
