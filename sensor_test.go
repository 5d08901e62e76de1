package panorama

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// fakeSource is a MotionSource driven by the test.
type fakeSource struct {
	mu        sync.Mutex
	available bool
	startErr  error
	deliver   func(AttitudeSample)
	starts    int
	stops     int
}

func (f *fakeSource) Available() bool { return f.available }

func (f *fakeSource) Start(deliver func(AttitudeSample)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.deliver = deliver
	f.starts++
	return nil
}

func (f *fakeSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeSource) send(q mgl64.Quat, frame ReferenceFrame) {
	f.mu.Lock()
	d := f.deliver
	f.mu.Unlock()
	d(AttitudeSample{Attitude: q, Frame: frame})
}

func trackingView(t *testing.T) (*View, *fakeSource) {
	t.Helper()
	v := NewView(1000, 500)
	src := &fakeSource{available: true}
	v.SetMotionSource(src)
	v.SetOrientToDevice(true)
	if v.SensorState() != SensorEnabled {
		t.Fatal("sensor not enabled")
	}
	return v, src
}

func TestDeviceToRenderFrames(t *testing.T) {
	tests := []struct {
		name     string
		sample   AttitudeSample
		wantLook mgl64.Vec3
		wantUp   mgl64.Vec3
	}{
		{
			"render identity",
			AttitudeSample{Attitude: mgl64.QuatIdent(), Frame: FrameRender},
			mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 1, 0},
		},
		{
			"device flat screen up",
			AttitudeSample{Attitude: mgl64.QuatIdent(), Frame: FrameZVertical},
			mgl64.Vec3{0, -1, 0}, mgl64.Vec3{0, 0, 1},
		},
		{
			"device upright",
			AttitudeSample{Attitude: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0}), Frame: FrameZVertical},
			mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 1, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := DeviceToRender(tt.sample)
			if !ok {
				t.Fatal("DeviceToRender rejected a valid sample")
			}
			o := Orientation{rotation: q}
			if !vecApprox(o.LookVector(), tt.wantLook, 1e-9) {
				t.Errorf("look = %v, want %v", o.LookVector(), tt.wantLook)
			}
			if !vecApprox(o.UpVector(), tt.wantUp, 1e-9) {
				t.Errorf("up = %v, want %v", o.UpVector(), tt.wantUp)
			}
		})
	}
}

func TestDeviceToRenderRejectsMalformed(t *testing.T) {
	bad := []AttitudeSample{
		{Attitude: mgl64.Quat{}},
		{Attitude: mgl64.Quat{W: math.NaN()}},
		{Attitude: mgl64.QuatIdent(), Frame: ReferenceFrame(9)},
	}
	for _, s := range bad {
		if _, ok := DeviceToRender(s); ok {
			t.Errorf("DeviceToRender(%+v) ok = true", s)
		}
	}
}

func TestSensorUnavailable(t *testing.T) {
	v := NewView(100, 100)
	v.SetOrientToDevice(true)
	if !v.OrientToDevice() {
		t.Error("OrientToDevice flag not recorded")
	}
	if v.SensorState() != SensorDisabled {
		t.Error("sensor enabled without a source")
	}

	v.SetMotionSource(&fakeSource{available: false})
	if v.SensorState() != SensorDisabled {
		t.Error("sensor enabled with an unavailable source")
	}

	var a sensorAdapter
	if err := a.enable(nil); !errors.Is(err, ErrSensorUnavailable) {
		t.Errorf("enable(nil) err = %v", err)
	}
	if err := a.enable(&fakeSource{available: true, startErr: errors.New("boom")}); err == nil {
		t.Error("start error swallowed")
	}
	if a.State() != SensorDisabled {
		t.Error("adapter enabled after failed start")
	}
}

func TestSensorFullCalibration(t *testing.T) {
	v := NewView(1000, 500)
	src := &fakeSource{available: true}
	v.SetMotionSource(src)
	v.SetOrientToDevice(true)
	v.OrientToAzimuthAltitude(0.5, 0.2)

	src.send(mgl64.QuatRotate(0.4, mgl64.Vec3{1, 0, 0}), FrameRender)
	v.Update(0)
	if !approxEqual(v.LookAzimuth(), 0.5, 1e-9) || !approxEqual(v.LookAltitude(), 0.2, 1e-9) {
		t.Errorf("first sample moved the view: az/alt = %v/%v", v.LookAzimuth(), v.LookAltitude())
	}
}

func TestSensorFullCalibrationFollowsDevice(t *testing.T) {
	v := NewView(1000, 500)
	src := &fakeSource{available: true}
	v.SetMotionSource(src)
	v.SetOrientToDevice(true)
	v.OrientToAzimuthAltitude(0.5, 0)

	src.send(mgl64.QuatRotate(1.3, mgl64.Vec3{0, 1, 0}), FrameRender)
	v.Update(0)
	src.send(mgl64.QuatRotate(1.6, mgl64.Vec3{0, 1, 0}), FrameRender)
	v.Update(0)
	if !approxEqual(v.LookAzimuth(), 0.8, 1e-9) || !approxEqual(v.LookAltitude(), 0, 1e-9) {
		t.Errorf("az/alt = %v/%v, want 0.8/0", v.LookAzimuth(), v.LookAltitude())
	}
	if v.SensorStats().Applied != 2 {
		t.Errorf("Applied = %d, want 2", v.SensorStats().Applied)
	}
}

func TestSensorEnableKeepsLookVector(t *testing.T) {
	v := NewView(1000, 500)
	src := &fakeSource{available: true}
	v.SetMotionSource(src)
	v.OrientToAzimuthAltitude(0.5, 0.4)
	before := v.LookVector()

	v.SetOrientToDevice(true)
	src.send(mgl64.QuatIdent(), FrameRender)
	v.Update(0)
	if got := v.LookVector(); !got.ApproxEqualThreshold(before, 1e-9) {
		t.Errorf("look = %v after enable, want %v", got, before)
	}

	// toggling again with the device in another pose
	v.SetOrientToDevice(false)
	v.SetOrientToDevice(true)
	src.send(mgl64.QuatRotate(0.7, mgl64.Vec3{1, 0, 0}).Mul(mgl64.QuatRotate(-1.2, mgl64.Vec3{0, 1, 0})), FrameZVertical)
	v.Update(0)
	if got := v.LookVector(); !got.ApproxEqualThreshold(before, 1e-9) {
		t.Errorf("look = %v after re-enable, want %v", got, before)
	}
}

func TestSensorHeadingCalibration(t *testing.T) {
	v, src := trackingView(t)
	v.SetCalibrationMode(CalibrateHeading)
	v.OrientToAzimuthAltitude(0.5, 0.2)

	src.send(mgl64.QuatRotate(-1, mgl64.Vec3{0, 1, 0}), FrameRender)
	v.Update(0)
	if !approxEqual(v.LookAzimuth(), 0.5, 1e-9) {
		t.Errorf("azimuth = %v, want heading kept", v.LookAzimuth())
	}
	if !approxEqual(v.LookAltitude(), 0, 1e-9) {
		t.Errorf("altitude = %v, want level with gravity", v.LookAltitude())
	}

	src.send(mgl64.QuatRotate(-0.8, mgl64.Vec3{0, 1, 0}), FrameRender)
	v.Update(0)
	if !approxEqual(v.LookAzimuth(), 0.7, 1e-9) {
		t.Errorf("azimuth = %v, want 0.7", v.LookAzimuth())
	}
}

func TestSensorOnlyAppliedInUpdate(t *testing.T) {
	v, src := trackingView(t)
	src.send(mgl64.QuatIdent(), FrameRender)
	src.send(mgl64.QuatRotate(0.4, mgl64.Vec3{0, 1, 0}), FrameRender)
	if v.SensorStats().Applied != 0 {
		t.Error("sample applied before Update")
	}
	v.Update(0)
	// only the latest sample is kept
	if v.SensorStats().Applied != 1 {
		t.Errorf("Applied = %d, want 1", v.SensorStats().Applied)
	}
	v.Update(0)
	if v.SensorStats().Applied != 1 {
		t.Error("stale sample applied twice")
	}
}

func TestSensorDropsSamplesAfterRestart(t *testing.T) {
	v, src := trackingView(t)
	src.mu.Lock()
	old := src.deliver
	src.mu.Unlock()

	v.SetOrientToDevice(false)
	if src.stops != 1 {
		t.Errorf("stops = %d, want 1", src.stops)
	}
	v.SetOrientToDevice(true)
	if src.starts != 2 {
		t.Errorf("starts = %d, want 2", src.starts)
	}

	old(AttitudeSample{Attitude: mgl64.QuatRotate(1, mgl64.Vec3{0, 1, 0})})
	v.Update(0)
	if v.SensorStats().Applied != 0 {
		t.Error("sample from the old subscription was applied")
	}
	if v.LookAzimuth() != 0 {
		t.Errorf("azimuth = %v, want 0", v.LookAzimuth())
	}
}

func TestSensorSkipsMalformed(t *testing.T) {
	v, src := trackingView(t)
	src.send(mgl64.Quat{W: math.NaN()}, FrameRender)
	v.Update(0)
	if s := v.SensorStats(); s.Skipped != 1 || s.Applied != 0 {
		t.Errorf("stats = %+v, want 1 skipped", s)
	}
	if v.Rotation() != mgl64.QuatIdent() {
		t.Error("malformed sample changed the rotation")
	}
}

func TestSensorTouchPanAdjustsHeading(t *testing.T) {
	v, src := trackingView(t)
	src.send(mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0}), FrameRender)
	v.Update(0)
	altBefore := v.LookAltitude()

	// horizontal and vertical drag
	v.TouchBegan(1, Vec2{500, 250})
	v.TouchMoved(1, Vec2{600, 200})
	v.TouchEnded(1)
	dAz := 100.0 / 1000 * 2 * math.Atan(math.Tan(math.Pi/6)*2)

	src.send(mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0}), FrameRender)
	v.Update(0)
	if !approxEqual(v.LookAzimuth(), dAz, 1e-9) {
		t.Errorf("azimuth = %v, want %v kept after sample", v.LookAzimuth(), dAz)
	}
	if !approxEqual(v.LookAltitude(), altBefore, 1e-9) {
		t.Errorf("altitude = %v, want %v", v.LookAltitude(), altBefore)
	}
}

func TestSensorEvents(t *testing.T) {
	v, src := trackingView(t)
	var got []OrientationSource
	v.OnOrientationChange(func(e ViewEvent) { got = append(got, e.Source) })
	src.send(mgl64.QuatIdent(), FrameRender)
	v.Update(0)
	if len(got) != 1 || got[0] != SourceSensor {
		t.Errorf("events = %v, want one SourceSensor", got)
	}
}

func TestSensorCloseStopsSource(t *testing.T) {
	v, src := trackingView(t)
	if err := v.Close(); err != nil {
		t.Fatal(err)
	}
	if src.stops != 1 || v.SensorState() != SensorDisabled {
		t.Errorf("stops = %d, state = %v", src.stops, v.SensorState())
	}
}

func TestSensorSwitchSource(t *testing.T) {
	v, first := trackingView(t)
	second := &fakeSource{available: true}
	v.SetMotionSource(second)
	if first.stops != 1 || second.starts != 1 {
		t.Errorf("first stops = %d, second starts = %d", first.stops, second.starts)
	}
}
