package panorama

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultViewConfiguration(t *testing.T) {
	c := DefaultViewConfiguration(800, 600)
	if c.FieldOfView() != DefaultFieldOfView {
		t.Errorf("FieldOfView = %v, want %v", c.FieldOfView(), DefaultFieldOfView)
	}
	if !c.TouchToPan || !c.PinchToZoom {
		t.Error("touch pan and pinch zoom should default on")
	}
	if c.VRMode || c.OrientToDevice || c.ShowTouches {
		t.Error("VR, motion tracking and overlay should default off")
	}
	if c.Viewport() != (Rect{0, 0, 800, 600}) {
		t.Errorf("Viewport = %v", c.Viewport())
	}
	if c.StereoSeparation() != 0 {
		t.Errorf("StereoSeparation = %v, want 0", c.StereoSeparation())
	}
}

func TestDefaultViewConfigurationInvalidSize(t *testing.T) {
	c := DefaultViewConfiguration(0, -5)
	if c.Viewport() != (Rect{0, 0, 1, 1}) {
		t.Errorf("Viewport = %v, want 1x1 fallback", c.Viewport())
	}
}

func TestSetFieldOfView(t *testing.T) {
	tests := []struct {
		name    string
		in      float64
		want    float64
		wantErr bool
	}{
		{"normal", 75, 75, false},
		{"clamped low", 0.5, MinFieldOfView, false},
		{"clamped high", 175, MaxFieldOfView, false},
		{"zero", 0, DefaultFieldOfView, true},
		{"negative", -10, DefaultFieldOfView, true},
		{"straight angle", 180, DefaultFieldOfView, true},
		{"NaN", math.NaN(), DefaultFieldOfView, true},
		{"Inf", math.Inf(1), DefaultFieldOfView, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultViewConfiguration(100, 100)
			err := c.SetFieldOfView(tt.in)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFieldOfView) {
				t.Errorf("err = %v, want ErrInvalidFieldOfView", err)
			}
			if c.FieldOfView() != tt.want {
				t.Errorf("FieldOfView = %v, want %v", c.FieldOfView(), tt.want)
			}
		})
	}
}

func TestSetViewport(t *testing.T) {
	c := DefaultViewConfiguration(100, 100)
	if err := c.SetViewport(Rect{10, 20, 300, 200}); err != nil {
		t.Fatal(err)
	}
	for _, r := range []Rect{{0, 0, 0, 10}, {0, 0, 10, -1}, {math.NaN(), 0, 10, 10}} {
		if err := c.SetViewport(r); !errors.Is(err, ErrInvalidViewport) {
			t.Errorf("SetViewport(%v) err = %v", r, err)
		}
	}
	if c.Viewport() != (Rect{10, 20, 300, 200}) {
		t.Errorf("Viewport = %v, rejected values leaked", c.Viewport())
	}
}

func TestSetStereoSeparation(t *testing.T) {
	c := DefaultViewConfiguration(100, 100)
	if err := c.SetStereoSeparation(0.05); err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{-0.1, 1, math.NaN()} {
		if err := c.SetStereoSeparation(v); !errors.Is(err, ErrInvalidStereoSeparation) {
			t.Errorf("SetStereoSeparation(%v) err = %v", v, err)
		}
	}
	if c.StereoSeparation() != 0.05 {
		t.Errorf("StereoSeparation = %v, want 0.05", c.StereoSeparation())
	}
}
