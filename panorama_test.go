package panorama

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func vecApprox(a, b mgl64.Vec3, eps float64) bool {
	return a.ApproxEqualThreshold(b, eps)
}

// --- Rect ---

func TestRectContains(t *testing.T) {
	r := Rect{10, 20, 100, 50}
	tests := []struct {
		name   string
		x, y   float64
		expect bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"outside left", 9, 40, false},
		{"outside below", 50, 71, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.expect {
				t.Errorf("Rect%v.Contains(%v, %v) = %v, want %v", r, tt.x, tt.y, got, tt.expect)
			}
		})
	}
}

func TestRectIntersects(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	if !a.Intersects(Rect{10, 0, 5, 5}) {
		t.Error("adjacent rects should intersect")
	}
	if a.Intersects(Rect{11, 0, 5, 5}) {
		t.Error("separate rects should not intersect")
	}
}

func TestRectCenter(t *testing.T) {
	c := Rect{100, 50, 200, 100}.Center()
	if c != (Vec2{200, 100}) {
		t.Errorf("Center = %v, want {200 100}", c)
	}
}

// --- helpers ---

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi, math.Pi},
		{2*math.Pi + 0.5, 0.5},
		{-2*math.Pi - 0.5, -0.5},
	}
	for _, tt := range tests {
		if got := wrapAngle(tt.in); !approxEqual(got, tt.want, 1e-12) {
			t.Errorf("wrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestVec2Finite(t *testing.T) {
	if !(Vec2{1, 2}).finite() {
		t.Error("finite vector reported non-finite")
	}
	if (Vec2{math.NaN(), 0}).finite() || (Vec2{0, math.Inf(1)}).finite() {
		t.Error("non-finite vector reported finite")
	}
}
