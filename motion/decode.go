package motion

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/phanxgames/panorama"
)

// ErrMalformedSample is returned for payloads that carry no usable attitude.
var ErrMalformedSample = errors.New("motion: malformed sample")

// Wire is the JSON form of one attitude reading. Exactly one of the
// attitude encodings must be present:
//
//	{"quat": [w, x, y, z], "frame": "zvertical"}
//	{"alpha": 30, "beta": 80, "gamma": 0}   // W3C DeviceOrientation, degrees
//	{"roll": 0, "pitch": 80, "yaw": 30}     // degrees, same axes as alpha/beta/gamma
//
// "t" is an optional Unix timestamp in seconds. Euler encodings are always
// in the Z-vertical frame; quaternions default to it.
type Wire struct {
	Time  float64   `json:"t,omitempty"`
	Frame string    `json:"frame,omitempty"`
	Quat  []float64 `json:"quat,omitempty"`
	Alpha *float64  `json:"alpha,omitempty"`
	Beta  *float64  `json:"beta,omitempty"`
	Gamma *float64  `json:"gamma,omitempty"`
	Roll  *float64  `json:"roll,omitempty"`
	Pitch *float64  `json:"pitch,omitempty"`
	Yaw   *float64  `json:"yaw,omitempty"`
}

// Decode parses one JSON sample.
func Decode(data []byte) (panorama.AttitudeSample, error) {
	var w Wire
	if err := json.Unmarshal(data, &w); err != nil {
		return panorama.AttitudeSample{}, fmt.Errorf("%w: %v", ErrMalformedSample, err)
	}
	return w.Sample(time.Now)
}

// Sample converts the wire form. now supplies the timestamp when the wire
// carries none.
func (w Wire) Sample(now func() time.Time) (panorama.AttitudeSample, error) {
	s := panorama.AttitudeSample{Frame: panorama.FrameZVertical}
	if w.Time > 0 {
		sec, frac := math.Modf(w.Time)
		s.Timestamp = time.Unix(int64(sec), int64(frac*1e9))
	} else {
		s.Timestamp = now()
	}

	switch {
	case len(w.Quat) > 0:
		if len(w.Quat) != 4 {
			return s, fmt.Errorf("%w: quat needs 4 components, got %d", ErrMalformedSample, len(w.Quat))
		}
		frame, err := parseFrame(w.Frame)
		if err != nil {
			return s, err
		}
		s.Frame = frame
		s.Attitude = mgl64.Quat{W: w.Quat[0], V: mgl64.Vec3{w.Quat[1], w.Quat[2], w.Quat[3]}}
	case w.Alpha != nil || w.Beta != nil || w.Gamma != nil:
		s.Attitude = DeviceOrientation(deref(w.Alpha), deref(w.Beta), deref(w.Gamma))
	case w.Roll != nil || w.Pitch != nil || w.Yaw != nil:
		s.Attitude = DeviceOrientation(deref(w.Yaw), deref(w.Pitch), deref(w.Roll))
	default:
		return s, fmt.Errorf("%w: no attitude", ErrMalformedSample)
	}

	if _, ok := panorama.DeviceToRender(s); !ok {
		return s, fmt.Errorf("%w: degenerate attitude", ErrMalformedSample)
	}
	return s, nil
}

func parseFrame(name string) (panorama.ReferenceFrame, error) {
	switch strings.ToLower(name) {
	case "", "zvertical", "z-vertical":
		return panorama.FrameZVertical, nil
	case "render":
		return panorama.FrameRender, nil
	}
	return 0, fmt.Errorf("%w: unknown frame %q", ErrMalformedSample, name)
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

var (
	axisX = mgl64.Vec3{1, 0, 0}
	axisY = mgl64.Vec3{0, 1, 0}
	axisZ = mgl64.Vec3{0, 0, 1}
)

// DeviceOrientation builds a Z-vertical attitude from W3C DeviceOrientation
// angles in degrees: alpha about Z, then beta about the rotated X, then
// gamma about the rotated Y.
func DeviceOrientation(alpha, beta, gamma float64) mgl64.Quat {
	qz := mgl64.QuatRotate(mgl64.DegToRad(alpha), axisZ)
	qx := mgl64.QuatRotate(mgl64.DegToRad(beta), axisX)
	qy := mgl64.QuatRotate(mgl64.DegToRad(gamma), axisY)
	return qz.Mul(qx).Mul(qy).Normalize()
}

// Heading builds a render-frame attitude looking level at the given
// heading in degrees. Azimuth follows the heading.
func Heading(degrees float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(degrees), axisY)
}

// Encode renders a sample in the quaternion wire form.
func Encode(s panorama.AttitudeSample) ([]byte, error) {
	frame := "zvertical"
	if s.Frame == panorama.FrameRender {
		frame = "render"
	}
	w := Wire{
		Frame: frame,
		Quat:  []float64{s.Attitude.W, s.Attitude.V[0], s.Attitude.V[1], s.Attitude.V[2]},
	}
	if !s.Timestamp.IsZero() {
		w.Time = float64(s.Timestamp.UnixNano()) / 1e9
	}
	return json.Marshal(w)
}
