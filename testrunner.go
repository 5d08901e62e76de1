package panorama

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action   string  `json:"action"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	FromX    float64 `json:"fromX,omitempty"`
	FromY    float64 `json:"fromY,omitempty"`
	ToX      float64 `json:"toX,omitempty"`
	ToY      float64 `json:"toY,omitempty"`
	From     float64 `json:"from,omitempty"`
	To       float64 `json:"to,omitempty"`
	Azimuth  float64 `json:"azimuth,omitempty"`
	Altitude float64 `json:"altitude,omitempty"`
	Degrees  float64 `json:"degrees,omitempty"`
	Duration float32 `json:"duration,omitempty"`
	Frames   int     `json:"frames,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input and view changes across frames for
// automated testing. Attach to a View via SetTestRunner.
//
// Actions: "tap", "drag", "pinch", "wait", "orient" (degrees), "fov" and
// "zoom" (animated over duration seconds).
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	err       error
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached to a View via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "tap", "drag", "pinch", "wait", "orient", "fov", "zoom":
		default:
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the view. The runner advances one
// step per Update, before injected input is processed.
func (v *View) SetTestRunner(runner *TestRunner) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.testRunner = runner
}

// TestRunner returns the attached runner, or nil.
func (v *View) TestRunner() *TestRunner {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.testRunner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Err returns the first error a step produced, if any.
func (r *TestRunner) Err() error {
	return r.err
}

// step advances the test runner by one frame. Called from View.Update
// without the view lock held.
func (r *TestRunner) step(v *View) {
	if r.done {
		return
	}
	// Wait for pending injections and zoom animations to drain.
	if v.PendingInjections() > 0 || v.Zooming() {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	var err error
	switch st.Action {
	case "tap":
		v.InjectTap(st.X, st.Y)
	case "drag":
		v.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "pinch":
		v.InjectPinch(st.X, st.Y, st.From, st.To, st.Frames)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "orient":
		v.OrientToAzimuthAltitude(mgl64.DegToRad(st.Azimuth), mgl64.DegToRad(st.Altitude))
	case "fov":
		err = v.SetFieldOfView(st.Degrees)
	case "zoom":
		err = v.ZoomTo(st.Degrees, st.Duration, nil)
	}
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("test script step %d (%s): %w", r.cursor-1, st.Action, err)
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && v.PendingInjections() == 0 && !v.Zooming() {
		r.done = true
	}
}
