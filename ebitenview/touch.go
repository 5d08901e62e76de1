package ebitenview

import (
	"maps"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/panorama"
)

// mouseID is the touch id the left mouse button is reported under.
const mouseID = -1

// pointerTracker turns per-frame pointer snapshots into the began, moved
// and ended calls the view expects.
type pointerTracker struct {
	last   map[int]panorama.Vec2
	ids    []ebiten.TouchID
	noMice bool
}

func newPointerTracker() *pointerTracker {
	return &pointerTracker{last: make(map[int]panorama.Vec2)}
}

// poll reads the current touches and the left mouse button from ebiten.
func (t *pointerTracker) poll() map[int]panorama.Vec2 {
	frame := make(map[int]panorama.Vec2)
	t.ids = ebiten.AppendTouchIDs(t.ids[:0])
	for _, id := range t.ids {
		x, y := ebiten.TouchPosition(id)
		frame[int(id)] = panorama.Vec2{X: float64(x), Y: float64(y)}
	}
	if !t.noMice && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		frame[mouseID] = panorama.Vec2{X: float64(x), Y: float64(y)}
	}
	return frame
}

// sync reports the difference between the last frame and this one to v.
// Ended pointers go first so a lifted finger never counts as a second
// touch of a new gesture; new pointers follow in id order.
func (t *pointerTracker) sync(v *panorama.View, frame map[int]panorama.Vec2) {
	for _, id := range slices.Sorted(maps.Keys(t.last)) {
		if _, ok := frame[id]; !ok {
			v.TouchEnded(id)
			delete(t.last, id)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(frame)) {
		pos := frame[id]
		prev, ok := t.last[id]
		switch {
		case !ok:
			v.TouchBegan(id, pos)
		case prev != pos:
			v.TouchMoved(id, pos)
		}
		t.last[id] = pos
	}
}

// cancel ends every tracked pointer, e.g. when the window loses focus.
func (t *pointerTracker) cancel(v *panorama.View) {
	for _, id := range slices.Sorted(maps.Keys(t.last)) {
		v.TouchCancelled(id)
	}
	clear(t.last)
}
