package panorama

// syntheticTouchEvent represents a single injected touch event in screen
// coordinates.
type syntheticTouchEvent struct {
	kind EventType
	id   int
	pos  Vec2
}

// Synthetic pointer ids start here so they never collide with host ids.
const syntheticTouchBase = 1 << 20

// injectFrame queues one frame worth of events. Caller must hold v.mu.
func (v *View) injectFrame(events ...syntheticTouchEvent) {
	v.injectQueue = append(v.injectQueue, events)
}

// InjectTouchBegan queues a pointer going down. The event is consumed on
// the next Update.
func (v *View) InjectTouchBegan(id int, x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.injectFrame(syntheticTouchEvent{kind: EventTouchBegan, id: id, pos: Vec2{x, y}})
}

// InjectTouchMoved queues a pointer move.
func (v *View) InjectTouchMoved(id int, x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.injectFrame(syntheticTouchEvent{kind: EventTouchMoved, id: id, pos: Vec2{x, y}})
}

// InjectTouchEnded queues a pointer lifting.
func (v *View) InjectTouchEnded(id int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.injectFrame(syntheticTouchEvent{kind: EventTouchEnded, id: id})
}

// InjectTap queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (v *View) InjectTap(x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	pos := Vec2{x, y}
	v.injectFrame(syntheticTouchEvent{kind: EventTouchBegan, id: syntheticTouchBase, pos: pos})
	v.injectFrame(syntheticTouchEvent{kind: EventTouchEnded, id: syntheticTouchBase, pos: pos})
}

// InjectDrag queues a full single-pointer drag: press at from, linearly
// interpolated moves, and release at to. The sequence consumes frames
// frames; the minimum is 2.
func (v *View) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	id := syntheticTouchBase
	v.injectFrame(syntheticTouchEvent{kind: EventTouchBegan, id: id, pos: Vec2{fromX, fromY}})
	steps := frames - 2
	for i := 1; i <= steps+1; i++ {
		t := float64(i) / float64(steps+1)
		pos := Vec2{fromX + (toX-fromX)*t, fromY + (toY-fromY)*t}
		if i == steps+1 {
			// the last move lands on the target together with the release
			v.injectFrame(
				syntheticTouchEvent{kind: EventTouchMoved, id: id, pos: pos},
				syntheticTouchEvent{kind: EventTouchEnded, id: id, pos: pos},
			)
			break
		}
		v.injectFrame(syntheticTouchEvent{kind: EventTouchMoved, id: id, pos: pos})
	}
}

// InjectPinch queues a two-pointer pinch centred on (cx, cy). The pointers
// sit on a horizontal line and their distance goes from fromDist to toDist
// over frames frames; the minimum is 3.
func (v *View) InjectPinch(cx, cy, fromDist, toDist float64, frames int) {
	if frames < 3 {
		frames = 3
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	a, b := syntheticTouchBase+1, syntheticTouchBase+2
	at := func(d float64) (Vec2, Vec2) {
		return Vec2{cx - d/2, cy}, Vec2{cx + d/2, cy}
	}
	pa, pb := at(fromDist)
	v.injectFrame(
		syntheticTouchEvent{kind: EventTouchBegan, id: a, pos: pa},
		syntheticTouchEvent{kind: EventTouchBegan, id: b, pos: pb},
	)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		d := fromDist + (toDist-fromDist)*float64(i)/float64(steps)
		pa, pb = at(d)
		v.injectFrame(
			syntheticTouchEvent{kind: EventTouchMoved, id: a, pos: pa},
			syntheticTouchEvent{kind: EventTouchMoved, id: b, pos: pb},
		)
	}
	v.injectFrame(
		syntheticTouchEvent{kind: EventTouchEnded, id: b, pos: pb},
		syntheticTouchEvent{kind: EventTouchEnded, id: a, pos: pa},
	)
}

// PendingInjections returns the number of queued synthetic frames.
func (v *View) PendingInjections() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.injectQueue)
}

// processInjectedInput pops one frame from the inject queue and feeds it
// through the same path as host touches. Caller must hold v.mu.
func (v *View) processInjectedInput() bool {
	if len(v.injectQueue) == 0 {
		return false
	}
	frame := v.injectQueue[0]
	copy(v.injectQueue, v.injectQueue[1:])
	v.injectQueue[len(v.injectQueue)-1] = nil
	v.injectQueue = v.injectQueue[:len(v.injectQueue)-1]

	for _, evt := range frame {
		switch evt.kind {
		case EventTouchBegan:
			v.touchBeganLocked(evt.id, evt.pos)
		case EventTouchMoved:
			v.touchMovedLocked(evt.id, evt.pos)
		case EventTouchEnded:
			v.touchEndedLocked(EventTouchEnded, evt.id)
		case EventTouchCancelled:
			v.touchEndedLocked(EventTouchCancelled, evt.id)
		}
	}
	return true
}
