package panorama

// Touch is one live pointer in screen space.
type Touch struct {
	ID       int
	Position Vec2 // current position
	Previous Vec2 // position before the last move
	Start    Vec2 // position at TouchBegan
}

// Delta returns the movement of the last TouchMoved.
func (t Touch) Delta() Vec2 {
	return t.Position.Sub(t.Previous)
}

// TouchRegistry tracks live pointers in the order they went down. The first
// live pointer is the primary one and drives drag rotation; the second
// drives pinch zoom.
//
// Every entry is a live touch: ended or cancelled ids are removed at once.
type TouchRegistry struct {
	touches []Touch
}

func (r *TouchRegistry) index(id int) int {
	for i := range r.touches {
		if r.touches[i].ID == id {
			return i
		}
	}
	return -1
}

// Began registers a pointer. Beginning an id that is already live resets it
// in place and keeps its position in the order. Non-finite points are
// rejected.
func (r *TouchRegistry) Began(id int, p Vec2) bool {
	if !p.finite() {
		return false
	}
	t := Touch{ID: id, Position: p, Previous: p, Start: p}
	if i := r.index(id); i >= 0 {
		r.touches[i] = t
		return true
	}
	r.touches = append(r.touches, t)
	return true
}

// Moved updates a live pointer and returns its movement. Unknown ids and
// non-finite points are ignored.
func (r *TouchRegistry) Moved(id int, p Vec2) (Vec2, bool) {
	i := r.index(id)
	if i < 0 || !p.finite() {
		return Vec2{}, false
	}
	t := &r.touches[i]
	t.Previous = t.Position
	t.Position = p
	return t.Delta(), true
}

// Ended removes a pointer that lifted. It reports whether the id was live.
func (r *TouchRegistry) Ended(id int) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	copy(r.touches[i:], r.touches[i+1:])
	r.touches[len(r.touches)-1] = Touch{}
	r.touches = r.touches[:len(r.touches)-1]
	return true
}

// Cancelled removes a pointer the host cancelled. It behaves like Ended.
func (r *TouchRegistry) Cancelled(id int) bool {
	return r.Ended(id)
}

// Reset drops every pointer.
func (r *TouchRegistry) Reset() {
	r.touches = r.touches[:0]
}

// Count returns the number of live pointers.
func (r *TouchRegistry) Count() int {
	return len(r.touches)
}

// Get returns the live pointer with the given id.
func (r *TouchRegistry) Get(id int) (Touch, bool) {
	if i := r.index(id); i >= 0 {
		return r.touches[i], true
	}
	return Touch{}, false
}

// Primary returns the earliest live pointer.
func (r *TouchRegistry) Primary() (Touch, bool) {
	if len(r.touches) == 0 {
		return Touch{}, false
	}
	return r.touches[0], true
}

// Secondary returns the second-earliest live pointer.
func (r *TouchRegistry) Secondary() (Touch, bool) {
	if len(r.touches) < 2 {
		return Touch{}, false
	}
	return r.touches[1], true
}

// InRect reports whether any live pointer lies inside rect.
func (r *TouchRegistry) InRect(rect Rect) bool {
	for _, t := range r.touches {
		if rect.Contains(t.Position.X, t.Position.Y) {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the live pointers in registration order.
func (r *TouchRegistry) Snapshot() []Touch {
	out := make([]Touch, len(r.touches))
	copy(out, r.touches)
	return out
}
