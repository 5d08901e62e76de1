package panorama

import "github.com/go-gl/mathgl/mgl64"

// EntityStore is the interface for optional ECS integration.
// When set on a View, every view event is forwarded to it.
type EntityStore interface {
	EmitEvent(event ViewEvent)
}

// ViewEvent carries the data of one view event. Fields not relevant to the
// event type are zero.
type ViewEvent struct {
	Type EventType

	// Touch fields (EventTouch*), and the pinch center for EventPinch.
	TouchID  int
	Position Vec2
	Delta    Vec2
	Count    int // live pointers after the event

	// Orientation fields (EventOrientationChange)
	Source     OrientationSource
	LookVector mgl64.Vec3
	Azimuth    float64
	Altitude   float64

	// Pinch fields (EventPinch)
	Scale      float64
	ScaleDelta float64

	// FieldOfView is the current field of view in degrees
	// (EventPinch, EventFieldOfViewChange).
	FieldOfView float64
}

type eventHandler struct {
	id uint32
	fn func(ViewEvent)
}

type handlerRegistry struct {
	byType map[EventType][]eventHandler
	nextID uint32
}

// CallbackHandle allows removing a registered view callback.
type CallbackHandle struct {
	id    uint32
	view  *View
	event EventType
}

// Remove unregisters the callback. Removing twice is a no-op.
func (h CallbackHandle) Remove() {
	if h.view == nil {
		return
	}
	h.view.mu.Lock()
	defer h.view.mu.Unlock()
	hs := h.view.handlers.byType[h.event]
	for i := range hs {
		if hs[i].id == h.id {
			h.view.handlers.byType[h.event] = append(hs[:i:i], hs[i+1:]...)
			return
		}
	}
}

// On registers a callback for one event type. Callbacks run on the
// goroutine that caused the event, after the view has released its lock,
// so they may call back into the view.
func (v *View) On(event EventType, fn func(ViewEvent)) CallbackHandle {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.handlers.byType == nil {
		v.handlers.byType = make(map[EventType][]eventHandler)
	}
	v.handlers.nextID++
	id := v.handlers.nextID
	v.handlers.byType[event] = append(v.handlers.byType[event], eventHandler{id: id, fn: fn})
	return CallbackHandle{id: id, view: v, event: event}
}

// OnOrientationChange registers a callback for look direction changes.
func (v *View) OnOrientationChange(fn func(ViewEvent)) CallbackHandle {
	return v.On(EventOrientationChange, fn)
}

// OnFieldOfViewChange registers a callback for field of view changes.
func (v *View) OnFieldOfViewChange(fn func(ViewEvent)) CallbackHandle {
	return v.On(EventFieldOfViewChange, fn)
}

// OnPinch registers a callback for pinch gestures.
func (v *View) OnPinch(fn func(ViewEvent)) CallbackHandle {
	return v.On(EventPinch, fn)
}

// OnTouch registers one callback for every touch event type.
// The returned handles remove the individual registrations.
func (v *View) OnTouch(fn func(ViewEvent)) []CallbackHandle {
	return []CallbackHandle{
		v.On(EventTouchBegan, fn),
		v.On(EventTouchMoved, fn),
		v.On(EventTouchEnded, fn),
		v.On(EventTouchCancelled, fn),
	}
}

// SetEntityStore sets the optional ECS bridge.
func (v *View) SetEntityStore(store EntityStore) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.store = store
}

// queue records an event for delivery by flush. Caller must hold v.mu.
func (v *View) queue(e ViewEvent) {
	v.pending = append(v.pending, e)
}

// queueOrientationChange records the current look direction. Caller must
// hold v.mu.
func (v *View) queueOrientationChange(src OrientationSource) {
	v.queue(ViewEvent{
		Type:       EventOrientationChange,
		Source:     src,
		LookVector: v.orientation.LookVector(),
		Azimuth:    v.orientation.Azimuth(),
		Altitude:   v.orientation.Altitude(),
	})
}

// flush delivers queued events. Must be called without holding v.mu.
func (v *View) flush() {
	v.mu.Lock()
	if len(v.pending) == 0 {
		v.mu.Unlock()
		return
	}
	events := v.pending
	v.pending = nil
	store := v.store
	var calls [][]eventHandler
	for _, e := range events {
		hs := v.handlers.byType[e.Type]
		calls = append(calls, append([]eventHandler(nil), hs...))
	}
	v.mu.Unlock()

	for i, e := range events {
		for _, h := range calls[i] {
			h.fn(e)
		}
		if store != nil {
			store.EmitEvent(e)
		}
	}
}
