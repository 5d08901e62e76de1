package ecs

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/panorama"
)

// ViewEventType is the Donburi event type for panorama view events.
// Subscribe to it in your ECS systems to receive touch, pinch, orientation
// and field-of-view events.
var ViewEventType = events.NewEventType[panorama.ViewEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// View events are published to ViewEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) panorama.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event panorama.ViewEvent) {
	ViewEventType.Publish(s.world, event)
}

// Look is the view state mirrored into the world by TrackLook.
type Look struct {
	Vector      mgl64.Vec3
	Azimuth     float64
	Altitude    float64
	FieldOfView float64
	Touches     int
}

// LookComponent holds a Look.
var LookComponent = donburi.NewComponentType[Look]()

// TrackLook creates an entity with a LookComponent and keeps it current
// from view events each time ViewEventType is processed. The entity starts
// from the view's state at the time of the call.
func TrackLook(world donburi.World, v *panorama.View) donburi.Entity {
	e := world.Create(LookComponent)
	LookComponent.SetValue(world.Entry(e), Look{
		Vector:      v.LookVector(),
		Azimuth:     v.LookAzimuth(),
		Altitude:    v.LookAltitude(),
		FieldOfView: v.FieldOfView(),
		Touches:     v.NumberOfTouches(),
	})

	ViewEventType.Subscribe(world, func(w donburi.World, ev panorama.ViewEvent) {
		entry := w.Entry(e)
		if !entry.Valid() {
			return
		}
		look := LookComponent.Get(entry)
		switch ev.Type {
		case panorama.EventOrientationChange:
			look.Vector, look.Azimuth, look.Altitude = ev.LookVector, ev.Azimuth, ev.Altitude
		case panorama.EventFieldOfViewChange, panorama.EventPinch:
			look.FieldOfView = ev.FieldOfView
		case panorama.EventTouchBegan, panorama.EventTouchMoved,
			panorama.EventTouchEnded, panorama.EventTouchCancelled:
			look.Touches = ev.Count
		}
	})
	return e
}
