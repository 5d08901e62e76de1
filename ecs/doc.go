// Package ecs provides ECS adapters for panorama views.
//
// [NewDonburiStore] bridges view events (touches, pinches, orientation and
// field-of-view changes) into a [Donburi] world as typed events. Subscribe
// to [ViewEventType] in your ECS systems to receive them, or call
// [TrackLook] to keep an entity's [Look] component in step with the view.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	view.SetEntityStore(store)
//	cam := ecs.TrackLook(world, view)
//	...
//	ecs.ViewEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
