// Package panorama is the orientation and projection core of a 360°
// equirectangular panorama viewer.
//
// It keeps the camera orientation as a unit quaternion, folds touch drags,
// pinches and device motion samples into it, and maps between screen
// pixels, world directions and panorama pixels. Rendering is left to a
// driver; [github.com/phanxgames/panorama/ebitenview] draws a View with
// [Ebitengine].
//
// # Quick start
//
//	view := panorama.NewView(1280, 720)
//	_ = view.SetImageSize(4000, 2000)
//	view.OrientToAzimuthAltitude(0, 0)
//
//	// host input
//	view.TouchBegan(1, panorama.Vec2{X: 640, Y: 360})
//	view.TouchMoved(1, panorama.Vec2{X: 700, Y: 360})
//	view.TouchEnded(1)
//
//	// once per frame
//	view.Update(1.0 / 60)
//	p := view.Projection()
//	px := p.ImagePixelAtScreenLocation(panorama.Vec2{X: 640, Y: 360}, &panorama.ImageSize{Width: 4000, Height: 2000})
//
// # Frames
//
// World Y is up. The camera looks along +Z in its own frame with +X to the
// right of the screen and +Y up, so the identity orientation looks along
// world +Z. Azimuth is atan2(x, z) of the look vector in (-π, π]; altitude
// is asin(y) in [-π/2, π/2]. The field of view is vertical, in degrees.
//
// # Input
//
// The first live pointer drags the camera when TouchToPan is on; two
// pointers pinch and change the field of view when PinchToZoom is on.
// Device motion arrives through a [MotionSource]; samples may be delivered
// from any goroutine and are applied in [View.Update]. While tracking is
// live a drag turns the heading and pitch follows the device.
//
// # Events
//
// Register callbacks with [View.On] and friends, or forward every event to
// an ECS with [View.SetEntityStore] (see panorama/ecs for a [Donburi]
// adapter). Callbacks run after the view has released its lock.
//
// # Testing
//
// [View.InjectDrag], [View.InjectTap] and [View.InjectPinch] queue
// synthetic touches consumed one frame per Update. [LoadTestScript] runs a
// JSON sequence of them.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package panorama
