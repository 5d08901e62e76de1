package ebitenview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phanxgames/panorama"
)

func TestPointerTrackerSync(t *testing.T) {
	v := panorama.NewView(400, 300)
	var kinds []panorama.EventType
	var ids []int
	for _, h := range v.OnTouch(func(e panorama.ViewEvent) {
		kinds = append(kinds, e.Type)
		ids = append(ids, e.TouchID)
	}) {
		defer h.Remove()
	}

	tr := newPointerTracker()
	tr.sync(v, map[int]panorama.Vec2{3: {X: 10, Y: 10}, mouseID: {X: 5, Y: 5}})
	assert.Equal(t, 2, v.NumberOfTouches())

	// Unchanged positions report nothing.
	tr.sync(v, map[int]panorama.Vec2{3: {X: 10, Y: 10}, mouseID: {X: 5, Y: 5}})
	tr.sync(v, map[int]panorama.Vec2{3: {X: 20, Y: 10}})
	assert.Equal(t, 1, v.NumberOfTouches())

	tr.cancel(v)
	assert.Equal(t, 0, v.NumberOfTouches())
	assert.Empty(t, tr.last)

	assert.Equal(t, []panorama.EventType{
		panorama.EventTouchBegan, panorama.EventTouchBegan,
		panorama.EventTouchEnded, panorama.EventTouchMoved,
		panorama.EventTouchCancelled,
	}, kinds)
	assert.Equal(t, []int{mouseID, 3, mouseID, 3, 3}, ids)
}

func TestPointerTrackerDragPans(t *testing.T) {
	v := panorama.NewView(400, 300)
	tr := newPointerTracker()
	tr.sync(v, map[int]panorama.Vec2{1: {X: 200, Y: 150}})
	tr.sync(v, map[int]panorama.Vec2{1: {X: 240, Y: 150}})
	tr.sync(v, map[int]panorama.Vec2{})
	assert.Greater(t, v.LookAzimuth(), 0.0)
	assert.Zero(t, v.NumberOfTouches())
}
