package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

func newLayout(width, height uint32) *ViewLayout {
	cfg := config.Default()
	return NewViewLayout(width, height, cfg.Projection, cfg.Viewports, cfg.Indicators)
}

func TestViewLayoutViewports(t *testing.T) {
	l := newLayout(1280, 720)
	assert.Equal(t, metadata.Viewport{Width: 1280, Height: 720, MaxDepth: 1}, l.Single)

	expected := []struct {
		name     string
		viewport metadata.Viewport
	}{
		{"perspective", metadata.Viewport{X: 640, Y: 360, Width: 640, Height: 360, MaxDepth: 1}},
		{"front", metadata.Viewport{X: 0, Y: 0, Width: 640, Height: 360, MaxDepth: 1}},
		{"side", metadata.Viewport{X: 0, Y: 360, Width: 640, Height: 360, MaxDepth: 1}},
		{"top", metadata.Viewport{X: 640, Y: 0, Width: 640, Height: 360, MaxDepth: 1}},
	}
	for slot, e := range expected {
		assert.Equal(t, e.name, l.Quad[slot].Name)
		assert.Equal(t, uint32(slot), l.Quad[slot].Slot)
		assert.Equal(t, e.viewport, l.Quad[slot].Viewport, e.name)
	}
	assert.True(t, l.Quad[0].FollowsCamera)
	assert.False(t, l.Quad[1].FollowsCamera)
}

func TestViewLayoutOddSizeUsesIntegerHalves(t *testing.T) {
	l := newLayout(1281, 721)
	vp := l.Quad[0].Viewport
	assert.Equal(t, float32(640), vp.X)
	assert.Equal(t, float32(360), vp.Y)
	assert.Equal(t, float32(640), vp.Width)
	assert.Equal(t, float32(360), vp.Height)
}

func TestViewLayoutProjections(t *testing.T) {
	l := newLayout(1280, 720)

	persp := l.Quad[0].Projection
	assert.InDelta(t, 2.41421, persp.Data[5], 1e-4)
	assert.InDelta(t, 2.41421/(1280.0/720.0), persp.Data[0], 1e-4)
	assert.Equal(t, float32(1), persp.Data[11])

	// 1280/2/75 = 8 and 720/2/75 = 4.
	for slot := 1; slot < config.QuadSlots; slot++ {
		ortho := l.Quad[slot].Projection
		assert.InDelta(t, 2.0/8.0, ortho.Data[0], 1e-6)
		assert.InDelta(t, 2.0/4.0, ortho.Data[5], 1e-6)
		assert.Equal(t, float32(1), ortho.Data[15])
	}

	// 1280/3/75 = 5 and 720/3/75 = 3.
	require.Len(t, l.Indicators, 2)
	for _, ind := range l.Indicators {
		assert.InDelta(t, 2.0/5.0, ind.Projection.Data[0], 1e-6)
		assert.InDelta(t, 2.0/3.0, ind.Projection.Data[5], 1e-6)
		assert.Equal(t, l.Single, ind.Viewport)
		assert.Equal(t, uint32(0), ind.Slot)
	}
}

func TestViewLayoutTinyWindowStaysFinite(t *testing.T) {
	l := newLayout(100, 100)
	assert.Equal(t, float32(2), l.Quad[1].Projection.Data[0])
	assert.Equal(t, float32(2), l.Indicators[0].Projection.Data[5])
}

func TestViewLayoutStaticViews(t *testing.T) {
	l := newLayout(1280, 720)

	// The origin sits straight ahead of every fixed eye.
	distances := map[string]float32{"front": 10, "side": 10, "top": 10}
	for slot := 1; slot < config.QuadSlots; slot++ {
		setup := l.Quad[slot]
		origin := math.NewVec3Zero().Transform(setup.View)
		assert.InDelta(t, 0, origin.X, 1e-4, setup.Name)
		assert.InDelta(t, 0, origin.Y, 1e-4, setup.Name)
		assert.InDelta(t, distances[setup.Name], origin.Z, 1e-2, setup.Name)
	}

	// Top view: looking down with -z up on screen puts +x on the left.
	top := l.Quad[3].View
	right := math.NewVec3(1, 0, 0).Transform(top)
	assert.InDelta(t, -1, right.X, 1e-4)
	up := math.NewVec3(0, 0, -1).Transform(top)
	assert.InDelta(t, 1, up.Y, 1e-4)
}

func TestViewSetupViewMatrix(t *testing.T) {
	l := newLayout(1280, 720)
	camera := math.NewMat4Translation(math.NewVec3(1, 2, 3))
	assert.Equal(t, camera, l.Quad[0].ViewMatrix(camera))
	assert.Equal(t, l.Quad[1].View, l.Quad[1].ViewMatrix(camera))
}
