package components

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/math"
)

const epsilon = 1e-4

func newCamera() *OrbitCamera {
	return NewOrbitCamera(config.Default().Camera)
}

func TestOrbitCameraInitialPosition(t *testing.T) {
	c := newCamera()
	assert.InDelta(t, math.K_PI/4, c.Theta, epsilon)
	assert.InDelta(t, 1.3, c.Phi, epsilon)
	assert.InDelta(t, 5.0, c.Radius, epsilon)

	pos := c.Position()
	assert.InDelta(t, 3.4067, pos.X, 1e-3)
	assert.InDelta(t, 1.3375, pos.Y, 1e-3)
	assert.InDelta(t, 3.4067, pos.Z, 1e-3)
	assert.InDelta(t, 5.0, pos.Length(), epsilon)
}

func TestOrbitCameraOrbit(t *testing.T) {
	c := newCamera()
	c.Orbit(4, -4)
	assert.InDelta(t, math.K_PI/4+math.DegToRad(1), c.Theta, epsilon)
	assert.InDelta(t, 1.3-math.DegToRad(1), c.Phi, epsilon)

	c.Orbit(0, 100000)
	assert.InDelta(t, math.K_PI-0.1, c.Phi, epsilon)
	c.Orbit(0, -100000)
	assert.InDelta(t, 0.1, c.Phi, epsilon)
}

func TestOrbitCameraZoom(t *testing.T) {
	tests := []struct {
		name     string
		dx, dy   float32
		expected float32
	}{
		{"right moves away", 40, 0, 7},
		{"up moves away", 0, -40, 7},
		{"left moves closer", -20, 0, 4},
		{"clamped far", 1000, 0, 15},
		{"clamped near", 0, 1000, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCamera()
			c.Zoom(tt.dx, tt.dy)
			assert.InDelta(t, tt.expected, c.Radius, epsilon)
		})
	}
}

func TestOrbitCameraViewLooksAtTarget(t *testing.T) {
	c := newCamera()
	view := c.GetView()

	eye := c.Position().Transform(view)
	assert.True(t, eye.Compare(math.NewVec3Zero(), epsilon), "eye maps to %v", eye)

	target := c.Target.Transform(view)
	assert.InDelta(t, 0, target.X, epsilon)
	assert.InDelta(t, 0, target.Y, epsilon)
	assert.InDelta(t, c.Radius, target.Z, epsilon)
}

func TestOrbitCameraTargetDoesNotMovePosition(t *testing.T) {
	c := newCamera()
	before := c.Position()
	oldView := c.GetView()

	c.MoveTarget(math.NewVec3(c.TargetStep(), 0, 0))
	assert.Equal(t, before, c.Position())
	assert.InDelta(t, 0.1, c.Target.X, epsilon)
	assert.False(t, oldView.Compare(c.GetView(), epsilon))

	c.Reset()
	assert.Equal(t, math.NewVec3Zero(), c.Target)
	assert.True(t, oldView.Compare(c.GetView(), epsilon))
}

func TestOrbitCameraViewIsCached(t *testing.T) {
	c := newCamera()
	first := c.GetView()
	c.MoveTarget(math.NewVec3Zero())
	assert.Equal(t, first, c.GetView())

	c.Orbit(10, 0)
	assert.NotEqual(t, first, c.GetView())
	assert.InDelta(t, 5.0, c.Position().Length(), epsilon)
	assert.InDelta(t, math32.Cos(c.Phi)*5, c.Position().Y, epsilon)
}
