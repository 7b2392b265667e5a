package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
)

// fakeInput reports the listed keys as held and pressed.
type fakeInput struct {
	keys    map[core.KeyCode]bool
	buttons map[core.Button]bool
	x, y    int32
}

func holding(keys ...core.KeyCode) *fakeInput {
	in := &fakeInput{keys: map[core.KeyCode]bool{}, buttons: map[core.Button]bool{}}
	for _, k := range keys {
		in.keys[k] = true
	}
	return in
}

func (f *fakeInput) IsKeyDown(key core.KeyCode) bool { return f.keys[key] }
func (f *fakeInput) IsKeyPressed(key core.KeyCode) bool { return f.keys[key] }
func (f *fakeInput) IsButtonDown(button core.Button) bool { return f.buttons[button] }
func (f *fakeInput) GetMousePosition() (int32, int32) { return f.x, f.y }

const tolerance = 1e-5

func newTransformEngine() *TransformEngine {
	return NewTransformEngine(config.Default().Transform)
}

func TestTransformTranslation(t *testing.T) {
	tests := []struct {
		name     string
		key      core.KeyCode
		expected math.Vec3
	}{
		{"left moves +x", core.KEY_LEFT, math.NewVec3(0.05, 0, 0)},
		{"right moves -x", core.KEY_RIGHT, math.NewVec3(-0.05, 0, 0)},
		{"up moves -z", core.KEY_UP, math.NewVec3(0, 0, -0.05)},
		{"down moves +z", core.KEY_DOWN, math.NewVec3(0, 0, 0.05)},
		{"shift moves +y", core.KEY_SHIFT, math.NewVec3(0, 0.05, 0)},
		{"ctrl moves -y", core.KEY_CONTROL, math.NewVec3(0, -0.05, 0)},
	}
	te := newTransformEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := te.Apply(math.NewMat4Identity(), holding(tt.key), true)
			assert.True(t, world.Translation().Compare(tt.expected, tolerance), "got %v", world.Translation())
		})
	}
}

func TestTransformTranslationIsWorldSpace(t *testing.T) {
	te := newTransformEngine()
	// A quarter turn around z must not redirect the translation.
	world := math.NewMat4EulerZ(math.K_HALF_PI)
	world = te.Apply(world, holding(core.KEY_LEFT), true)
	assert.True(t, world.Translation().Compare(math.NewVec3(0.05, 0, 0), tolerance))
}

func TestTransformRotation(t *testing.T) {
	tests := []struct {
		name     string
		key      core.KeyCode
		expected math.Mat4
	}{
		{"left rotates -z", core.KEY_LEFT, math.NewMat4EulerZ(-0.05)},
		{"right rotates +z", core.KEY_RIGHT, math.NewMat4EulerZ(0.05)},
		{"up rotates -x", core.KEY_UP, math.NewMat4EulerX(-0.05)},
		{"down rotates +x", core.KEY_DOWN, math.NewMat4EulerX(0.05)},
		{"shift rotates -y", core.KEY_SHIFT, math.NewMat4EulerY(-0.05)},
		{"ctrl rotates +y", core.KEY_CONTROL, math.NewMat4EulerY(0.05)},
	}
	te := newTransformEngine()
	start := math.NewMat4Translation(math.NewVec3(1, 2, 3))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := te.Apply(start, holding(tt.key), false)
			assert.True(t, world.Compare(tt.expected.Mul(start), tolerance))
			// Local rotations keep the object where it is.
			assert.True(t, world.Translation().Compare(math.NewVec3(1, 2, 3), tolerance))
		})
	}
}

func TestTransformScaleInBothModes(t *testing.T) {
	te := newTransformEngine()
	start := math.NewMat4Translation(math.NewVec3(1, 0, 0))
	for _, translate := range []bool{true, false} {
		up := te.Apply(start, holding(core.KEY_X), translate)
		assert.InDelta(t, 1.01, up.Data[0], tolerance)
		assert.InDelta(t, 1.01, up.Data[10], tolerance)
		assert.True(t, up.Translation().Compare(math.NewVec3(1, 0, 0), tolerance))

		down := te.Apply(start, holding(core.KEY_Z), translate)
		assert.InDelta(t, 0.99, down.Data[5], tolerance)
	}
}

func TestTransformNoKeysIsIdentity(t *testing.T) {
	te := newTransformEngine()
	start := math.NewMat4EulerY(0.3).Mul(math.NewMat4Translation(math.NewVec3(4, 5, 6)))
	assert.Equal(t, start, te.Apply(start, holding(), true))
	assert.Equal(t, start, te.Apply(start, holding(), false))
}

func TestTransformModeSelectsKeyMeaning(t *testing.T) {
	te := newTransformEngine()
	rotated := te.Apply(math.NewMat4Identity(), holding(core.KEY_LEFT), false)
	assert.True(t, rotated.Translation().Compare(math.NewVec3Zero(), tolerance))
	assert.True(t, rotated.Compare(math.NewMat4EulerZ(-0.05), tolerance))

	translated := te.Apply(math.NewMat4Identity(), holding(core.KEY_LEFT), true)
	assert.InDelta(t, 1, translated.Data[0], tolerance)
}

func TestEditorStateToggles(t *testing.T) {
	s := NewEditorState()
	assert.False(t, s.QuadView)
	assert.True(t, s.ChangeTranslation)
	assert.Equal(t, "translate", s.TransformMode())

	assert.True(t, s.ToggleQuadView())
	assert.False(t, s.ToggleTransformMode())
	assert.Equal(t, "rotate", s.TransformMode())
	assert.False(t, s.ToggleQuadView())
}
