package editor

import (
	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
)

/**
 * @brief Turns held keys into changes of the selected object's world matrix.
 * Translations are applied after the current world (in world space), scales
 * and rotations before it (in the object's local space).
 */
type TransformEngine struct {
	/** @brief Distance of one translation step and angle, in radians, of one rotation step. */
	Step float32
	/** @brief Uniform factor applied while X is held. */
	ScaleUp float32
	/** @brief Uniform factor applied while Z is held. */
	ScaleDown float32
}

func NewTransformEngine(cfg config.TransformConfig) *TransformEngine {
	return &TransformEngine{
		Step:      cfg.Step,
		ScaleUp:   cfg.ScaleUp,
		ScaleDown: cfg.ScaleDown,
	}
}

/**
 * @brief Applies one frame worth of transform keys to world.
 * @param world The selected object's current world matrix.
 * @param in The input state; every key is level-triggered.
 * @param changeTranslation Arrow/Shift/Ctrl translate when true, rotate when false.
 * @return The new world matrix.
 */
func (te *TransformEngine) Apply(world math.Mat4, in Input, changeTranslation bool) math.Mat4 {
	s := te.Step

	if changeTranslation {
		if in.IsKeyDown(core.KEY_LEFT) {
			world = world.Mul(math.NewMat4Translation(math.NewVec3(s, 0, 0)))
		}
		if in.IsKeyDown(core.KEY_RIGHT) {
			world = world.Mul(math.NewMat4Translation(math.NewVec3(-s, 0, 0)))
		}
		if in.IsKeyDown(core.KEY_UP) {
			world = world.Mul(math.NewMat4Translation(math.NewVec3(0, 0, -s)))
		}
		if in.IsKeyDown(core.KEY_DOWN) {
			world = world.Mul(math.NewMat4Translation(math.NewVec3(0, 0, s)))
		}
		if in.IsKeyDown(core.KEY_SHIFT) {
			world = world.Mul(math.NewMat4Translation(math.NewVec3(0, s, 0)))
		}
		if in.IsKeyDown(core.KEY_CONTROL) {
			world = world.Mul(math.NewMat4Translation(math.NewVec3(0, -s, 0)))
		}
	}

	// Scaling works in both modes.
	if in.IsKeyDown(core.KEY_X) {
		world = math.NewMat4UniformScale(te.ScaleUp).Mul(world)
	}
	if in.IsKeyDown(core.KEY_Z) {
		world = math.NewMat4UniformScale(te.ScaleDown).Mul(world)
	}

	if !changeTranslation {
		if in.IsKeyDown(core.KEY_LEFT) {
			world = math.NewMat4EulerZ(-s).Mul(world)
		}
		if in.IsKeyDown(core.KEY_RIGHT) {
			world = math.NewMat4EulerZ(s).Mul(world)
		}
		if in.IsKeyDown(core.KEY_UP) {
			world = math.NewMat4EulerX(-s).Mul(world)
		}
		if in.IsKeyDown(core.KEY_DOWN) {
			world = math.NewMat4EulerX(s).Mul(world)
		}
		if in.IsKeyDown(core.KEY_SHIFT) {
			world = math.NewMat4EulerY(-s).Mul(world)
		}
		if in.IsKeyDown(core.KEY_CONTROL) {
			world = math.NewMat4EulerY(s).Mul(world)
		}
	}
	return world
}
