package editor

import (
	"fmt"
	"unicode"

	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/systems"
)

// spawnBinding is one edge-triggered key that adds an object to the scene.
// Bindings without a model spawn the primitive template called name.
type spawnBinding struct {
	key   core.KeyCode
	name  string
	model string
	world math.Mat4
}

// primitiveWorld places a primitive at half size, lifted by y.
func primitiveWorld(y float32) math.Mat4 {
	return math.NewMat4UniformScale(0.5).Mul(math.NewMat4Translation(math.NewVec3(0, y, 0)))
}

// reservedKeys are the keys the editor uses for anything but spawning.
var reservedKeys = map[core.KeyCode]bool{
	core.KEY_V: true, core.KEY_R: true, core.KEY_X: true, core.KEY_Z: true,
	core.KEY_J: true, core.KEY_L: true, core.KEY_I: true, core.KEY_K: true,
	core.KEY_Y: true, core.KEY_H: true,
}

func primitiveBindings() []spawnBinding {
	return []spawnBinding{
		{key: core.KEY_Q, name: systems.PrimitiveQuad.String(), world: primitiveWorld(0.5)},
		{key: core.KEY_B, name: systems.PrimitiveBox.String(), world: primitiveWorld(0.5)},
		{key: core.KEY_C, name: systems.PrimitiveCylinder.String(), world: primitiveWorld(0.75)},
		{key: core.KEY_S, name: systems.PrimitiveSphere.String(), world: primitiveWorld(0.5)},
		{key: core.KEY_G, name: systems.PrimitiveGeosphere.String(), world: primitiveWorld(0.5)},
		{key: core.KEY_P, name: systems.PrimitiveGrid.String(), world: math.NewMat4Identity()},
	}
}

// keyFromString maps a single letter or digit to its key code.
func keyFromString(key string) (core.KeyCode, error) {
	if len(key) != 1 {
		return 0, fmt.Errorf("key %q must be a single character: %w", key, core.ErrInvalidConfig)
	}
	r := unicode.ToUpper(rune(key[0]))
	if !(r >= '0' && r <= '9') && !(r >= 'A' && r <= 'Z') {
		return 0, fmt.Errorf("key %q must be a letter or a digit: %w", key, core.ErrInvalidConfig)
	}
	// Letters and digits share their ASCII values with the key codes.
	return core.KeyCode(r), nil
}

/**
 * @brief Builds the spawn table: the primitive keys followed by the model
 * bindings. Model bindings on keys already in use are skipped with a warning.
 */
func buildBindings(models []config.ModelBinding) []spawnBinding {
	bindings := primitiveBindings()
	used := make(map[core.KeyCode]bool, len(bindings)+len(reservedKeys))
	for k := range reservedKeys {
		used[k] = true
	}
	for _, b := range bindings {
		used[b.key] = true
	}

	for _, m := range models {
		key, err := keyFromString(m.Key)
		if err != nil {
			core.LogWarn("skipping model binding for '%s': %s", m.File, err)
			continue
		}
		if used[key] {
			core.LogWarn("skipping model binding for '%s': key '%s' is already in use", m.File, m.Key)
			continue
		}
		used[key] = true
		bindings = append(bindings, spawnBinding{
			key:   key,
			name:  m.File,
			model: m.File,
			world: math.NewMat4Identity(),
		})
	}
	return bindings
}
