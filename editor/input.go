package editor

import "github.com/spaghettifunk/multiview/engine/core"

// Input is the part of the engine input state the editor reads.
// *core.InputState implements it.
type Input interface {
	// Level-triggered: true for as long as the key is held.
	IsKeyDown(key core.KeyCode) bool
	// Edge-triggered: true only on the frame the key went down.
	IsKeyPressed(key core.KeyCode) bool
	IsButtonDown(button core.Button) bool
	GetMousePosition() (int32, int32)
}
