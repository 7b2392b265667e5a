package renderer

import (
	"fmt"

	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

// Frame is the handle passed to DrawFrame callbacks. It is only valid for the
// duration of the callback.
type Frame struct {
	backend  RendererBackend
	active   bool
	viewport metadata.Viewport
}

func (f *Frame) SetViewport(viewport metadata.Viewport) error {
	if !f.active {
		return core.ErrNoFrameInProgress
	}
	f.viewport = viewport
	f.backend.SetViewport(viewport)
	return nil
}

// Viewport returns the viewport most recently set on this frame.
func (f *Frame) Viewport() metadata.Viewport {
	return f.viewport
}

/**
 * @brief Draws a mesh with the given constant slot. A zero IndexCount draws
 * the whole index buffer.
 */
func (f *Frame) Draw(call metadata.DrawCall) error {
	if !f.active {
		return core.ErrNoFrameInProgress
	}
	if call.Mesh == nil || call.Mesh.VertexBuffer == nil || call.Mesh.IndexBuffer == nil {
		return core.ErrInvalidBuffer
	}
	if call.Slot >= call.Mesh.SlotCount() {
		return fmt.Errorf("draw slot %d of %d: %w", call.Slot, call.Mesh.SlotCount(), core.ErrSlotOutOfRange)
	}
	if call.IndexCount == 0 {
		call.IndexCount = call.Mesh.IndexCount
	}
	return f.backend.DrawIndexed(&call)
}
