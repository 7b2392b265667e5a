package editor

import (
	"fmt"

	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer"
	"github.com/spaghettifunk/multiview/engine/renderer/components"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
	"github.com/spaghettifunk/multiview/engine/scene"
)

// ConstantWriter copies object constants into a mesh slot. *renderer.Renderer
// implements it.
type ConstantWriter interface {
	WriteConstants(mesh *metadata.Mesh, slot uint32, constants metadata.ObjectConstants) error
}

/**
 * @brief Fills the per-slot constants of every object and issues the draws
 * of the single and the quad layout.
 */
type Dispatcher struct {
	writer         ConstantWriter
	defaultColour  math.Vec4
	selectedColour math.Vec4

	/** @brief Objects drawn with the overview setups in quad view. They are not part of the scene. */
	Indicators []*scene.Object
}

func NewDispatcher(writer ConstantWriter, colours config.ColourConfig) *Dispatcher {
	return &Dispatcher{
		writer:         writer,
		defaultColour:  vec4(colours.Default),
		selectedColour: vec4(colours.Selected),
	}
}

/**
 * @brief Writes transpose(world * view * projection) and the object colour
 * into every quad slot of every object, then slot 0 of every indicator.
 * @param cameraView The orbit camera's view, used by camera-following setups.
 */
func (d *Dispatcher) UpdateConstants(sc *scene.Scene, layout *components.ViewLayout, cameraView math.Mat4) error {
	views := [config.QuadSlots]math.Mat4{}
	for i := range layout.Quad {
		views[i] = layout.Quad[i].ViewMatrix(cameraView).Mul(layout.Quad[i].Projection)
	}

	for _, obj := range sc.Objects() {
		colour := d.defaultColour
		if sc.IsSelected(obj) {
			colour = d.selectedColour
		}
		for slot := range layout.Quad {
			wvp := obj.World.Mul(views[slot])
			if err := d.writer.WriteConstants(obj.Mesh, uint32(slot), metadata.NewObjectConstants(wvp, colour)); err != nil {
				return fmt.Errorf("constants of '%s' slot %d: %w", obj.Name, slot, err)
			}
		}
	}

	for i, obj := range d.Indicators {
		if i >= len(layout.Indicators) {
			break
		}
		setup := &layout.Indicators[i]
		wvp := obj.World.Mul(setup.View).Mul(setup.Projection)
		if err := d.writer.WriteConstants(obj.Mesh, setup.Slot, metadata.NewObjectConstants(wvp, d.defaultColour)); err != nil {
			return fmt.Errorf("constants of indicator '%s': %w", obj.Name, err)
		}
	}
	return nil
}

/**
 * @brief Records the draws of one frame. The single layout draws every object
 * with slot 0 over the whole window. The quad layout draws the indicators over
 * the whole window first, then every object once per quadrant with that
 * quadrant's slot.
 */
func (d *Dispatcher) Draw(frame *renderer.Frame, sc *scene.Scene, layout *components.ViewLayout, quadView bool) error {
	if err := frame.SetViewport(layout.Single); err != nil {
		return err
	}

	if !quadView {
		return drawObjects(frame, sc.Objects(), 0)
	}

	if err := drawObjects(frame, d.Indicators, 0); err != nil {
		return err
	}
	for i := range layout.Quad {
		setup := &layout.Quad[i]
		if err := frame.SetViewport(setup.Viewport); err != nil {
			return err
		}
		if err := drawObjects(frame, sc.Objects(), setup.Slot); err != nil {
			return err
		}
	}
	return nil
}

func drawObjects(frame *renderer.Frame, objects []*scene.Object, slot uint32) error {
	for _, obj := range objects {
		if err := frame.Draw(obj.DrawCall(slot)); err != nil {
			return fmt.Errorf("draw '%s' slot %d: %w", obj.Name, slot, err)
		}
	}
	return nil
}

func vec4(c [4]float32) math.Vec4 {
	return math.NewVec4(c[0], c[1], c[2], c[3])
}
