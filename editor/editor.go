// Package editor is the multiview scene editor: it owns the scene, the
// orbit camera and the view layout, and maps input to edits every frame.
package editor

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/multiview/engine"
	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer"
	"github.com/spaghettifunk/multiview/engine/renderer/components"
	"github.com/spaghettifunk/multiview/engine/scene"
	"github.com/spaghettifunk/multiview/engine/systems"
)

type Editor struct {
	*engine.Game

	State EditorState

	scene      *scene.Scene
	camera     *components.OrbitCamera
	layout     *components.ViewLayout
	transform  *TransformEngine
	dispatcher *Dispatcher
	bindings   []spawnBinding

	lastMouseX int32
	lastMouseY int32
}

func New(cfg *config.Config) *Editor {
	e := &Editor{
		Game: &engine.Game{
			ApplicationConfig: engine.NewApplicationConfig(cfg.Application),
			Config:            cfg,
		},
		State: NewEditorState(),
	}
	e.Game.State = &e.State

	e.FnInitialize = e.Initialize
	e.FnUpdate = e.Update
	e.FnRender = e.Render
	e.FnOnResize = e.OnResize
	e.FnShutdown = e.Shutdown

	return e
}

/**
 * @brief Builds the startup scene: one grid object, selected, plus the two
 * indicator lines that only the quad view draws.
 */
func (e *Editor) Initialize() error {
	core.LogDebug("Editor Initialize fn....")

	if e.SystemManager == nil || e.Renderer == nil || e.Input == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers: %w", core.ErrBackendNotReady)
	}

	cfg := e.Config
	e.camera = components.NewOrbitCamera(cfg.Camera)
	e.layout = components.NewViewLayout(e.ApplicationConfig.StartWidth, e.ApplicationConfig.StartHeight, cfg.Projection, cfg.Viewports, cfg.Indicators)
	e.transform = NewTransformEngine(cfg.Transform)
	e.dispatcher = NewDispatcher(e.Renderer, cfg.Colours)
	e.scene = scene.New(e.Renderer, config.QuadSlots)
	e.bindings = buildBindings(cfg.Models)

	if e.AssetManager != nil {
		var models []string
		for _, b := range e.bindings {
			if b.model != "" {
				models = append(models, b.model)
			}
		}
		if err := e.AssetManager.Preload(e.SystemManager.JobSystem, models); err != nil {
			core.LogWarn("some models could not be preloaded: %s", err)
		}
	}

	grid, err := e.SystemManager.GeometrySystem.Acquire(systems.PrimitiveGrid)
	if err != nil {
		return err
	}

	err = e.Renderer.Commands(func() error {
		if _, err := e.scene.Spawn("grid", grid, math.NewMat4Identity()); err != nil {
			return err
		}
		for _, ind := range e.layout.Indicators {
			mesh, err := e.Renderer.CreateMesh(grid, config.QuadSlots)
			if err != nil {
				return err
			}
			obj := scene.NewObject("indicator-"+ind.Name, math.NewMat4Identity(), mesh, grid.IndexCount)
			e.dispatcher.Indicators = append(e.dispatcher.Indicators, obj)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to build the startup scene: %w", err)
	}

	e.lastMouseX, e.lastMouseY = e.Input.GetMousePosition()
	core.LogInfo("Editor initialized: %d object(s), %d model binding(s).", e.scene.Len(), len(e.bindings)-len(primitiveBindings()))
	return nil
}

func (e *Editor) Update(deltaTime float64) error {
	return e.update(e.Input)
}

/**
 * @brief One frame of editing. Mode keys are handled first, then everything
 * that touches GPU resources runs inside one upload scope.
 */
func (e *Editor) update(in Input) error {
	if in.IsKeyPressed(core.KEY_ESCAPE) && e.Events != nil {
		e.Events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}
	if in.IsKeyPressed(core.KEY_V) {
		core.LogInfo("quad view: %t", e.State.ToggleQuadView())
	}
	if in.IsKeyPressed(core.KEY_R) {
		e.State.ToggleTransformMode()
		core.LogInfo("transform mode: %s", e.State.TransformMode())
	}
	if in.IsKeyPressed(core.KEY_DELETE) {
		e.scene.DeleteSelected()
	}

	mouseX, mouseY := in.GetMousePosition()
	defer func() {
		e.lastMouseX, e.lastMouseY = mouseX, mouseY
	}()

	return e.Renderer.Commands(func() error {
		for i := range e.bindings {
			if in.IsKeyPressed(e.bindings[i].key) {
				if err := e.spawn(&e.bindings[i]); err != nil {
					return err
				}
			}
		}

		if in.IsKeyPressed(core.KEY_TAB) {
			e.scene.CycleSelection()
		}

		dx := float32(mouseX - e.lastMouseX)
		dy := float32(mouseY - e.lastMouseY)
		if in.IsButtonDown(core.BUTTON_LEFT) {
			e.camera.Orbit(dx, dy)
		} else if in.IsButtonDown(core.BUTTON_RIGHT) {
			e.camera.Zoom(dx, dy)
		}

		e.camera.MoveTarget(targetDelta(in, e.camera.TargetStep()))

		if obj := e.scene.Selected(); obj != nil {
			obj.World = e.transform.Apply(obj.World, in, e.State.ChangeTranslation)
		}

		return e.dispatcher.UpdateConstants(e.scene, e.layout, e.camera.GetView())
	})
}

// spawn adds the object of one binding. Missing or unusable mesh files are
// logged and skipped; only allocation failures are returned.
func (e *Editor) spawn(b *spawnBinding) error {
	if b.model == "" {
		geometry, err := e.SystemManager.GeometrySystem.AcquireByName(b.name)
		if err != nil {
			return err
		}
		_, err = e.scene.Spawn(b.name, geometry, b.world)
		return err
	}

	if e.AssetManager == nil {
		core.LogWarn("no asset manager, cannot load model '%s'", b.model)
		return nil
	}
	geometry, err := e.AssetManager.LoadModel(b.model)
	if err != nil {
		core.LogWarn("failed to load model '%s': %s", b.model, err)
		return nil
	}
	if _, err := e.scene.Spawn(b.name, geometry, b.world); err != nil {
		if errors.Is(err, core.ErrEmptyGeometry) {
			core.LogWarn("model '%s' has no triangles, skipping", b.model)
			return nil
		}
		return err
	}
	return nil
}

// targetDelta sums the held target keys into one nudge of the look-at point.
func targetDelta(in Input, step float32) math.Vec3 {
	var delta math.Vec3
	if in.IsKeyDown(core.KEY_J) {
		delta.X -= step
	}
	if in.IsKeyDown(core.KEY_L) {
		delta.X += step
	}
	if in.IsKeyDown(core.KEY_I) {
		delta.Z -= step
	}
	if in.IsKeyDown(core.KEY_K) {
		delta.Z += step
	}
	if in.IsKeyDown(core.KEY_Y) {
		delta.Y += step
	}
	if in.IsKeyDown(core.KEY_H) {
		delta.Y -= step
	}
	return delta
}

func (e *Editor) Render(deltaTime float64) error {
	return e.Renderer.DrawFrame(deltaTime, func(frame *renderer.Frame) error {
		return e.dispatcher.Draw(frame, e.scene, e.layout, e.State.QuadView)
	})
}

// OnResize rebuilds the view layout for the new window size.
func (e *Editor) OnResize(width uint32, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	e.layout = components.NewViewLayout(width, height, e.Config.Projection, e.Config.Viewports, e.Config.Indicators)
	core.LogDebug("view layout rebuilt for %dx%d", width, height)
	return nil
}

// Shutdown releases the scene and the indicator meshes.
func (e *Editor) Shutdown() error {
	if e.scene != nil {
		e.scene.Clear()
	}
	if e.dispatcher != nil {
		for _, obj := range e.dispatcher.Indicators {
			e.Renderer.DestroyMesh(obj.Mesh)
		}
		e.dispatcher.Indicators = nil
	}
	return nil
}

// Scene returns the edited scene.
func (e *Editor) Scene() *scene.Scene {
	return e.scene
}

func (e *Editor) Camera() *components.OrbitCamera {
	return e.camera
}

func (e *Editor) Layout() *components.ViewLayout {
	return e.layout
}
