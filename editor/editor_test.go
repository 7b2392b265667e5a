package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/multiview/engine/assets"
	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer"
	"github.com/spaghettifunk/multiview/engine/renderer/headless"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
	"github.com/spaghettifunk/multiview/engine/systems"
)

type harness struct {
	editor  *Editor
	input   *core.InputState
	events  *core.EventSystem
	backend *headless.Backend
	render  *renderer.Renderer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, assets.ModelsDir), 0o755))
	tri := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, assets.ModelsDir, "tri.obj"), []byte(tri), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, assets.ModelsDir, "empty.obj"), []byte("# nothing\n"), 0o644))

	cfg := config.Default()
	cfg.Assets.Root = root
	cfg.Assets.Watch = false
	cfg.Models = []config.ModelBinding{
		{Key: "1", File: "tri.obj"},
		{Key: "2", File: "missing.obj"},
		{Key: "3", File: "empty.obj"},
	}

	backend := headless.New()
	r := renderer.New(backend)
	require.NoError(t, r.Initialize("editor", cfg.Application.Width, cfg.Application.Height))

	sm, err := systems.NewSystemManager(cfg)
	require.NoError(t, err)
	am, err := assets.NewAssetManager(&assets.AssetManagerConfig{Root: root})
	require.NoError(t, err)
	require.NoError(t, am.Initialize())

	events := core.NewEventSystem()
	input := core.NewInputState(events)

	e := New(cfg)
	e.SystemManager = sm
	e.AssetManager = am
	e.Renderer = r
	e.Input = input
	e.Events = events
	require.NoError(t, e.Initialize())

	t.Cleanup(func() {
		_ = e.Shutdown()
		_ = am.Shutdown()
		_ = sm.Shutdown()
	})
	return &harness{editor: e, input: input, events: events, backend: backend, render: r}
}

// frame runs one update with the given keys held, then releases them.
func (h *harness) frame(t *testing.T, keys ...core.KeyCode) {
	t.Helper()
	for _, k := range keys {
		h.input.ProcessKey(k, true)
	}
	require.NoError(t, h.editor.Update(0.016))
	h.input.Update()
	for _, k := range keys {
		h.input.ProcessKey(k, false)
	}
	h.input.Update()
}

func TestStartupScene(t *testing.T) {
	h := newHarness(t)
	sc := h.editor.Scene()

	require.Equal(t, 1, sc.Len())
	assert.Equal(t, 0, sc.SelectedIndex())
	assert.Equal(t, "grid", sc.Selected().Name)
	assert.Equal(t, math.NewMat4Identity(), sc.Selected().World)
	assert.Len(t, h.editor.dispatcher.Indicators, 2)
	assert.Equal(t, 3, h.render.MeshCount())
	assert.Equal(t, 1, h.backend.Resets())
	assert.Equal(t, 1, h.backend.Submits())
	assert.Equal(t, NewEditorState(), h.editor.State)
	for _, inside := range h.backend.CreatedInsideCommands() {
		assert.True(t, inside)
	}
}

func TestSpawnPrimitives(t *testing.T) {
	h := newHarness(t)
	sc := h.editor.Scene()

	keys := []core.KeyCode{core.KEY_Q, core.KEY_B, core.KEY_C, core.KEY_S, core.KEY_G, core.KEY_P}
	names := []string{"quad", "box", "cylinder", "sphere", "geosphere", "grid"}
	for i, k := range keys {
		h.frame(t, k)
		require.Equal(t, i+2, sc.Len())
		assert.Equal(t, i+1, sc.SelectedIndex())
		assert.Equal(t, names[i], sc.Selected().Name)
	}

	box := sc.At(2).World
	assert.InDelta(t, 0.5, box.Data[0], 1e-6)
	assert.True(t, box.Translation().Compare(math.NewVec3(0, 0.5, 0), 1e-6))
	cylinder := sc.At(3).World
	assert.True(t, cylinder.Translation().Compare(math.NewVec3(0, 0.75, 0), 1e-6))
	assert.Equal(t, math.NewMat4Identity(), sc.At(6).World)
	assert.Equal(t, h.backend.Resets(), h.backend.Submits())
}

func TestSpawnModels(t *testing.T) {
	h := newHarness(t)
	sc := h.editor.Scene()

	h.frame(t, core.KEY_1)
	require.Equal(t, 2, sc.Len())
	assert.Equal(t, "tri.obj", sc.Selected().Name)
	assert.Equal(t, uint32(3), sc.Selected().Submesh.IndexCount)
	assert.Equal(t, math.NewMat4Identity(), sc.Selected().World)

	// Missing and empty models are skipped without failing the frame.
	h.frame(t, core.KEY_2)
	h.frame(t, core.KEY_3)
	assert.Equal(t, 2, sc.Len())
	assert.Equal(t, 1, sc.SelectedIndex())
}

func TestHeldSpawnKeyAddsOneObject(t *testing.T) {
	h := newHarness(t)
	h.input.ProcessKey(core.KEY_B, true)
	for i := 0; i < 5; i++ {
		require.NoError(t, h.editor.Update(0.016))
		h.input.Update()
	}
	assert.Equal(t, 2, h.editor.Scene().Len())
}

func TestCycleAndDelete(t *testing.T) {
	h := newHarness(t)
	sc := h.editor.Scene()
	h.frame(t, core.KEY_B)
	h.frame(t, core.KEY_S)
	require.Equal(t, 2, sc.SelectedIndex())

	h.frame(t, core.KEY_TAB)
	assert.Equal(t, 0, sc.SelectedIndex())
	h.frame(t, core.KEY_TAB)
	assert.Equal(t, 1, sc.SelectedIndex())

	h.frame(t, core.KEY_DELETE)
	assert.Equal(t, 2, sc.Len())
	assert.Equal(t, 1, sc.SelectedIndex())
	assert.Equal(t, "sphere", sc.Selected().Name)
	assert.Equal(t, 4, h.render.MeshCount())
}

func TestTabOnEmptySceneKeepsScopesBalanced(t *testing.T) {
	h := newHarness(t)
	sc := h.editor.Scene()
	h.frame(t, core.KEY_DELETE)
	require.Equal(t, 0, sc.Len())

	h.frame(t, core.KEY_TAB)
	h.frame(t, core.KEY_TAB)
	assert.Equal(t, 0, sc.Len())
	assert.Nil(t, sc.Selected())
	assert.Equal(t, h.backend.Resets(), h.backend.Submits())

	// The editor keeps working afterwards.
	h.frame(t, core.KEY_B)
	assert.Equal(t, 0, sc.SelectedIndex())
}

func TestModeToggles(t *testing.T) {
	h := newHarness(t)
	h.frame(t, core.KEY_V)
	assert.True(t, h.editor.State.QuadView)
	h.frame(t, core.KEY_R)
	assert.False(t, h.editor.State.ChangeTranslation)
	h.frame(t, core.KEY_V, core.KEY_R)
	assert.Equal(t, NewEditorState(), h.editor.State)
}

func TestEscapeFiresQuit(t *testing.T) {
	h := newHarness(t)
	quit := false
	h.events.Register(core.EVENT_CODE_APPLICATION_QUIT, t, func(core.EventContext) bool {
		quit = true
		return true
	})
	h.frame(t, core.KEY_ESCAPE)
	assert.True(t, quit)
}

func TestTransformOnlyTouchesSelection(t *testing.T) {
	h := newHarness(t)
	sc := h.editor.Scene()
	h.frame(t, core.KEY_P)
	h.frame(t, core.KEY_LEFT, core.KEY_SHIFT)

	assert.True(t, sc.At(1).World.Translation().Compare(math.NewVec3(0.05, 0.05, 0), 1e-6))
	assert.Equal(t, math.NewMat4Identity(), sc.At(0).World)

	h.frame(t, core.KEY_R)
	h.frame(t, core.KEY_RIGHT)
	assert.True(t, sc.At(1).World.Translation().Compare(math.NewVec3(0.05, 0.05, 0), 1e-6))
	assert.InDelta(t, math.NewMat4EulerZ(0.05).Data[1], sc.At(1).World.Data[1], 1e-6)
}

func TestRepeatedTranslationAccumulates(t *testing.T) {
	h := newHarness(t)
	sc := h.editor.Scene()
	h.frame(t, core.KEY_B)
	box := sc.Selected()
	require.NotNil(t, box)
	start := box.World.Translation()

	for i := 0; i < 10; i++ {
		h.frame(t, core.KEY_LEFT)
	}
	got := box.World.Translation()
	assert.InDelta(t, start.X+0.5, got.X, 1e-5)
	assert.InDelta(t, start.Y, got.Y, 1e-6)
	assert.InDelta(t, start.Z, got.Z, 1e-6)

	for i := 0; i < 10; i++ {
		h.frame(t, core.KEY_RIGHT)
	}
	assert.True(t, box.World.Translation().Compare(start, 1e-5))
}

func TestMouseOrbitAndZoom(t *testing.T) {
	h := newHarness(t)
	cam := h.editor.Camera()
	theta, radius := cam.Theta, cam.Radius

	// Moving without a button only records the position.
	h.input.ProcessMouseMove(100, 0)
	h.frame(t)
	assert.Equal(t, theta, cam.Theta)

	h.input.ProcessButton(core.BUTTON_LEFT, true)
	h.input.ProcessMouseMove(104, 0)
	h.frame(t)
	assert.InDelta(t, theta+math.DegToRad(1), cam.Theta, 1e-5)
	h.input.ProcessButton(core.BUTTON_LEFT, false)

	h.input.ProcessButton(core.BUTTON_RIGHT, true)
	h.input.ProcessMouseMove(144, 0)
	h.frame(t)
	assert.InDelta(t, radius+2, cam.Radius, 1e-5)

	// Left wins when both buttons are held.
	h.input.ProcessButton(core.BUTTON_LEFT, true)
	h.input.ProcessMouseMove(148, 0)
	h.frame(t)
	assert.InDelta(t, radius+2, cam.Radius, 1e-5)
	assert.InDelta(t, theta+math.DegToRad(2), cam.Theta, 1e-5)
}

func TestTargetKeys(t *testing.T) {
	h := newHarness(t)
	cam := h.editor.Camera()
	position := cam.Position()

	h.frame(t, core.KEY_J)
	h.frame(t, core.KEY_Y)
	h.frame(t, core.KEY_K)
	assert.True(t, cam.Target.Compare(math.NewVec3(-0.1, 0.1, 0.1), 1e-6))
	assert.Equal(t, position, cam.Position())

	h.frame(t, core.KEY_L, core.KEY_H, core.KEY_I)
	assert.True(t, cam.Target.Compare(math.NewVec3Zero(), 1e-6))
}

func TestConstantsFollowSelection(t *testing.T) {
	h := newHarness(t)
	sc := h.editor.Scene()
	h.frame(t, core.KEY_B)

	cfg := config.Default()
	red := vec4(cfg.Colours.Selected)
	gray := vec4(cfg.Colours.Default)
	layout := h.editor.Layout()
	view := h.editor.Camera().GetView()

	for slot := uint32(0); slot < config.QuadSlots; slot++ {
		grid := metadata.ObjectConstantsFromBytes(h.backend.SlotData(sc.At(0).Mesh.ConstantBuffer, slot))
		box := metadata.ObjectConstantsFromBytes(h.backend.SlotData(sc.At(1).Mesh.ConstantBuffer, slot))
		assert.Equal(t, gray, grid.Colour)
		assert.Equal(t, red, box.Colour)

		setup := layout.Quad[slot]
		expected := sc.At(1).World.Mul(setup.ViewMatrix(view)).Mul(setup.Projection)
		assert.True(t, box.WorldViewProj.Compare(math.NewMat4Transposed(expected), 1e-4), "slot %d", slot)
	}

	for i, ind := range h.editor.dispatcher.Indicators {
		c := metadata.ObjectConstantsFromBytes(h.backend.SlotData(ind.Mesh.ConstantBuffer, 0))
		assert.Equal(t, gray, c.Colour)
		setup := layout.Indicators[i]
		expected := setup.View.Mul(setup.Projection)
		assert.True(t, c.WorldViewProj.Compare(math.NewMat4Transposed(expected), 1e-4))
	}

	h.frame(t, core.KEY_TAB)
	grid := metadata.ObjectConstantsFromBytes(h.backend.SlotData(sc.At(0).Mesh.ConstantBuffer, 2))
	assert.Equal(t, red, grid.Colour)
}

func TestRenderSingleView(t *testing.T) {
	h := newHarness(t)
	h.frame(t, core.KEY_B)
	require.NoError(t, h.editor.Render(0.016))

	frame, ok := h.backend.LastFrame()
	require.True(t, ok)
	assert.Equal(t, []metadata.Viewport{h.editor.Layout().Single}, frame.Viewports)
	require.Len(t, frame.Draws, 2)
	for i, d := range frame.Draws {
		assert.Same(t, h.editor.Scene().At(i).Mesh, d.Call.Mesh)
		assert.Equal(t, uint32(0), d.Call.Slot)
	}
}

func TestRenderQuadView(t *testing.T) {
	h := newHarness(t)
	h.frame(t, core.KEY_B)
	h.frame(t, core.KEY_V)
	require.NoError(t, h.editor.Render(0.016))

	frame, ok := h.backend.LastFrame()
	require.True(t, ok)
	layout := h.editor.Layout()
	require.Len(t, frame.Viewports, 5)
	assert.Equal(t, layout.Single, frame.Viewports[0])

	// Two indicators over the whole window, then two objects per quadrant.
	require.Len(t, frame.Draws, 2+4*2)
	for i, ind := range h.editor.dispatcher.Indicators {
		assert.Same(t, ind.Mesh, frame.Draws[i].Call.Mesh)
		assert.Equal(t, layout.Single, frame.Draws[i].Viewport)
		assert.Equal(t, uint32(0), frame.Draws[i].Call.Slot)
	}
	for q := 0; q < config.QuadSlots; q++ {
		assert.Equal(t, layout.Quad[q].Viewport, frame.Viewports[q+1])
		for o := 0; o < 2; o++ {
			d := frame.Draws[2+q*2+o]
			assert.Equal(t, uint32(q), d.Call.Slot)
			assert.Equal(t, layout.Quad[q].Viewport, d.Viewport)
			assert.Same(t, h.editor.Scene().At(o).Mesh, d.Call.Mesh)
		}
	}
}

func TestRenderEmptyScene(t *testing.T) {
	h := newHarness(t)
	h.frame(t, core.KEY_DELETE)
	require.NoError(t, h.editor.Render(0.016))
	frame, ok := h.backend.LastFrame()
	require.True(t, ok)
	assert.Empty(t, frame.Draws)
	assert.Len(t, frame.Viewports, 1)
}

func TestResizeRebuildsLayout(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.editor.OnResize(800, 600))
	assert.Equal(t, float32(800), h.editor.Layout().Single.Width)
	assert.Equal(t, float32(400), h.editor.Layout().Quad[0].Viewport.X)

	require.NoError(t, h.editor.OnResize(0, 0))
	assert.Equal(t, float32(800), h.editor.Layout().Single.Width)
}

func TestShutdownReleasesMeshes(t *testing.T) {
	h := newHarness(t)
	h.frame(t, core.KEY_B)
	require.NoError(t, h.editor.Shutdown())
	assert.Equal(t, 0, h.render.MeshCount())
	assert.Equal(t, 0, h.backend.LiveBuffers())
}

func TestBuildBindings(t *testing.T) {
	bindings := buildBindings([]config.ModelBinding{
		{Key: "1", File: "ball.obj"},
		{Key: "b", File: "clash.obj"},
		{Key: "v", File: "reserved.obj"},
		{Key: "?", File: "bad.obj"},
		{Key: "m", File: "monkey.obj"},
	})
	require.Len(t, bindings, len(primitiveBindings())+2)
	assert.Equal(t, core.KEY_1, bindings[6].key)
	assert.Equal(t, "ball.obj", bindings[6].model)
	assert.Equal(t, core.KEY_M, bindings[7].key)
}

func TestPrimitiveBindingsNameTemplates(t *testing.T) {
	gs, err := systems.NewGeometrySystem(&systems.GeometrySystemConfig{})
	require.NoError(t, err)
	for _, b := range primitiveBindings() {
		assert.Empty(t, b.model)
		geometry, err := gs.AcquireByName(b.name)
		require.NoError(t, err, b.name)
		assert.False(t, geometry.IsEmpty(), b.name)
	}
}
