package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/multiview/engine/assets"
	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	headlesswindow "github.com/spaghettifunk/multiview/engine/platform/headless"
	"github.com/spaghettifunk/multiview/engine/renderer"
	"github.com/spaghettifunk/multiview/engine/renderer/headless"
)

type recordingGame struct {
	*Game
	updates   int
	renders   int
	resizes   [][2]uint32
	shutdowns int
	failAt    int
}

func newRecordingGame(t *testing.T, maxFrames uint64) *recordingGame {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.Root = t.TempDir()
	cfg.Assets.Watch = false
	cfg.Application.TargetFPS = 0

	app := NewApplicationConfig(cfg.Application)
	app.Headless = true
	app.MaxFrames = maxFrames

	g := &recordingGame{Game: &Game{ApplicationConfig: app, Config: cfg}}
	g.FnInitialize = func() error { return nil }
	g.FnUpdate = func(float64) error {
		g.updates++
		if g.failAt > 0 && g.updates == g.failAt {
			return errors.New("update failed")
		}
		return nil
	}
	g.FnRender = func(dt float64) error {
		g.renders++
		return g.Renderer.DrawFrame(dt, func(*renderer.Frame) error { return nil })
	}
	g.FnOnResize = func(w, h uint32) error {
		g.resizes = append(g.resizes, [2]uint32{w, h})
		return nil
	}
	g.FnShutdown = func() error {
		g.shutdowns++
		return nil
	}
	return g
}

// recordingDriver is the headless driver with the backend exposed.
func recordingDriver(backend *headless.Backend) Driver {
	d := HeadlessDriver()
	d.NewBackend = func(Window, *assets.AssetManager, *config.Config) (renderer.RendererBackend, error) {
		return backend, nil
	}
	return d
}

func startEngine(t *testing.T, g *recordingGame) (*Engine, *headless.Backend) {
	t.Helper()
	backend := headless.New()
	e, err := New(g.Game, recordingDriver(backend))
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return e, backend
}

func TestNewFillsGame(t *testing.T) {
	g := newRecordingGame(t, 1)
	e, err := New(g.Game, HeadlessDriver())
	require.NoError(t, err)
	defer e.Shutdown()

	assert.Equal(t, EngineStageBootComplete, e.Stage())
	assert.NotNil(t, g.Events)
	assert.NotNil(t, g.Input)
	assert.NotNil(t, g.AssetManager)
	assert.NotNil(t, g.SystemManager)
	assert.NotNil(t, g.Renderer)
}

func TestInitializeCallsGame(t *testing.T) {
	g := newRecordingGame(t, 1)
	e, _ := startEngine(t, g)

	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.Equal(t, [][2]uint32{{1280, 720}}, g.resizes)
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(1280), w)
	assert.Equal(t, uint32(720), h)
}

func TestRunStopsAfterMaxFrames(t *testing.T) {
	g := newRecordingGame(t, 5)
	e, backend := startEngine(t, g)

	require.NoError(t, e.Run())
	assert.Equal(t, 5, g.updates)
	assert.Equal(t, 5, g.renders)
	assert.Len(t, backend.Frames(), 5)
	assert.Equal(t, uint64(5), e.Metrics().TotalFrames())
}

func TestQuitEventStopsLoop(t *testing.T) {
	g := newRecordingGame(t, 100)
	g.FnUpdate = func(float64) error {
		g.updates++
		if g.updates == 3 {
			g.Events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		}
		return nil
	}
	e, _ := startEngine(t, g)

	require.NoError(t, e.Run())
	assert.Equal(t, 3, g.updates)
}

func TestClosedWindowStopsLoop(t *testing.T) {
	g := newRecordingGame(t, 100)
	e, _ := startEngine(t, g)
	e.Window().(*headlesswindow.Window).Close()

	require.NoError(t, e.Run())
	assert.Equal(t, 0, g.updates)
}

func TestUpdateErrorStopsLoop(t *testing.T) {
	g := newRecordingGame(t, 100)
	g.failAt = 2
	e, _ := startEngine(t, g)

	assert.Error(t, e.Run())
	assert.Equal(t, 2, g.updates)
	assert.Equal(t, 1, g.renders)
}

func TestResizeSuspendsOnMinimize(t *testing.T) {
	g := newRecordingGame(t, 1)
	e, backend := startEngine(t, g)
	window := e.Window().(*headlesswindow.Window)

	window.Resize(0, 0)
	assert.True(t, e.IsSuspended())
	assert.Len(t, g.resizes, 1, "minimizing does not resize the game")

	window.Resize(800, 600)
	assert.False(t, e.IsSuspended())
	assert.Equal(t, [2]uint32{800, 600}, g.resizes[len(g.resizes)-1])
	w, h := backend.Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)

	// Same size again is ignored.
	window.Resize(800, 600)
	assert.Len(t, g.resizes, 2)
}

func TestShutdownOnce(t *testing.T) {
	g := newRecordingGame(t, 1)
	e, backend := startEngine(t, g)

	require.NoError(t, e.Shutdown())
	require.NoError(t, e.Shutdown())
	assert.Equal(t, 1, g.shutdowns)
	assert.Equal(t, 0, backend.LiveBuffers())
	assert.False(t, e.Window().PumpMessages())
}

func TestMissingAssetsRoot(t *testing.T) {
	g := newRecordingGame(t, 1)
	g.Config.Assets.Root = "/does/not/exist"

	e, err := New(g.Game, HeadlessDriver())
	require.NoError(t, err)
	require.NoError(t, e.Initialize(), "headless runs continue without assets")
	assert.Nil(t, g.AssetManager)
	require.NoError(t, e.Shutdown())

	g = newRecordingGame(t, 1)
	g.Config.Assets.Root = "/does/not/exist"
	g.ApplicationConfig.Headless = false
	e, err = New(g.Game, HeadlessDriver())
	require.NoError(t, err)
	assert.ErrorIs(t, e.Initialize(), core.ErrAssetNotFound)
}

func TestBackendCreationFailure(t *testing.T) {
	g := newRecordingGame(t, 1)
	d := HeadlessDriver()
	boom := errors.New("no device")
	d.NewBackend = func(Window, *assets.AssetManager, *config.Config) (renderer.RendererBackend, error) {
		return nil, boom
	}
	_, err := New(g.Game, d)
	assert.ErrorIs(t, err, boom)
}
