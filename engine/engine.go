package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/multiview/engine/assets"
	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer"
	"github.com/spaghettifunk/multiview/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const suspendedPoll = 10 * time.Millisecond

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	driver        Driver
	isRunning     atomic.Bool
	isSuspended   bool
	window        Window
	events        *core.EventSystem
	input         *core.InputState
	renderer      *renderer.Renderer
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.FrameMetrics
	lastTime      float64
	shutdownOnce  sync.Once
}

/**
 * @brief Creates every subsystem of the game and hands them to it. Nothing
 * touches the window or the GPU until Initialize.
 */
func New(g *Game, driver Driver) (*Engine, error) {
	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		driver:       driver,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
	}
	if g.Config == nil {
		g.Config = config.Default()
	}
	cfg := g.Config

	e.events = core.NewEventSystem()
	e.input = core.NewInputState(e.events)

	colour := cfg.Colours.Default
	am, err := assets.NewAssetManager(&assets.AssetManagerConfig{
		Root:         cfg.Assets.Root,
		Watch:        cfg.Assets.Watch,
		VertexColour: math.NewVec4(colour[0], colour[1], colour[2], colour[3]),
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	e.assetManager = am

	sm, err := systems.NewSystemManager(cfg)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	e.systemManager = sm
	am.SetJobSystem(sm.JobSystem)

	e.window = driver.NewWindow(e.input, e.events)
	backend, err := driver.NewBackend(e.window, am, cfg)
	if err != nil {
		_ = sm.Shutdown()
		return nil, fmt.Errorf("failed to create the %s backend: %w", driver.Name, err)
	}
	e.renderer = renderer.New(backend)

	g.Events = e.events
	g.Input = e.input
	g.AssetManager = am
	g.SystemManager = sm
	g.Renderer = e.renderer

	e.currentStage = EngineStageBootComplete
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	app := e.gameInstance.ApplicationConfig

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_KEY_RELEASED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.window.Startup(app.Name, app.StartPosX, app.StartPosY, app.StartWidth, app.StartHeight); err != nil {
		return err
	}
	if w, h := e.window.FramebufferSize(); w > 0 && h > 0 {
		e.width, e.height = w, h
	}

	if err := e.assetManager.Initialize(); err != nil {
		if !app.Headless {
			return err
		}
		// A headless run can still edit primitives.
		core.LogWarn("continuing without assets: %s", err)
		_ = e.assetManager.Shutdown()
		e.assetManager = nil
		e.gameInstance.AssetManager = nil
	}

	if err := e.renderer.Initialize(app.Name, e.width, e.height); err != nil {
		return err
	}

	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}

	e.isRunning.Store(true)
	e.currentStage = EngineStageInitialized
	core.LogInfo("Engine initialized with the %s driver (%dx%d).", e.driver.Name, e.width, e.height)
	return nil
}

/**
 * @brief Runs the frame loop until the window closes, quit is requested or
 * the configured frame count is reached.
 */
func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	app := e.gameInstance.ApplicationConfig

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64
	if app.TargetFPS > 0 {
		targetFrameSeconds = 1.0 / app.TargetFPS
	}

	for e.isRunning.Load() {
		if !e.window.PumpMessages() {
			e.isRunning.Store(false)
			break
		}

		if e.isSuspended {
			time.Sleep(suspendedPoll)
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStart := time.Now()

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down: %s", err)
			e.isRunning.Store(false)
			return err
		}

		if err := e.gameInstance.FnRender(delta); err != nil {
			core.LogError("Game render failed, shutting down: %s", err)
			e.isRunning.Store(false)
			return err
		}

		// Figure out how long the frame took and, if below the target, give
		// the rest back to the OS.
		frameElapsed := time.Since(frameStart).Seconds()
		if remaining := targetFrameSeconds - frameElapsed; remaining > 0 {
			time.Sleep(time.Duration(remaining * float64(time.Second)))
		}
		e.metrics.Update(frameElapsed)

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		// As a safety, input is the last thing to be updated before
		// this frame ends.
		e.input.Update()

		e.lastTime = currentTime

		if app.MaxFrames > 0 && e.metrics.TotalFrames() >= app.MaxFrames {
			core.LogInfo("Reached %d frames, stopping.", app.MaxFrames)
			e.isRunning.Store(false)
		}
	}

	core.Logger().Info("frame loop stopped", "frames", e.metrics.TotalFrames(), "fps", e.metrics.FPS(), "frame_ms", e.metrics.FrameTime())
	return nil
}

// Quit asks the frame loop to stop after the current frame. Safe to call
// from any goroutine.
func (e *Engine) Quit() {
	e.isRunning.Store(false)
}

// Shutdown releases the game and every subsystem. Only the first call has
// any effect.
func (e *Engine) Shutdown() error {
	var err error
	e.shutdownOnce.Do(func() {
		e.currentStage = EngineStageShuttingDown
		err = e.shutdown()
	})
	return err
}

func (e *Engine) shutdown() error {
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}
	if err := e.renderer.Shutdown(); err != nil {
		return err
	}
	if e.assetManager != nil {
		if err := e.assetManager.Shutdown(); err != nil {
			return err
		}
	}
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := e.window.Shutdown(); err != nil {
		return err
	}
	return e.events.Shutdown()
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Metrics() *core.FrameMetrics {
	return e.metrics
}

func (e *Engine) Window() Window {
	return e.window
}

func (e *Engine) IsSuspended() bool {
	return e.isSuspended
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if context.Type == core.EVENT_CODE_KEY_PRESSED {
		core.LogDebug("key 0x%02x pressed", uint16(ke.KeyCode))
	} else {
		core.LogDebug("key 0x%02x released", uint16(ke.KeyCode))
	}
	// Other listeners still get the key.
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	width := se.WindowWidth
	height := se.WindowHeight

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if err := e.renderer.Resize(width, height); err != nil {
		core.LogError(err.Error())
	}
	if err := e.gameInstance.FnOnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	return true
}
