package engine

import (
	"github.com/spaghettifunk/multiview/engine/assets"
	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	headlesswindow "github.com/spaghettifunk/multiview/engine/platform/headless"
	"github.com/spaghettifunk/multiview/engine/renderer"
	"github.com/spaghettifunk/multiview/engine/renderer/headless"
)

// Window is what the engine loop needs from a window, real or virtual.
type Window interface {
	Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error
	Shutdown() error
	// PumpMessages processes pending window events. It returns false once the
	// window was asked to close.
	PumpMessages() bool
	FramebufferSize() (uint32, uint32)
}

/**
 * @brief Creates the window and the renderer backend the engine runs on.
 * Windows feed input and resize events into the systems they are given.
 */
type Driver struct {
	Name       string
	NewWindow  func(input *core.InputState, events *core.EventSystem) Window
	NewBackend func(window Window, assets *assets.AssetManager, cfg *config.Config) (renderer.RendererBackend, error)
}

// HeadlessDriver runs on a virtual window with the recording backend.
func HeadlessDriver() Driver {
	return Driver{
		Name: renderer.Headless.String(),
		NewWindow: func(input *core.InputState, events *core.EventSystem) Window {
			return headlesswindow.New(events)
		},
		NewBackend: func(window Window, assets *assets.AssetManager, cfg *config.Config) (renderer.RendererBackend, error) {
			return headless.New(), nil
		},
	}
}
