package engine

import (
	"github.com/spaghettifunk/multiview/engine/assets"
	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/renderer"
	"github.com/spaghettifunk/multiview/engine/systems"
)

// Game is the application the engine runs. The engine fills in the
// subsystem fields before FnInitialize is called.
type Game struct {
	ApplicationConfig *ApplicationConfig
	Config            *config.Config
	SystemManager     *systems.SystemManager
	AssetManager      *assets.AssetManager
	Renderer          *renderer.Renderer
	Input             *core.InputState
	Events            *core.EventSystem
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
	FnShutdown        Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
