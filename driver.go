package main

import (
	"fmt"

	"github.com/spaghettifunk/multiview/engine"
	"github.com/spaghettifunk/multiview/engine/assets"
	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/platform"
	"github.com/spaghettifunk/multiview/engine/renderer"
	"github.com/spaghettifunk/multiview/engine/renderer/vulkan"
)

// VulkanDriver opens a glfw window and renders through Vulkan.
func VulkanDriver() engine.Driver {
	return engine.Driver{
		Name: renderer.Vulkan.String(),
		NewWindow: func(input *core.InputState, events *core.EventSystem) engine.Window {
			return platform.New(input, events)
		},
		NewBackend: func(window engine.Window, am *assets.AssetManager, cfg *config.Config) (renderer.RendererBackend, error) {
			surface, ok := window.(vulkan.Surface)
			if !ok {
				return nil, fmt.Errorf("window %T cannot create a Vulkan surface: %w", window, core.ErrBackendNotReady)
			}
			return vulkan.New(surface, am, vulkan.Config{
				VertexShader:   cfg.Assets.VertexShader,
				FragmentShader: cfg.Assets.FragmentShader,
				ClearColour:    cfg.Colours.Clear,
				Debug:          cfg.Application.LogLevel == "debug",
			}), nil
		},
	}
}
