package engine

import (
	"github.com/spaghettifunk/multiview/engine/config"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32
	// Window starting position y axis, if applicable.
	StartPosY uint32
	// Window starting width, if applicable.
	StartWidth uint32
	// Window starting height, if applicable.
	StartHeight uint32
	// The application name used in windowing, if applicable.
	Name     string
	LogLevel string
	// Frames per second the loop is limited to. 0 disables the limiter.
	TargetFPS float64
	// Run on a virtual window with the recording renderer backend.
	Headless bool
	// Stop after this many frames. 0 runs until quit.
	MaxFrames uint64
}

func NewApplicationConfig(cfg config.ApplicationConfig) *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   cfg.StartPosX,
		StartPosY:   cfg.StartPosY,
		StartWidth:  cfg.Width,
		StartHeight: cfg.Height,
		Name:        cfg.Name,
		LogLevel:    cfg.LogLevel,
		TargetFPS:   cfg.TargetFPS,
	}
}
