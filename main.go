/*
Multiview is a wireframe scene editor. It shows the scene either in one
perspective view or in four quadrants (perspective, front, side and top).
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/multiview/editor"
	"github.com/spaghettifunk/multiview/engine"
	"github.com/spaghettifunk/multiview/engine/config"
	"github.com/spaghettifunk/multiview/engine/core"
)

func main() {
	if err := run(); err != nil {
		core.LogError(err.Error())
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config/multiview.toml", "path to the editor configuration (toml or yaml)")
	headless := flag.Bool("headless", false, "run without a window or GPU")
	frames := flag.Uint64("frames", 0, "stop after this many frames (0 runs until quit)")
	logLevel := flag.String("log-level", "", "overrides the configured log level")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	level := cfg.Application.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	if err := core.SetLogLevel(level); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	cfg.Application.LogLevel = level

	ed := editor.New(cfg)
	ed.ApplicationConfig.Headless = *headless
	ed.ApplicationConfig.MaxFrames = *frames

	driver := VulkanDriver()
	if *headless {
		driver = engine.HeadlessDriver()
	}

	e, err := engine.New(ed.Game, driver)
	if err != nil {
		return err
	}

	if err := e.Initialize(); err != nil {
		_ = e.Shutdown()
		return err
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer signal.Stop(sigCh)

	// the loop owns the window thread, so a signal only asks it to stop
	go func() {
		if _, ok := <-sigCh; ok {
			core.LogInfo("Signal received, quitting.")
			e.Quit()
		}
	}()

	runErr := e.Run()
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	return runErr
}

// loadConfig falls back to the built-in defaults when the file is missing.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		core.LogWarn("config %s not found, using defaults", path)
		return config.Default(), nil
	}
	return cfg, err
}
