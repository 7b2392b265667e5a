//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and opens the editor window.
func (Run) Editor() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run editor...")
	_, err := executeCmd("go", withArgs("run", ".", "--config", "config/multiview.toml"), withStream())
	return err
}

// Runs a short headless session, useful on machines without a GPU.
func (Run) Headless() error {
	fmt.Println("Run headless editor...")
	_, err := executeCmd("go", withArgs("run", ".", "--headless", "--frames", "120", "--log-level", "debug"), withStream())
	return err
}

type Test mg.Namespace

// Runs every test that does not need a window.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "./editor/...", "./engine/..."), withStream())
	return err
}
