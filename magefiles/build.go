//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const shaderDir = "assets/shaders"

// Compiles every GLSL shader under assets/shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the editor binary.
func (Build) Editor() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/multiview", "."), withStream())
	return err
}

func buildShaders() error {
	sources, err := filepath.Glob(filepath.Join(shaderDir, "*.vert"))
	if err != nil {
		return err
	}
	fragments, err := filepath.Glob(filepath.Join(shaderDir, "*.frag"))
	if err != nil {
		return err
	}
	for _, src := range append(sources, fragments...) {
		out := src + ".spv"
		if !needsRebuild(src, out) {
			continue
		}
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}

// needsRebuild is true when out is missing or older than src.
func needsRebuild(src, out string) bool {
	stale, err := targetOlder(out, src)
	return err != nil || stale
}
