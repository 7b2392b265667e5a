package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/multiview/engine/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Viewports, QuadSlots)
	assert.Len(t, cfg.Indicators, 2)
	assert.Len(t, cfg.Models, 6)
}

func TestShippedConfigMatchesDefault(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "multiview.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseTOMLOverridesOnlyGivenKeys(t *testing.T) {
	data := []byte(`
[application]
width = 800
log_level = "debug"

[transform]
step = 0.1
`)
	cfg, err := Parse(data, ".toml")
	require.NoError(t, err)

	assert.Equal(t, uint32(800), cfg.Application.Width)
	assert.Equal(t, uint32(720), cfg.Application.Height)
	assert.Equal(t, "debug", cfg.Application.LogLevel)
	assert.Equal(t, float32(0.1), cfg.Transform.Step)
	assert.Equal(t, float32(1.01), cfg.Transform.ScaleUp)
	assert.Equal(t, Default().Viewports, cfg.Viewports)
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
camera:
  radius: 7
  min_radius: 2
models:
  - key: "9"
    file: teapot.obj
`)
	cfg, err := Parse(data, ".yaml")
	require.NoError(t, err)
	assert.Equal(t, float32(7), cfg.Camera.Radius)
	assert.Equal(t, float32(2), cfg.Camera.MinRadius)
	assert.Equal(t, float32(15), cfg.Camera.MaxRadius)
	assert.Equal(t, []ModelBinding{{Key: "9", File: "teapot.obj"}}, cfg.Models)
}

func TestParseEmptyYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""), ".yml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"radius range", "[camera]\nmin_radius = 20.0\n"},
		{"far before near", "[projection]\nnear = 10.0\nfar = 5.0\n"},
		{"zero step", "[transform]\nstep = 0.0\n"},
		{"slot out of range", `
[[viewports]]
name = "a"
slot = 0
projection = "perspective"
rect = [0.0, 0.0, 1.0, 1.0]
[[viewports]]
name = "b"
slot = 1
projection = "orthographic"
rect = [0.0, 0.0, 1.0, 1.0]
[[viewports]]
name = "c"
slot = 2
projection = "orthographic"
rect = [0.0, 0.0, 1.0, 1.0]
[[viewports]]
name = "d"
slot = 7
projection = "orthographic"
rect = [0.0, 0.0, 1.0, 1.0]
`},
		{"too few viewports", `
[[viewports]]
name = "only"
slot = 0
projection = "perspective"
rect = [0.0, 0.0, 1.0, 1.0]
`},
		{"bad model key", "[[models]]\nkey = \"12\"\nfile = \"x.obj\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), ".toml")
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
		})
	}
}

func TestParseRejectsUnknownFieldsAndFormats(t *testing.T) {
	_, err := Parse([]byte("[camera]\nzoom = 3\n"), ".toml")
	assert.Error(t, err)

	_, err = Parse([]byte("{}"), ".json")
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncodeProducesLoadableTOML(t *testing.T) {
	cfg := Default()
	cfg.Application.Name = "encoded"
	data, err := cfg.Encode()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.toml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "encoded", loaded.Application.Name)
}
