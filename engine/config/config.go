package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/multiview/engine/core"
)

// Config is the full editor configuration. Zero sections are never used
// directly: Load decodes on top of Default.
type Config struct {
	Application ApplicationConfig `toml:"application" yaml:"application"`
	Camera      CameraConfig      `toml:"camera" yaml:"camera"`
	Transform   TransformConfig   `toml:"transform" yaml:"transform"`
	Projection  ProjectionConfig  `toml:"projection" yaml:"projection"`
	Colours     ColourConfig      `toml:"colours" yaml:"colours"`
	Assets      AssetsConfig      `toml:"assets" yaml:"assets"`
	Viewports   []ViewportConfig  `toml:"viewports" yaml:"viewports"`
	Indicators  []IndicatorConfig `toml:"indicators" yaml:"indicators"`
	Models      []ModelBinding    `toml:"models" yaml:"models"`
}

type ApplicationConfig struct {
	Name      string `toml:"name" yaml:"name"`
	StartPosX uint32 `toml:"start_pos_x" yaml:"start_pos_x"`
	StartPosY uint32 `toml:"start_pos_y" yaml:"start_pos_y"`
	Width     uint32 `toml:"width" yaml:"width"`
	Height    uint32 `toml:"height" yaml:"height"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	// 0 disables the frame limiter.
	TargetFPS float64 `toml:"target_fps" yaml:"target_fps"`
}

type CameraConfig struct {
	Theta  float32 `toml:"theta" yaml:"theta"`
	Phi    float32 `toml:"phi" yaml:"phi"`
	Radius float32 `toml:"radius" yaml:"radius"`
	// Radius limits.
	MinRadius float32 `toml:"min_radius" yaml:"min_radius"`
	MaxRadius float32 `toml:"max_radius" yaml:"max_radius"`
	// Phi is kept inside [PhiMargin, pi-PhiMargin].
	PhiMargin float32 `toml:"phi_margin" yaml:"phi_margin"`
	// Degrees of orbit per pixel of mouse travel.
	OrbitSensitivity float32 `toml:"orbit_sensitivity" yaml:"orbit_sensitivity"`
	// Units of radius per pixel of mouse travel.
	ZoomSensitivity float32 `toml:"zoom_sensitivity" yaml:"zoom_sensitivity"`
	TargetStep      float32 `toml:"target_step" yaml:"target_step"`
}

type TransformConfig struct {
	Step      float32 `toml:"step" yaml:"step"`
	ScaleUp   float32 `toml:"scale_up" yaml:"scale_up"`
	ScaleDown float32 `toml:"scale_down" yaml:"scale_down"`
}

type ProjectionConfig struct {
	FOVDegrees float32 `toml:"fov_degrees" yaml:"fov_degrees"`
	Near       float32 `toml:"near" yaml:"near"`
	Far        float32 `toml:"far" yaml:"far"`
	// Orthographic extents are (width/divisor/pixels_per_unit) using integer division.
	OrthoPixelsPerUnit uint32 `toml:"ortho_pixels_per_unit" yaml:"ortho_pixels_per_unit"`
	QuadDivisor        uint32 `toml:"quad_divisor" yaml:"quad_divisor"`
	OverviewDivisor    uint32 `toml:"overview_divisor" yaml:"overview_divisor"`
}

type ColourConfig struct {
	Default  [4]float32 `toml:"default" yaml:"default"`
	Selected [4]float32 `toml:"selected" yaml:"selected"`
	Clear    [4]float32 `toml:"clear" yaml:"clear"`
}

type AssetsConfig struct {
	Root  string `toml:"root" yaml:"root"`
	Watch bool   `toml:"watch" yaml:"watch"`
	// Shader names, relative to <root>/shaders.
	VertexShader   string `toml:"vertex_shader" yaml:"vertex_shader"`
	FragmentShader string `toml:"fragment_shader" yaml:"fragment_shader"`
	// Number of workers used to preload models.
	Workers int `toml:"workers" yaml:"workers"`
}

const (
	ProjectionPerspective  = "perspective"
	ProjectionOrthographic = "orthographic"
)

// ViewportConfig places one quad-view projection on screen. Rect is
// [x, y, width, height] as fractions of the window.
type ViewportConfig struct {
	Name         string     `toml:"name" yaml:"name"`
	Slot         uint32     `toml:"slot" yaml:"slot"`
	Projection   string     `toml:"projection" yaml:"projection"`
	FollowCamera bool       `toml:"follow_camera" yaml:"follow_camera"`
	Eye          [3]float32 `toml:"eye" yaml:"eye"`
	Up           [3]float32 `toml:"up" yaml:"up"`
	Rect         [4]float32 `toml:"rect" yaml:"rect"`
}

// IndicatorConfig is one overview view used to draw an indicator line.
type IndicatorConfig struct {
	Name string     `toml:"name" yaml:"name"`
	Eye  [3]float32 `toml:"eye" yaml:"eye"`
	Up   [3]float32 `toml:"up" yaml:"up"`
}

// ModelBinding binds a key (a single character such as "1") to a model file
// under <root>/models.
type ModelBinding struct {
	Key  string `toml:"key" yaml:"key"`
	File string `toml:"file" yaml:"file"`
}

// QuadSlots is the number of constant buffer slots, one per quad viewport.
const QuadSlots = 4

// Default returns the stock editor configuration.
func Default() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:      "Multiview",
			StartPosX: 100,
			StartPosY: 100,
			Width:     1280,
			Height:    720,
			LogLevel:  "info",
			TargetFPS: 60,
		},
		Camera: CameraConfig{
			Theta:            0.785398163, // pi/4
			Phi:              1.3,
			Radius:           5.0,
			MinRadius:        3.0,
			MaxRadius:        15.0,
			PhiMargin:        0.1,
			OrbitSensitivity: 0.25,
			ZoomSensitivity:  0.05,
			TargetStep:       0.1,
		},
		Transform: TransformConfig{
			Step:      0.05,
			ScaleUp:   1.01,
			ScaleDown: 0.99,
		},
		Projection: ProjectionConfig{
			FOVDegrees:         45,
			Near:               1,
			Far:                100,
			OrthoPixelsPerUnit: 75,
			QuadDivisor:        2,
			OverviewDivisor:    3,
		},
		Colours: ColourConfig{
			Default:  [4]float32{0.411764741, 0.411764741, 0.411764741, 1},
			Selected: [4]float32{1, 0, 0, 1},
			Clear:    [4]float32{0, 0, 0, 1},
		},
		Assets: AssetsConfig{
			Root:           "assets",
			Watch:          true,
			VertexShader:   "multiview.vert.spv",
			FragmentShader: "multiview.frag.spv",
			Workers:        4,
		},
		Viewports: []ViewportConfig{
			{Name: "perspective", Slot: 0, Projection: ProjectionPerspective, FollowCamera: true, Up: [3]float32{0, 1, 0}, Rect: [4]float32{0.5, 0.5, 0.5, 0.5}},
			{Name: "front", Slot: 1, Projection: ProjectionOrthographic, Eye: [3]float32{0, 0.01, 10}, Up: [3]float32{0, 1, 0}, Rect: [4]float32{0, 0, 0.5, 0.5}},
			{Name: "side", Slot: 2, Projection: ProjectionOrthographic, Eye: [3]float32{-10, 0.01, 0}, Up: [3]float32{0, 1, 0}, Rect: [4]float32{0, 0.5, 0.5, 0.5}},
			{Name: "top", Slot: 3, Projection: ProjectionOrthographic, Eye: [3]float32{0, 10, 0}, Up: [3]float32{0, 0, -1}, Rect: [4]float32{0.5, 0, 0.5, 0.5}},
		},
		Indicators: []IndicatorConfig{
			{Name: "overview", Eye: [3]float32{30, 0.01, 30}, Up: [3]float32{0, 1, 0}},
			{Name: "overview-side", Eye: [3]float32{30, 0.01, 0.01}, Up: [3]float32{0, 0, 1}},
		},
		Models: []ModelBinding{
			{Key: "1", File: "ball.obj"},
			{Key: "2", File: "capsule.obj"},
			{Key: "3", File: "house.obj"},
			{Key: "4", File: "monkey.obj"},
			{Key: "5", File: "thorus.obj"},
			{Key: "6", File: "plane.obj"},
		},
	}
}

// Load reads path on top of Default. The decoder is picked by extension:
// .toml, or .yaml/.yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext on top of Default and validates it.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml", "toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return nil, err
		}
	case ".yaml", ".yml", "yaml", "yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q: %w", ext, core.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate rejects values the editor cannot run with.
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), core.ErrInvalidConfig)
	}

	if c.Application.Width == 0 || c.Application.Height == 0 {
		return invalid("window size must be positive, got %dx%d", c.Application.Width, c.Application.Height)
	}
	if c.Camera.MinRadius <= 0 || c.Camera.MinRadius > c.Camera.MaxRadius {
		return invalid("camera radius range [%v, %v] is empty", c.Camera.MinRadius, c.Camera.MaxRadius)
	}
	if c.Camera.PhiMargin <= 0 || c.Camera.PhiMargin >= 1.5 {
		return invalid("camera phi margin %v out of (0, 1.5)", c.Camera.PhiMargin)
	}
	if c.Transform.Step <= 0 || c.Transform.ScaleUp <= 0 || c.Transform.ScaleDown <= 0 {
		return invalid("transform step and scale factors must be positive")
	}
	if c.Projection.Near <= 0 || c.Projection.Far <= c.Projection.Near {
		return invalid("projection planes near=%v far=%v", c.Projection.Near, c.Projection.Far)
	}
	if c.Projection.FOVDegrees <= 0 || c.Projection.FOVDegrees >= 180 {
		return invalid("field of view %v out of (0, 180)", c.Projection.FOVDegrees)
	}
	if c.Projection.OrthoPixelsPerUnit == 0 || c.Projection.QuadDivisor == 0 || c.Projection.OverviewDivisor == 0 {
		return invalid("orthographic divisors must be positive")
	}
	if len(c.Viewports) != QuadSlots {
		return invalid("expected %d viewports, got %d", QuadSlots, len(c.Viewports))
	}
	seen := [QuadSlots]bool{}
	for _, vp := range c.Viewports {
		if vp.Slot >= QuadSlots {
			return invalid("viewport %q slot %d out of range", vp.Name, vp.Slot)
		}
		if seen[vp.Slot] {
			return invalid("viewport slot %d used twice", vp.Slot)
		}
		seen[vp.Slot] = true
		if vp.Projection != ProjectionPerspective && vp.Projection != ProjectionOrthographic {
			return invalid("viewport %q has unknown projection %q", vp.Name, vp.Projection)
		}
		for _, f := range vp.Rect {
			if f < 0 || f > 1 {
				return invalid("viewport %q rect %v must be window fractions", vp.Name, vp.Rect)
			}
		}
		if vp.Rect[2] == 0 || vp.Rect[3] == 0 {
			return invalid("viewport %q has an empty rect", vp.Name)
		}
	}
	for _, m := range c.Models {
		if len(m.Key) != 1 || m.File == "" {
			return invalid("model binding %q -> %q needs a single key and a file", m.Key, m.File)
		}
	}
	return nil
}
