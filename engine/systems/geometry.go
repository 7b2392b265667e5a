package systems

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/geometry"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

// Primitive names one of the built-in geometry templates.
type Primitive uint8

const (
	PrimitiveQuad Primitive = iota
	PrimitiveBox
	PrimitiveCylinder
	PrimitiveSphere
	PrimitiveGeosphere
	PrimitiveGrid
	PrimitiveMax
)

var primitiveNames = [PrimitiveMax]string{"quad", "box", "cylinder", "sphere", "geosphere", "grid"}

func (p Primitive) String() string {
	if p >= PrimitiveMax {
		return "unknown"
	}
	return primitiveNames[p]
}

// ParsePrimitive maps a name, case insensitive, to its Primitive.
func ParsePrimitive(name string) (Primitive, error) {
	for i, n := range primitiveNames {
		if strings.EqualFold(n, name) {
			return Primitive(i), nil
		}
	}
	return PrimitiveMax, fmt.Errorf("'%s': %w", name, core.ErrUnknownPrimitive)
}

type GeometrySystemConfig struct {
	/** @brief The colour every template vertex is painted with. */
	DefaultColour math.Vec4
}

/**
 * @brief Generates the primitive templates once and hands them out. Templates
 * are shared and must be treated as read-only; the renderer copies their data
 * into each mesh.
 */
type GeometrySystem struct {
	config    GeometrySystemConfig
	templates [PrimitiveMax]*metadata.GeometryConfig
}

func NewGeometrySystem(config *GeometrySystemConfig) (*GeometrySystem, error) {
	if config == nil {
		return nil, fmt.Errorf("func NewGeometrySystem - config is required: %w", core.ErrInvalidConfig)
	}

	gs := &GeometrySystem{config: *config}
	gs.templates[PrimitiveQuad] = geometry.CreateQuad(2, 2)
	gs.templates[PrimitiveBox] = geometry.CreateBox(2, 2, 2)
	gs.templates[PrimitiveCylinder] = geometry.CreateCylinder(1, 1, 3, 20, 20)
	gs.templates[PrimitiveSphere] = geometry.CreateSphere(1, 20, 20)
	gs.templates[PrimitiveGeosphere] = geometry.CreateGeosphere(1, 3)
	gs.templates[PrimitiveGrid] = geometry.CreateGrid(3, 3, 20, 20)

	for _, t := range gs.templates {
		geometry.Paint(t, config.DefaultColour)
	}
	core.LogDebug("Geometry system initialized with %d templates.", len(gs.templates))
	return gs, nil
}

// Acquire returns the shared template for p.
func (gs *GeometrySystem) Acquire(p Primitive) (*metadata.GeometryConfig, error) {
	if p >= PrimitiveMax {
		return nil, fmt.Errorf("primitive %d: %w", p, core.ErrUnknownPrimitive)
	}
	return gs.templates[p], nil
}

// AcquireByName is Acquire for a primitive name.
func (gs *GeometrySystem) AcquireByName(name string) (*metadata.GeometryConfig, error) {
	p, err := ParsePrimitive(name)
	if err != nil {
		return nil, err
	}
	return gs.Acquire(p)
}

func (gs *GeometrySystem) Shutdown() error {
	for i := range gs.templates {
		gs.templates[i] = nil
	}
	return nil
}
