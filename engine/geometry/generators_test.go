package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

func assertIndicesInRange(t *testing.T, cfg *metadata.GeometryConfig) {
	t.Helper()
	assert.Zero(t, cfg.IndexCount%3, "triangle list")
	for _, i := range cfg.Indices {
		if !assert.Less(t, i, cfg.VertexCount) {
			return
		}
	}
}

func TestGeneratorCounts(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *metadata.GeometryConfig
		vertices uint32
		indices  uint32
	}{
		{"quad", CreateQuad(2, 2), 4, 6},
		{"box", CreateBox(2, 2, 2), 24, 36},
		{"cylinder", CreateCylinder(1, 1, 3, 20, 20), 21*21 + 2*22, 20*20*6 + 2*20*3},
		{"sphere", CreateSphere(1, 20, 20), 2 + 19*21, 20*6 + 18*20*6},
		{"geosphere", CreateGeosphere(1, 3), 320 * 6, 1280 * 3},
		{"grid", CreateGrid(3, 3, 20, 20), 400, 19 * 19 * 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.cfg.Name)
			assert.Equal(t, tt.vertices, tt.cfg.VertexCount)
			assert.Equal(t, tt.indices, tt.cfg.IndexCount)
			assert.Len(t, tt.cfg.Vertices, int(tt.vertices))
			assertIndicesInRange(t, tt.cfg)
		})
	}
}

func TestSphereVerticesOnSurface(t *testing.T) {
	for _, cfg := range []*metadata.GeometryConfig{CreateSphere(2, 12, 8), CreateGeosphere(2, 2)} {
		for _, v := range cfg.Vertices {
			assert.InDelta(t, 2, v.Position.Length(), 1e-4)
		}
	}
}

func TestBoxExtents(t *testing.T) {
	cfg := CreateBox(2, 4, 6)
	for _, v := range cfg.Vertices {
		assert.InDelta(t, 1, abs(v.Position.X), 1e-6)
		assert.InDelta(t, 2, abs(v.Position.Y), 1e-6)
		assert.InDelta(t, 3, abs(v.Position.Z), 1e-6)
	}
}

func TestGridSpansWidthAndDepth(t *testing.T) {
	cfg := CreateGrid(3, 3, 20, 20)
	first := cfg.Vertices[0].Position
	last := cfg.Vertices[len(cfg.Vertices)-1].Position
	assert.InDelta(t, -1.5, first.X, 1e-5)
	assert.InDelta(t, 1.5, first.Z, 1e-5)
	assert.InDelta(t, 1.5, last.X, 1e-5)
	assert.InDelta(t, -1.5, last.Z, 1e-5)
	for _, v := range cfg.Vertices {
		assert.Zero(t, v.Position.Y)
	}
}

func TestCylinderHeight(t *testing.T) {
	cfg := CreateCylinder(1, 0.5, 3, 8, 4)
	minY, maxY := float32(0), float32(0)
	for _, v := range cfg.Vertices {
		if v.Position.Y < minY {
			minY = v.Position.Y
		}
		if v.Position.Y > maxY {
			maxY = v.Position.Y
		}
	}
	assert.InDelta(t, -1.5, minY, 1e-5)
	assert.InDelta(t, 1.5, maxY, 1e-5)
}

func TestInvalidParametersAreDefaulted(t *testing.T) {
	grid := CreateGrid(0, -1, 0, 1)
	assert.Equal(t, uint32(4), grid.VertexCount)
	assert.Equal(t, uint32(6), grid.IndexCount)

	sphere := CreateSphere(0, 0, 0)
	assert.False(t, sphere.IsEmpty())
	assertIndicesInRange(t, sphere)

	geo := CreateGeosphere(1, 100)
	assert.Equal(t, uint32(20*4096*3), geo.IndexCount)
}

func TestPaint(t *testing.T) {
	cfg := CreateBox(1, 1, 1)
	grey := math.NewVec4(0.412, 0.412, 0.412, 1)
	Paint(cfg, grey)
	for _, v := range cfg.Vertices {
		assert.Equal(t, grey, v.Colour)
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
