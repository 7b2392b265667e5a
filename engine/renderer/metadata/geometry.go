package metadata

import (
	"encoding/binary"

	"github.com/spaghettifunk/multiview/engine/math"
)

/**
 * @brief Represents the configuration for a geometry: CPU-side vertex and
 * index data ready to be copied into render buffers.
 */
type GeometryConfig struct {
	/** @brief The size of each vertex. */
	VertexSize uint32
	/** @brief The number of vertices. */
	VertexCount uint32
	/** @brief An array of Vertices. */
	Vertices []math.Vertex3D
	/** @brief The size of each index. */
	IndexSize uint32
	/** @brief The number of indices. */
	IndexCount uint32
	/** @brief An array of Indices. */
	Indices []uint32

	/** @brief The Name of the geometry. */
	Name string
}

// NewGeometryConfig fills the counts and sizes from the given data.
func NewGeometryConfig(name string, vertices []math.Vertex3D, indices []uint32) *GeometryConfig {
	return &GeometryConfig{
		VertexSize:  math.Vertex3DSize,
		VertexCount: uint32(len(vertices)),
		Vertices:    vertices,
		IndexSize:   4,
		IndexCount:  uint32(len(indices)),
		Indices:     indices,
		Name:        name,
	}
}

// IsEmpty reports whether there is nothing to draw.
func (gc *GeometryConfig) IsEmpty() bool {
	return gc == nil || gc.VertexCount == 0 || gc.IndexCount == 0
}

// VertexBytes returns the vertices packed as position (3 floats) then colour (4 floats).
func (gc *GeometryConfig) VertexBytes() []byte {
	out := make([]byte, 0, len(gc.Vertices)*int(math.Vertex3DSize))
	for _, v := range gc.Vertices {
		out = appendFloat32(out,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Colour.X, v.Colour.Y, v.Colour.Z, v.Colour.W)
	}
	return out
}

// IndexBytes returns the 32-bit indices in little-endian order.
func (gc *GeometryConfig) IndexBytes() []byte {
	out := make([]byte, 0, len(gc.Indices)*4)
	for _, i := range gc.Indices {
		out = binary.LittleEndian.AppendUint32(out, i)
	}
	return out
}
