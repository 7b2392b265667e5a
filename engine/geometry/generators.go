// Package geometry generates indexed triangle lists for the editor's primitive
// shapes. All shapes are centred on the origin and use 32-bit indices.
package geometry

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

// MaxGeosphereSubdivisions caps the subdivision count; each level quadruples the triangles.
const MaxGeosphereSubdivisions = 6

/**
 * @brief Creates a quad in the xy plane facing -z.
 * @param width The width of the quad. Zero is defaulted to 1.
 * @param height The height of the quad. Zero is defaulted to 1.
 */
func CreateQuad(width, height float32) *metadata.GeometryConfig {
	width = positiveOrDefault("quad width", width)
	height = positiveOrDefault("quad height", height)
	w2, h2 := 0.5*width, 0.5*height

	vertices := []math.Vertex3D{
		vertex(-w2, -h2, 0),
		vertex(-w2, +h2, 0),
		vertex(+w2, +h2, 0),
		vertex(+w2, -h2, 0),
	}
	return metadata.NewGeometryConfig("quad", vertices, []uint32{0, 1, 2, 0, 2, 3})
}

/**
 * @brief Creates an axis aligned box. Each face has its own four vertices.
 * @param width The size along x. Zero is defaulted to 1.
 * @param height The size along y. Zero is defaulted to 1.
 * @param depth The size along z. Zero is defaulted to 1.
 */
func CreateBox(width, height, depth float32) *metadata.GeometryConfig {
	width = positiveOrDefault("box width", width)
	height = positiveOrDefault("box height", height)
	depth = positiveOrDefault("box depth", depth)
	w2, h2, d2 := 0.5*width, 0.5*height, 0.5*depth

	vertices := []math.Vertex3D{
		// front
		vertex(-w2, -h2, -d2), vertex(-w2, +h2, -d2), vertex(+w2, +h2, -d2), vertex(+w2, -h2, -d2),
		// back
		vertex(-w2, -h2, +d2), vertex(+w2, -h2, +d2), vertex(+w2, +h2, +d2), vertex(-w2, +h2, +d2),
		// top
		vertex(-w2, +h2, -d2), vertex(-w2, +h2, +d2), vertex(+w2, +h2, +d2), vertex(+w2, +h2, -d2),
		// bottom
		vertex(-w2, -h2, -d2), vertex(+w2, -h2, -d2), vertex(+w2, -h2, +d2), vertex(-w2, -h2, +d2),
		// left
		vertex(-w2, -h2, +d2), vertex(-w2, +h2, +d2), vertex(-w2, +h2, -d2), vertex(-w2, -h2, -d2),
		// right
		vertex(+w2, -h2, -d2), vertex(+w2, +h2, -d2), vertex(+w2, +h2, +d2), vertex(+w2, -h2, +d2),
	}

	indices := make([]uint32, 0, 36)
	for face := uint32(0); face < 6; face++ {
		base := face * 4
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return metadata.NewGeometryConfig("box", vertices, indices)
}

/**
 * @brief Creates a (possibly truncated) cone along y with capped ends.
 * @param bottomRadius The radius at y = -height/2.
 * @param topRadius The radius at y = +height/2.
 * @param height The total height. Zero is defaulted to 1.
 * @param sliceCount Subdivisions around the axis, at least 3.
 * @param stackCount Subdivisions along the axis, at least 1.
 */
func CreateCylinder(bottomRadius, topRadius, height float32, sliceCount, stackCount uint32) *metadata.GeometryConfig {
	height = positiveOrDefault("cylinder height", height)
	sliceCount = atLeast("cylinder slices", sliceCount, 3)
	stackCount = atLeast("cylinder stacks", stackCount, 1)

	stackHeight := height / float32(stackCount)
	radiusStep := (topRadius - bottomRadius) / float32(stackCount)
	dTheta := math.K_PI_2 / float32(sliceCount)
	ringVertexCount := sliceCount + 1

	vertices := make([]math.Vertex3D, 0, (stackCount+1)*ringVertexCount+2*(sliceCount+2))
	for i := uint32(0); i <= stackCount; i++ {
		y := -0.5*height + float32(i)*stackHeight
		r := bottomRadius + float32(i)*radiusStep
		for j := uint32(0); j <= sliceCount; j++ {
			s, c := sincos(float32(j) * dTheta)
			vertices = append(vertices, vertex(r*c, y, r*s))
		}
	}

	indices := make([]uint32, 0, stackCount*sliceCount*6+sliceCount*6)
	for i := uint32(0); i < stackCount; i++ {
		for j := uint32(0); j < sliceCount; j++ {
			indices = append(indices,
				i*ringVertexCount+j, (i+1)*ringVertexCount+j, (i+1)*ringVertexCount+j+1,
				i*ringVertexCount+j, (i+1)*ringVertexCount+j+1, i*ringVertexCount+j+1,
			)
		}
	}

	vertices, indices = cylinderCap(vertices, indices, topRadius, 0.5*height, sliceCount, true)
	vertices, indices = cylinderCap(vertices, indices, bottomRadius, -0.5*height, sliceCount, false)
	return metadata.NewGeometryConfig("cylinder", vertices, indices)
}

func cylinderCap(vertices []math.Vertex3D, indices []uint32, radius, y float32, sliceCount uint32, top bool) ([]math.Vertex3D, []uint32) {
	base := uint32(len(vertices))
	dTheta := math.K_PI_2 / float32(sliceCount)
	for i := uint32(0); i <= sliceCount; i++ {
		s, c := sincos(float32(i) * dTheta)
		vertices = append(vertices, vertex(radius*c, y, radius*s))
	}
	vertices = append(vertices, vertex(0, y, 0))
	center := uint32(len(vertices) - 1)

	// Winding differs so both caps face outwards.
	for i := uint32(0); i < sliceCount; i++ {
		if top {
			indices = append(indices, center, base+i+1, base+i)
		} else {
			indices = append(indices, center, base+i, base+i+1)
		}
	}
	return vertices, indices
}

/**
 * @brief Creates a UV sphere: a pole at each end and stackCount-1 rings between.
 * @param radius The sphere radius. Zero is defaulted to 1.
 * @param sliceCount Subdivisions around y, at least 3.
 * @param stackCount Subdivisions from pole to pole, at least 2.
 */
func CreateSphere(radius float32, sliceCount, stackCount uint32) *metadata.GeometryConfig {
	radius = positiveOrDefault("sphere radius", radius)
	sliceCount = atLeast("sphere slices", sliceCount, 3)
	stackCount = atLeast("sphere stacks", stackCount, 2)

	phiStep := math.K_PI / float32(stackCount)
	thetaStep := math.K_PI_2 / float32(sliceCount)
	ringVertexCount := sliceCount + 1

	vertices := make([]math.Vertex3D, 0, 2+(stackCount-1)*ringVertexCount)
	vertices = append(vertices, vertex(0, radius, 0))
	for i := uint32(1); i < stackCount; i++ {
		sinPhi, cosPhi := sincos(float32(i) * phiStep)
		for j := uint32(0); j <= sliceCount; j++ {
			sinTheta, cosTheta := sincos(float32(j) * thetaStep)
			vertices = append(vertices, vertex(radius*sinPhi*cosTheta, radius*cosPhi, radius*sinPhi*sinTheta))
		}
	}
	vertices = append(vertices, vertex(0, -radius, 0))

	indices := make([]uint32, 0, sliceCount*6+(stackCount-2)*sliceCount*6)
	// north cap
	for i := uint32(1); i <= sliceCount; i++ {
		indices = append(indices, 0, i+1, i)
	}
	// rings, offset past the north pole
	base := uint32(1)
	for i := uint32(0); i < stackCount-2; i++ {
		for j := uint32(0); j < sliceCount; j++ {
			indices = append(indices,
				base+i*ringVertexCount+j, base+i*ringVertexCount+j+1, base+(i+1)*ringVertexCount+j,
				base+(i+1)*ringVertexCount+j, base+i*ringVertexCount+j+1, base+(i+1)*ringVertexCount+j+1,
			)
		}
	}
	// south cap
	south := uint32(len(vertices) - 1)
	base = south - ringVertexCount
	for i := uint32(0); i < sliceCount; i++ {
		indices = append(indices, south, base+i, base+i+1)
	}
	return metadata.NewGeometryConfig("sphere", vertices, indices)
}

var (
	icosahedronPositions = func() []math.Vec3 {
		const x, z = 0.525731, 0.850651
		return []math.Vec3{
			{X: -x, Y: 0, Z: z}, {X: x, Y: 0, Z: z}, {X: -x, Y: 0, Z: -z}, {X: x, Y: 0, Z: -z},
			{X: 0, Y: z, Z: x}, {X: 0, Y: z, Z: -x}, {X: 0, Y: -z, Z: x}, {X: 0, Y: -z, Z: -x},
			{X: z, Y: x, Z: 0}, {X: -z, Y: x, Z: 0}, {X: z, Y: -x, Z: 0}, {X: -z, Y: -x, Z: 0},
		}
	}()
	icosahedronIndices = []uint32{
		1, 4, 0, 4, 9, 0, 4, 5, 9, 8, 5, 4, 1, 8, 4,
		1, 10, 8, 10, 3, 8, 8, 3, 5, 3, 2, 5, 3, 7, 2,
		3, 10, 7, 10, 6, 7, 6, 11, 7, 6, 0, 11, 6, 1, 0,
		10, 1, 6, 11, 0, 9, 2, 11, 9, 5, 2, 9, 11, 2, 7,
	}
)

/**
 * @brief Creates a sphere by subdividing an icosahedron and pushing every
 * vertex out to the radius. Triangles are more even than a UV sphere's.
 * @param radius The sphere radius. Zero is defaulted to 1.
 * @param subdivisions The number of subdivisions, capped at MaxGeosphereSubdivisions.
 */
func CreateGeosphere(radius float32, subdivisions uint32) *metadata.GeometryConfig {
	radius = positiveOrDefault("geosphere radius", radius)
	if subdivisions > MaxGeosphereSubdivisions {
		core.LogWarn("geosphere subdivisions %d capped to %d", subdivisions, MaxGeosphereSubdivisions)
		subdivisions = MaxGeosphereSubdivisions
	}

	positions := append([]math.Vec3(nil), icosahedronPositions...)
	indices := append([]uint32(nil), icosahedronIndices...)
	for i := uint32(0); i < subdivisions; i++ {
		positions, indices = subdivide(positions, indices)
	}

	vertices := make([]math.Vertex3D, len(positions))
	for i, p := range positions {
		n := p.Normalized().MulScalar(radius)
		vertices[i] = vertex(n.X, n.Y, n.Z)
	}
	return metadata.NewGeometryConfig("geosphere", vertices, indices)
}

// subdivide splits every triangle into four using its edge midpoints.
//
//	     v1
//	     *
//	    / \
//	m0 *---* m1
//	  / \ / \
//	 *---*---*
//	v0   m2   v2
func subdivide(positions []math.Vec3, indices []uint32) ([]math.Vec3, []uint32) {
	triangles := uint32(len(indices) / 3)
	outPositions := make([]math.Vec3, 0, triangles*6)
	outIndices := make([]uint32, 0, triangles*12)

	for i := uint32(0); i < triangles; i++ {
		v0 := positions[indices[i*3+0]]
		v1 := positions[indices[i*3+1]]
		v2 := positions[indices[i*3+2]]

		m0 := v0.Add(v1).MulScalar(0.5)
		m1 := v1.Add(v2).MulScalar(0.5)
		m2 := v0.Add(v2).MulScalar(0.5)

		outPositions = append(outPositions, v0, v1, v2, m0, m1, m2)

		b := i * 6
		outIndices = append(outIndices,
			b+0, b+3, b+5,
			b+3, b+4, b+5,
			b+5, b+4, b+2,
			b+3, b+1, b+4,
		)
	}
	return outPositions, outIndices
}

/**
 * @brief Creates a flat grid in the xz plane.
 * @param width The size along x. Zero is defaulted to 1.
 * @param depth The size along z. Zero is defaulted to 1.
 * @param m The number of rows of vertices (along z), at least 2.
 * @param n The number of columns of vertices (along x), at least 2.
 */
func CreateGrid(width, depth float32, m, n uint32) *metadata.GeometryConfig {
	width = positiveOrDefault("grid width", width)
	depth = positiveOrDefault("grid depth", depth)
	m = atLeast("grid rows", m, 2)
	n = atLeast("grid columns", n, 2)

	halfWidth, halfDepth := 0.5*width, 0.5*depth
	dx := width / float32(n-1)
	dz := depth / float32(m-1)

	vertices := make([]math.Vertex3D, 0, m*n)
	for i := uint32(0); i < m; i++ {
		z := halfDepth - float32(i)*dz
		for j := uint32(0); j < n; j++ {
			x := -halfWidth + float32(j)*dx
			vertices = append(vertices, vertex(x, 0, z))
		}
	}

	indices := make([]uint32, 0, (m-1)*(n-1)*6)
	for i := uint32(0); i < m-1; i++ {
		for j := uint32(0); j < n-1; j++ {
			indices = append(indices,
				i*n+j, i*n+j+1, (i+1)*n+j,
				(i+1)*n+j, i*n+j+1, (i+1)*n+j+1,
			)
		}
	}
	return metadata.NewGeometryConfig("grid", vertices, indices)
}

// Paint sets every vertex colour of cfg in place.
func Paint(cfg *metadata.GeometryConfig, colour math.Vec4) {
	for i := range cfg.Vertices {
		cfg.Vertices[i].Colour = colour
	}
}

func sincos(angle float32) (float32, float32) {
	return math32.Sin(angle), math32.Cos(angle)
}

func vertex(x, y, z float32) math.Vertex3D {
	return math.Vertex3D{Position: math.NewVec3(x, y, z), Colour: math.NewVec4(1, 1, 1, 1)}
}

func positiveOrDefault(what string, value float32) float32 {
	if value <= 0 {
		core.LogWarn("%s must be positive, got %f. Defaulting to 1.0", what, value)
		return 1
	}
	return value
}

func atLeast(what string, value, minimum uint32) uint32 {
	if value < minimum {
		core.LogWarn("%s must be at least %d, got %d. Defaulting to %d", what, minimum, value, minimum)
		return minimum
	}
	return value
}
