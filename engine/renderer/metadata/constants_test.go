package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/multiview/engine/math"
)

func TestObjectConstantsTransposesAndPacks(t *testing.T) {
	wvp := math.NewMat4Translation(math.NewVec3(1, 2, 3))
	oc := NewObjectConstants(wvp, math.NewVec4(1, 0, 0, 1))

	// The translation moves to the last column once transposed.
	assert.Equal(t, float32(1), oc.WorldViewProj.Data[3])
	assert.Equal(t, float32(2), oc.WorldViewProj.Data[7])
	assert.Equal(t, float32(3), oc.WorldViewProj.Data[11])

	data := oc.Bytes()
	require.Len(t, data, int(ObjectConstantsSize))
	assert.Equal(t, oc, ObjectConstantsFromBytes(data))
}

func TestGeometryConfigBytes(t *testing.T) {
	gc := NewGeometryConfig("tri", []math.Vertex3D{
		{Position: math.NewVec3(0, 1, 0), Colour: math.NewVec4(1, 1, 1, 1)},
		{Position: math.NewVec3(1, 0, 0), Colour: math.NewVec4(1, 1, 1, 1)},
		{Position: math.NewVec3(-1, 0, 0), Colour: math.NewVec4(1, 1, 1, 1)},
	}, []uint32{0, 1, 2})

	assert.False(t, gc.IsEmpty())
	assert.Len(t, gc.VertexBytes(), 3*int(math.Vertex3DSize))
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}, gc.IndexBytes())
}

func TestGeometryConfigIsEmpty(t *testing.T) {
	var nilConfig *GeometryConfig
	assert.True(t, nilConfig.IsEmpty())
	assert.True(t, NewGeometryConfig("empty", nil, nil).IsEmpty())
	assert.True(t, NewGeometryConfig("no-indices", []math.Vertex3D{{}}, nil).IsEmpty())
}
