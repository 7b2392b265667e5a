package metadata

import (
	"encoding/binary"
	gomath "math"

	"github.com/spaghettifunk/multiview/engine/math"
)

/** @brief The size in bytes of ObjectConstants as read by the vertex shader. */
const ObjectConstantsSize uint64 = 80

/**
 * @brief Per-object, per-viewport shader constants. WorldViewProj is stored
 * transposed, the way the vertex shader expects it.
 */
type ObjectConstants struct {
	WorldViewProj math.Mat4
	Colour        math.Vec4
}

// NewObjectConstants transposes worldViewProj and pairs it with colour.
func NewObjectConstants(worldViewProj math.Mat4, colour math.Vec4) ObjectConstants {
	return ObjectConstants{
		WorldViewProj: math.NewMat4Transposed(worldViewProj),
		Colour:        colour,
	}
}

// Bytes packs the constants in std140 order: 16 matrix floats then 4 colour floats.
func (oc ObjectConstants) Bytes() []byte {
	out := make([]byte, 0, ObjectConstantsSize)
	out = appendFloat32(out, oc.WorldViewProj.Data[:]...)
	return appendFloat32(out, oc.Colour.X, oc.Colour.Y, oc.Colour.Z, oc.Colour.W)
}

// ObjectConstantsFromBytes is the inverse of Bytes.
func ObjectConstantsFromBytes(data []byte) ObjectConstants {
	var oc ObjectConstants
	for i := range oc.WorldViewProj.Data {
		oc.WorldViewProj.Data[i] = readFloat32(data, i)
	}
	oc.Colour = math.NewVec4(readFloat32(data, 16), readFloat32(data, 17), readFloat32(data, 18), readFloat32(data, 19))
	return oc
}

func appendFloat32(out []byte, values ...float32) []byte {
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, gomath.Float32bits(v))
	}
	return out
}

func readFloat32(data []byte, index int) float32 {
	return gomath.Float32frombits(binary.LittleEndian.Uint32(data[index*4:]))
}
