package scene

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

/**
 * @brief The range of the mesh's index buffer an object draws.
 */
type Submesh struct {
	IndexCount uint32
	StartIndex uint32
	BaseVertex int32
}

/**
 * @brief A placed, drawable thing. The mesh is owned by the object and is
 * released when the object leaves the scene.
 */
type Object struct {
	ID      uuid.UUID
	Name    string
	World   math.Mat4
	Mesh    *metadata.Mesh
	Submesh Submesh
}

// NewObject wraps an already created mesh. indexCount is the number of
// indices the object draws.
func NewObject(name string, world math.Mat4, mesh *metadata.Mesh, indexCount uint32) *Object {
	return &Object{
		ID:      uuid.New(),
		Name:    name,
		World:   world,
		Mesh:    mesh,
		Submesh: Submesh{IndexCount: indexCount},
	}
}

// DrawCall returns the draw of this object with the given constant slot.
func (o *Object) DrawCall(slot uint32) metadata.DrawCall {
	return metadata.DrawCall{
		Mesh:       o.Mesh,
		Slot:       slot,
		IndexCount: o.Submesh.IndexCount,
		StartIndex: o.Submesh.StartIndex,
		BaseVertex: o.Submesh.BaseVertex,
	}
}
