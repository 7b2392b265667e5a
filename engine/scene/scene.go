// Package scene holds the editable objects and the current selection.
package scene

import (
	"fmt"

	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/math"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

// NoSelection is the selected index of a scene with nothing selected.
const NoSelection = -1

// MeshAllocator creates and releases the GPU resources of an object.
type MeshAllocator interface {
	CreateMesh(geometry *metadata.GeometryConfig, slotCount uint32) (*metadata.Mesh, error)
	DestroyMesh(mesh *metadata.Mesh)
}

/**
 * @brief An ordered list of objects plus the index of the selected one.
 * The selection is only an index: Selected resolves it on every call, so it
 * can never point at a removed object.
 */
type Scene struct {
	allocator MeshAllocator
	slotCount uint32

	objects  []*Object
	selected int
}

/**
 * @brief Creates an empty scene.
 * @param allocator Creates and releases object meshes.
 * @param slotCount The number of constant buffer slots of each mesh.
 */
func New(allocator MeshAllocator, slotCount uint32) *Scene {
	return &Scene{
		allocator: allocator,
		slotCount: slotCount,
		selected:  NoSelection,
	}
}

/**
 * @brief Uploads a copy of geometry into a new mesh, appends the object and
 * selects it.
 * @return The new object. Empty geometry yields core.ErrEmptyGeometry and
 * leaves the scene as it was.
 */
func (s *Scene) Spawn(name string, geometry *metadata.GeometryConfig, world math.Mat4) (*Object, error) {
	if geometry.IsEmpty() {
		return nil, fmt.Errorf("spawn '%s': %w", name, core.ErrEmptyGeometry)
	}

	mesh, err := s.allocator.CreateMesh(geometry, s.slotCount)
	if err != nil {
		return nil, fmt.Errorf("spawn '%s': %w", name, err)
	}

	obj := NewObject(name, world, mesh, geometry.IndexCount)
	s.objects = append(s.objects, obj)
	s.selected = len(s.objects) - 1

	core.Logger().Debug("object spawned", "id", obj.ID, "name", name, "index", s.selected)
	return obj, nil
}

/**
 * @brief Removes the selected object and releases its mesh. The selection
 * moves to the object that took its place, wrapping to the front.
 * @return False when nothing was selected.
 */
func (s *Scene) DeleteSelected() bool {
	obj := s.Selected()
	if obj == nil {
		return false
	}

	s.allocator.DestroyMesh(obj.Mesh)
	s.objects = append(s.objects[:s.selected], s.objects[s.selected+1:]...)

	if len(s.objects) > 0 {
		s.selected = s.selected % len(s.objects)
	} else {
		s.selected = NoSelection
	}

	core.Logger().Debug("object deleted", "id", obj.ID, "name", obj.Name, "selected", s.selected)
	return true
}

/**
 * @brief Selects the next object, wrapping around.
 * @return False on an empty scene.
 */
func (s *Scene) CycleSelection() bool {
	if len(s.objects) == 0 {
		return false
	}
	s.selected = (s.selected + 1) % len(s.objects)
	core.Logger().Debug("selection cycled", "id", s.objects[s.selected].ID, "index", s.selected)
	return true
}

// Selected returns the selected object, or nil.
func (s *Scene) Selected() *Object {
	if s.selected < 0 || s.selected >= len(s.objects) {
		return nil
	}
	return s.objects[s.selected]
}

func (s *Scene) SelectedIndex() int {
	return s.selected
}

func (s *Scene) IsSelected(obj *Object) bool {
	return obj != nil && obj == s.Selected()
}

func (s *Scene) Len() int {
	return len(s.objects)
}

// Objects returns the objects in insertion order. The slice must not be modified.
func (s *Scene) Objects() []*Object {
	return s.objects
}

func (s *Scene) At(i int) *Object {
	if i < 0 || i >= len(s.objects) {
		return nil
	}
	return s.objects[i]
}

// Clear releases every mesh and empties the scene.
func (s *Scene) Clear() {
	for _, obj := range s.objects {
		s.allocator.DestroyMesh(obj.Mesh)
	}
	s.objects = nil
	s.selected = NoSelection
}
