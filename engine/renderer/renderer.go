package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

// Renderer is the frontend over a RendererBackend. It owns the scope
// bookkeeping for upload command lists and frames.
type Renderer struct {
	backend RendererBackend

	mu         sync.Mutex
	inCommands bool
	inFrame    bool
	meshes     int
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(appName string, appWidth, appHeight uint32) error {
	if err := r.backend.Initialize(appName, appWidth, appHeight); err != nil {
		return fmt.Errorf("failed to initialize renderer backend: %w", err)
	}
	core.LogInfo("Renderer initialized.")
	return nil
}

func (r *Renderer) Shutdown() error {
	if r.MeshCount() > 0 {
		core.LogWarn("renderer shutting down with %d live meshes", r.MeshCount())
	}
	return r.backend.Shutdown()
}

func (r *Renderer) Resize(width, height uint32) error {
	return r.backend.Resized(width, height)
}

// MeshCount is the number of meshes created and not yet destroyed.
func (r *Renderer) MeshCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meshes
}

/**
 * @brief Creates the vertex, index and constant buffers for the given geometry.
 * @param geometry The source geometry. Its data is copied.
 * @param slotCount The number of constant buffer slots, one per viewport.
 * @return The mesh, or core.ErrEmptyGeometry when there is nothing to upload.
 */
func (r *Renderer) CreateMesh(geometry *metadata.GeometryConfig, slotCount uint32) (*metadata.Mesh, error) {
	if geometry.IsEmpty() {
		return nil, core.ErrEmptyGeometry
	}
	if slotCount == 0 {
		return nil, fmt.Errorf("mesh '%s' needs at least one constant slot: %w", geometry.Name, core.ErrSlotOutOfRange)
	}

	vb, err := r.backend.RenderBufferCreate(metadata.RENDERBUFFER_TYPE_VERTEX, geometry.VertexBytes(), geometry.VertexSize, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer for '%s': %w", geometry.Name, err)
	}
	ib, err := r.backend.RenderBufferCreate(metadata.RENDERBUFFER_TYPE_INDEX, geometry.IndexBytes(), geometry.IndexSize, 0, 0)
	if err != nil {
		r.backend.RenderBufferDestroy(vb)
		return nil, fmt.Errorf("failed to create index buffer for '%s': %w", geometry.Name, err)
	}
	cb, err := r.backend.RenderBufferCreate(metadata.RENDERBUFFER_TYPE_UNIFORM, nil, uint32(metadata.ObjectConstantsSize), slotCount, metadata.ObjectConstantsSize)
	if err != nil {
		r.backend.RenderBufferDestroy(ib)
		r.backend.RenderBufferDestroy(vb)
		return nil, fmt.Errorf("failed to create constant buffer for '%s': %w", geometry.Name, err)
	}

	r.mu.Lock()
	r.meshes++
	r.mu.Unlock()

	return &metadata.Mesh{
		VertexBuffer:   vb,
		IndexBuffer:    ib,
		ConstantBuffer: cb,
		VertexCount:    geometry.VertexCount,
		IndexCount:     geometry.IndexCount,
	}, nil
}

// DestroyMesh releases every buffer of the mesh. Calling it twice is harmless.
func (r *Renderer) DestroyMesh(mesh *metadata.Mesh) {
	if mesh == nil || mesh.VertexBuffer == nil {
		return
	}
	r.backend.RenderBufferDestroy(mesh.ConstantBuffer)
	r.backend.RenderBufferDestroy(mesh.IndexBuffer)
	r.backend.RenderBufferDestroy(mesh.VertexBuffer)
	mesh.ConstantBuffer = nil
	mesh.IndexBuffer = nil
	mesh.VertexBuffer = nil

	r.mu.Lock()
	r.meshes--
	r.mu.Unlock()
}

// WriteConstants copies the per-object constants into one slot of the mesh.
func (r *Renderer) WriteConstants(mesh *metadata.Mesh, slot uint32, constants metadata.ObjectConstants) error {
	if mesh == nil || mesh.ConstantBuffer == nil {
		return core.ErrInvalidBuffer
	}
	if slot >= mesh.SlotCount() {
		return fmt.Errorf("slot %d of %d: %w", slot, mesh.SlotCount(), core.ErrSlotOutOfRange)
	}
	return r.backend.RenderBufferLoadSlot(mesh.ConstantBuffer, slot, constants.Bytes())
}

/**
 * @brief Runs fn between ResetCommands and SubmitCommands. The submit happens
 * on every exit path, so an early return inside fn never leaves the command
 * list open.
 */
func (r *Renderer) Commands(fn func() error) (err error) {
	if err := r.enter(&r.inCommands); err != nil {
		return err
	}
	defer r.leave(&r.inCommands)

	if err := r.backend.ResetCommands(); err != nil {
		return fmt.Errorf("failed to reset commands: %w", err)
	}
	defer func() {
		if serr := r.backend.SubmitCommands(); serr != nil {
			err = errors.Join(err, fmt.Errorf("failed to submit commands: %w", serr))
		}
	}()
	return fn()
}

/**
 * @brief Runs fn between BeginFrame and EndFrame. When the backend is still
 * rebuilding its swapchain the frame is skipped and fn is not called.
 */
func (r *Renderer) DrawFrame(deltaTime float64, fn func(frame *Frame) error) (err error) {
	if err := r.enter(&r.inFrame); err != nil {
		return err
	}
	defer r.leave(&r.inFrame)

	if err := r.backend.BeginFrame(deltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			return nil
		}
		core.LogError(err.Error())
		return err
	}

	frame := &Frame{backend: r.backend, active: true}
	defer func() {
		frame.active = false
		if eerr := r.backend.EndFrame(deltaTime); eerr != nil && !errors.Is(eerr, core.ErrSwapchainBooting) {
			core.LogError("RendererEndFrame failed: %s", eerr)
			err = errors.Join(err, eerr)
		}
	}()
	return fn(frame)
}

func (r *Renderer) enter(flag *bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inCommands || r.inFrame {
		return core.ErrFrameInProgress
	}
	*flag = true
	return nil
}

func (r *Renderer) leave(flag *bool) {
	r.mu.Lock()
	*flag = false
	r.mu.Unlock()
}
