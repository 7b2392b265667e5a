// Package headless provides a renderer backend that draws nothing and records
// every call. It backs the --headless run mode and the renderer tests.
package headless

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/multiview/engine/core"
	"github.com/spaghettifunk/multiview/engine/renderer/metadata"
)

// DrawRecord is one recorded DrawIndexed call and the viewport it used.
type DrawRecord struct {
	Call     metadata.DrawCall
	Viewport metadata.Viewport
}

// FrameRecord groups the viewports and draws of one BeginFrame/EndFrame pair.
type FrameRecord struct {
	Viewports []metadata.Viewport
	Draws     []DrawRecord
}

type buffer struct {
	info  *metadata.RenderBuffer
	data  []byte
	slots [][]byte
}

type Backend struct {
	mu sync.Mutex

	appName     string
	width       uint32
	height      uint32
	initialized bool

	ids     *core.IdentifierPool
	buffers map[uint32]*buffer

	recording bool
	framing   bool
	viewport  metadata.Viewport
	current   *FrameRecord

	resets     int
	submits    int
	frames     []FrameRecord
	createdAt  []bool
	failCreate error
}

func New() *Backend {
	return &Backend{
		ids:     core.NewIdentifierPool(64),
		buffers: make(map[uint32]*buffer),
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appName = appName
	b.width = appWidth
	b.height = appHeight
	b.initialized = true
	core.LogInfo("Headless renderer initialized (%dx%d).", appWidth, appHeight)
	return nil
}

func (b *Backend) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.buffers) > 0 {
		core.LogWarn("headless renderer shutting down with %d live buffers", len(b.buffers))
	}
	b.initialized = false
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width = width
	b.height = height
	return nil
}

func (b *Backend) ResetCommands() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return core.ErrBackendNotReady
	}
	if b.recording {
		return core.ErrFrameInProgress
	}
	b.recording = true
	b.resets++
	return nil
}

func (b *Backend) SubmitCommands() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.recording {
		return core.ErrNoFrameInProgress
	}
	b.recording = false
	b.submits++
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return core.ErrBackendNotReady
	}
	if b.framing {
		return core.ErrFrameInProgress
	}
	b.framing = true
	b.current = &FrameRecord{}
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.framing {
		return core.ErrNoFrameInProgress
	}
	b.framing = false
	b.frames = append(b.frames, *b.current)
	b.current = nil
	return nil
}

func (b *Backend) RenderBufferCreate(bufferType metadata.RenderBufferType, data []byte, stride, slotCount uint32, slotSize uint64) (*metadata.RenderBuffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, core.ErrBackendNotReady
	}
	if b.failCreate != nil {
		return nil, b.failCreate
	}

	rb := &metadata.RenderBuffer{
		RenderBufferType: bufferType,
		Stride:           stride,
	}
	buf := &buffer{info: rb}
	switch bufferType {
	case metadata.RENDERBUFFER_TYPE_UNIFORM:
		if slotCount == 0 || slotSize == 0 {
			return nil, fmt.Errorf("uniform buffer needs slots: %w", core.ErrSlotOutOfRange)
		}
		rb.SlotCount = slotCount
		rb.SlotSize = slotSize
		rb.TotalSize = uint64(slotCount) * slotSize
		buf.slots = make([][]byte, slotCount)
	case metadata.RENDERBUFFER_TYPE_VERTEX, metadata.RENDERBUFFER_TYPE_INDEX:
		if len(data) == 0 {
			return nil, core.ErrEmptyGeometry
		}
		buf.data = append([]byte(nil), data...)
		rb.TotalSize = uint64(len(data))
	default:
		return nil, fmt.Errorf("unsupported buffer type '%s': %w", bufferType, core.ErrInvalidBuffer)
	}

	rb.ID = b.ids.Acquire(rb)
	rb.InternalData = buf
	b.buffers[rb.ID] = buf
	b.createdAt = append(b.createdAt, b.recording)
	return rb, nil
}

func (b *Backend) RenderBufferDestroy(rb *metadata.RenderBuffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rb == nil {
		return
	}
	if _, ok := b.lookup(rb); !ok {
		return
	}
	delete(b.buffers, rb.ID)
	if err := b.ids.Release(rb.ID); err != nil {
		core.LogWarn("headless: %s", err)
	}
	rb.InternalData = nil
}

func (b *Backend) RenderBufferLoadSlot(rb *metadata.RenderBuffer, slot uint32, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.lookup(rb)
	if !ok || rb.RenderBufferType != metadata.RENDERBUFFER_TYPE_UNIFORM {
		return core.ErrInvalidBuffer
	}
	if slot >= rb.SlotCount {
		return core.ErrSlotOutOfRange
	}
	if uint64(len(data)) > rb.SlotSize {
		return fmt.Errorf("%d bytes do not fit a %d byte slot: %w", len(data), rb.SlotSize, core.ErrInvalidBuffer)
	}
	buf.slots[slot] = append(buf.slots[slot][:0], data...)
	return nil
}

func (b *Backend) SetViewport(viewport metadata.Viewport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.viewport = viewport
	if b.current != nil {
		b.current.Viewports = append(b.current.Viewports, viewport)
	}
}

func (b *Backend) DrawIndexed(draw *metadata.DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.framing {
		return core.ErrNoFrameInProgress
	}
	for _, rb := range []*metadata.RenderBuffer{draw.Mesh.VertexBuffer, draw.Mesh.IndexBuffer, draw.Mesh.ConstantBuffer} {
		if _, ok := b.lookup(rb); !ok {
			return core.ErrInvalidBuffer
		}
	}
	b.current.Draws = append(b.current.Draws, DrawRecord{Call: *draw, Viewport: b.viewport})
	return nil
}

// lookup must be called with the lock held.
func (b *Backend) lookup(rb *metadata.RenderBuffer) (*buffer, bool) {
	if rb == nil {
		return nil, false
	}
	buf, ok := b.buffers[rb.ID]
	if !ok || buf.info != rb {
		return nil, false
	}
	return buf, true
}

// --- inspection helpers ---

// Size returns the current virtual window size.
func (b *Backend) Size() (uint32, uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// LiveBuffers counts buffers created and not destroyed.
func (b *Backend) LiveBuffers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffers)
}

// CreatedInsideCommands reports, per created buffer, whether an upload scope was open.
func (b *Backend) CreatedInsideCommands() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bool(nil), b.createdAt...)
}

// Resets and Submits count upload scopes.
func (b *Backend) Resets() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resets
}

func (b *Backend) Submits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submits
}

// Frames returns the completed frames.
func (b *Backend) Frames() []FrameRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]FrameRecord(nil), b.frames...)
}

// LastFrame returns the most recent completed frame.
func (b *Backend) LastFrame() (FrameRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) == 0 {
		return FrameRecord{}, false
	}
	return b.frames[len(b.frames)-1], true
}

// SlotData returns a copy of the bytes last written to a slot, or nil.
func (b *Backend) SlotData(rb *metadata.RenderBuffer, slot uint32) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.lookup(rb)
	if !ok || slot >= uint32(len(buf.slots)) {
		return nil
	}
	return append([]byte(nil), buf.slots[slot]...)
}

// BufferData returns a copy of a vertex or index buffer's contents.
func (b *Backend) BufferData(rb *metadata.RenderBuffer) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.lookup(rb)
	if !ok {
		return nil
	}
	return append([]byte(nil), buf.data...)
}

// FailCreate makes every following RenderBufferCreate return err. Pass nil to clear.
func (b *Backend) FailCreate(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failCreate = err
}
