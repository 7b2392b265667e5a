package renderer

import "github.com/spaghettifunk/multiview/engine/renderer/metadata"

// RendererBackend is the graphics device contract. The frontend never talks to
// a graphics API directly; everything goes through these calls.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error

	/**
	 * @brief Opens the upload command list. Buffer creations issued before the
	 * matching SubmitCommands are recorded into it.
	 */
	ResetCommands() error
	/** @brief Closes and executes the upload command list, then waits for it. */
	SubmitCommands() error

	/**
	 * @brief Begins a frame. Returns core.ErrSwapchainBooting when the swapchain
	 * was recreated and nothing should be drawn this time.
	 */
	BeginFrame(deltaTime float64) error
	/** @brief Submits the frame and presents it. */
	EndFrame(deltaTime float64) error

	/**
	 * @brief Creates a render buffer.
	 * @param bufferType The buffer type. Uniform buffers ignore data.
	 * @param data The initial contents of vertex and index buffers.
	 * @param stride The element size.
	 * @param slotCount The number of independently writable slots (uniform only).
	 * @param slotSize The minimum size of one slot; backends may pad it.
	 */
	RenderBufferCreate(bufferType metadata.RenderBufferType, data []byte, stride, slotCount uint32, slotSize uint64) (*metadata.RenderBuffer, error)
	RenderBufferDestroy(buffer *metadata.RenderBuffer)
	/** @brief Overwrites one slot of a uniform buffer. */
	RenderBufferLoadSlot(buffer *metadata.RenderBuffer, slot uint32, data []byte) error

	SetViewport(viewport metadata.Viewport)
	/** @brief Binds the mesh buffers plus the constant slot and issues an indexed draw. */
	DrawIndexed(draw *metadata.DrawCall) error
}

type RendererType uint8

const (
	Vulkan RendererType = iota
	Headless
)

func (rt RendererType) String() string {
	switch rt {
	case Vulkan:
		return "vulkan"
	case Headless:
		return "headless"
	default:
		return "unknown"
	}
}
